package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract verifies that a StateStore implementation
// adheres to the interface contract. Adapter test files call it against
// their own backend.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")
	ck := domain.ConversationKey{ChannelID: "contract", ConversationID: "conv-" + suffix}
	uk := domain.UserKey{ChannelID: "contract", UserID: "user-" + suffix}

	t.Run("LoadConversation missing", func(t *testing.T) {
		_, err := store.LoadConversation(ctx, domain.ConversationKey{ChannelID: "contract", ConversationID: "absent"})
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("Save and Load round trip", func(t *testing.T) {
		state := &domain.ConversationState{
			Stack: []domain.DialogInstance{
				{DialogID: "main", StepIndex: 1, Awaiting: true, Options: json.RawMessage(`{"reprompt":"more?"}`)},
				{DialogID: "search", StepIndex: 2, Options: json.RawMessage(`{"record":{"file_name":"bae 146-140"}}`), Result: json.RawMessage(`"carried"`)},
			},
		}
		require.NoError(t, store.SaveConversation(ctx, ck, state))

		loaded, err := store.LoadConversation(ctx, ck)
		require.NoError(t, err)
		require.Len(t, loaded.Stack, 2)
		assert.Equal(t, state.Stack[0], loaded.Stack[0])
		assert.Equal(t, state.Stack[1], loaded.Stack[1])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveConversation(ctx, ck, domain.NewConversationState()))
		require.NoError(t, store.DeleteConversation(ctx, ck))

		_, err := store.LoadConversation(ctx, ck)
		assert.ErrorIs(t, err, domain.ErrStateNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ck1 := domain.ConversationKey{ChannelID: "contract", ConversationID: "list-1-" + suffix}
		ck2 := domain.ConversationKey{ChannelID: "contract", ConversationID: "list-2-" + suffix}
		require.NoError(t, store.SaveConversation(ctx, ck1, domain.NewConversationState()))
		require.NoError(t, store.SaveConversation(ctx, ck2, domain.NewConversationState()))
		defer func() {
			_ = store.DeleteConversation(ctx, ck1)
			_ = store.DeleteConversation(ctx, ck2)
		}()

		keys, err := store.ListConversations(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, ck1.String())
		assert.Contains(t, keys, ck2.String())
	})

	t.Run("User state", func(t *testing.T) {
		_, err := store.LoadUser(ctx, domain.UserKey{ChannelID: "contract", UserID: "absent"})
		assert.ErrorIs(t, err, domain.ErrStateNotFound)

		us := &domain.UserState{Role: "Maintainer", LastSeen: time.Now().UTC().Truncate(time.Second)}
		require.NoError(t, store.SaveUser(ctx, uk, us))

		loaded, err := store.LoadUser(ctx, uk)
		require.NoError(t, err)
		assert.Equal(t, us.Role, loaded.Role)
		assert.True(t, us.LastSeen.Equal(loaded.LastSeen))
	})

	if tc, ok := store.(TurnCommitter); ok {
		t.Run("SaveTurn commits both categories", func(t *testing.T) {
			cs := &domain.ConversationState{Stack: []domain.DialogInstance{{DialogID: "main"}}}
			us := &domain.UserState{Role: "Maintenance Planner"}
			require.NoError(t, tc.SaveTurn(ctx, ck, cs, uk, us))
			defer func() { _ = store.DeleteConversation(ctx, ck) }()

			gotCS, err := store.LoadConversation(ctx, ck)
			require.NoError(t, err)
			assert.Equal(t, cs.Stack, gotCS.Stack)

			gotUS, err := store.LoadUser(ctx, uk)
			require.NoError(t, err)
			assert.Equal(t, "Maintenance Planner", gotUS.Role)
		})
	}
}
