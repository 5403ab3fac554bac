package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/adbot/internal/adapters/file"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

func TestStoreContract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestDefaultBasePath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".adbot", "state"), store.BasePath)
}

func TestNoPartialFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()
	key := domain.ConversationKey{ChannelID: "test", ConversationID: "atomic"}

	state := domain.NewConversationState()
	state.Stack = append(state.Stack, domain.DialogInstance{DialogID: "main", StepIndex: 1})
	require.NoError(t, store.SaveConversation(ctx, key, state))
	require.NoError(t, store.SaveConversation(ctx, key, state))

	entries, err := os.ReadDir(filepath.Join(dir, "conversations"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestKeysWithSeparatorsAreEscaped(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	key := domain.ConversationKey{ChannelID: "web/chat", ConversationID: "conv 1"}

	require.NoError(t, store.SaveConversation(ctx, key, domain.NewConversationState()))

	loaded, err := store.LoadConversation(ctx, key)
	require.NoError(t, err)
	assert.NotNil(t, loaded)

	keys, err := store.ListConversations(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, key.String())
}
