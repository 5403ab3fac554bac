package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightdeck/adbot/internal/adapters/redis"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunStateStoreContract(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()
	key := domain.ConversationKey{ChannelID: "test", ConversationID: "ttl"}

	require.NoError(t, store.SaveConversation(ctx, key, domain.NewConversationState()))

	// Advance past the TTL; the record expires.
	mr.FastForward(2 * time.Minute)

	_, err := store.LoadConversation(ctx, key)
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestRedisStore_SaveTurnWritesBoth(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	ck := domain.ConversationKey{ChannelID: "test", ConversationID: "turn"}
	uk := domain.UserKey{ChannelID: "test", UserID: "user-1"}

	cs := domain.NewConversationState()
	cs.Stack = append(cs.Stack, domain.DialogInstance{DialogID: "main", StepIndex: 1, Awaiting: true})
	us := &domain.UserState{Role: "Pilot"}

	require.NoError(t, store.SaveTurn(ctx, ck, cs, uk, us))

	loadedCS, err := store.LoadConversation(ctx, ck)
	require.NoError(t, err)
	require.Equal(t, 1, loadedCS.Depth())
	assert.True(t, loadedCS.Top().Awaiting)

	loadedUS, err := store.LoadUser(ctx, uk)
	require.NoError(t, err)
	assert.Equal(t, "Pilot", loadedUS.Role)
}
