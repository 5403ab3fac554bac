package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/flightdeck/adbot/internal/logging"
	"github.com/flightdeck/adbot/internal/retry"
	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager serializes turn processing per conversation. Within one
// process it uses reference-counted mutexes; across processes it can
// additionally take a distributed lock.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	commit retry.Policy
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithCommitPolicy overrides the retry policy used when persisting turn
// state.
func WithCommitPolicy(p retry.Policy) Option {
	return func(m *Manager) {
		m.commit = p
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager over the given state store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		commit: retry.DefaultPolicy(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// LoadOrStart returns the conversation's persisted state, or a fresh
// empty state when none exists yet. Callers are expected to already hold
// the conversation lock via WithLock.
func (m *Manager) LoadOrStart(ctx context.Context, key domain.ConversationKey) (*domain.ConversationState, error) {
	state, err := m.store.LoadConversation(ctx, key)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	return domain.NewConversationState(), nil
}

// LoadUser returns the user's persisted state, or a fresh one when none
// exists.
func (m *Manager) LoadUser(ctx context.Context, key domain.UserKey) (*domain.UserState, error) {
	state, err := m.store.LoadUser(ctx, key)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return nil, fmt.Errorf("load user state: %w", err)
	}
	return domain.NewUserState(), nil
}

// CommitTurn persists both state objects at the end of a turn. Stores
// that implement ports.TurnCommitter get a single atomic write;
// otherwise the conversation state is written first so a partial failure
// never loses dialog progress. Failures are retried per the commit
// policy and fail the turn when exhausted.
func (m *Manager) CommitTurn(ctx context.Context, ck domain.ConversationKey, cs *domain.ConversationState, uk domain.UserKey, us *domain.UserState) error {
	err := retry.Do(ctx, m.commit, func(ctx context.Context) error {
		if tc, ok := m.store.(ports.TurnCommitter); ok {
			return tc.SaveTurn(ctx, ck, cs, uk, us)
		}
		if err := m.store.SaveConversation(ctx, ck, cs); err != nil {
			return fmt.Errorf("save conversation state: %w", err)
		}
		if err := m.store.SaveUser(ctx, uk, us); err != nil {
			return fmt.Errorf("save user state: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit turn: %w", err)
	}
	return nil
}

// Delete removes the conversation from the store.
func (m *Manager) Delete(ctx context.Context, key domain.ConversationKey) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.DeleteConversation(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.ListConversations(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes fn while holding the conversation's lock, so turns
// for the same conversation run one at a time.
func (m *Manager) WithLock(ctx context.Context, key domain.ConversationKey, fn func(context.Context) error) error {
	id := key.String()
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
