// Package memory provides an in-process state store, used for tests and
// single-instance deployments that do not need durability.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Store implements ports.StateStore in process memory. Values are
// deep-copied through JSON on the way in and out so callers never share
// mutable state with the store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string][]byte
	users         map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		conversations: make(map[string][]byte),
		users:         make(map[string][]byte),
	}
}

func (s *Store) LoadConversation(ctx context.Context, key domain.ConversationKey) (*domain.ConversationState, error) {
	s.mu.RLock()
	data, ok := s.conversations[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrStateNotFound
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal conversation state: %w", err)
	}
	return &state, nil
}

func (s *Store) SaveConversation(ctx context.Context, key domain.ConversationKey, state *domain.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}

	s.mu.Lock()
	s.conversations[key.String()] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteConversation(ctx context.Context, key domain.ConversationKey) error {
	s.mu.Lock()
	delete(s.conversations, key.String())
	s.mu.Unlock()
	return nil
}

func (s *Store) ListConversations(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.conversations))
	for k := range s.conversations {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *Store) LoadUser(ctx context.Context, key domain.UserKey) (*domain.UserState, error) {
	s.mu.RLock()
	data, ok := s.users[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrStateNotFound
	}

	var state domain.UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal user state: %w", err)
	}
	return &state, nil
}

func (s *Store) SaveUser(ctx context.Context, key domain.UserKey, state *domain.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}

	s.mu.Lock()
	s.users[key.String()] = data
	s.mu.Unlock()
	return nil
}

// SaveTurn writes both states under one lock, so a turn's dialog and
// user updates land together.
func (s *Store) SaveTurn(ctx context.Context, ck domain.ConversationKey, cs *domain.ConversationState, uk domain.UserKey, us *domain.UserState) error {
	cdata, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}
	udata, err := json.Marshal(us)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}

	s.mu.Lock()
	s.conversations[ck.String()] = cdata
	s.users[uk.String()] = udata
	s.mu.Unlock()
	return nil
}
