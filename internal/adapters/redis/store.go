// Package redis persists state in Redis, the backend for multi-replica
// deployments. It also provides the distributed lock used to serialize
// turns across replicas.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flightdeck/adbot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.StateStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for state records.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "adbot:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) conversationKey(key domain.ConversationKey) string {
	return s.prefix + "conv:" + key.String()
}

func (s *Store) userKey(key domain.UserKey) string {
	return s.prefix + "user:" + key.String()
}

func (s *Store) indexKey() string {
	return s.prefix + "conv:index"
}

// indexScore is the ZSET score for a record saved now: expiry time, or
// effectively never when no TTL is configured.
func (s *Store) indexScore() float64 {
	if s.ttl == 0 {
		return 4102444800 // 2100-01-01 (far enough)
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

func (s *Store) saveConversation(ctx context.Context, pipe backend.Pipeliner, key domain.ConversationKey, state *domain.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}
	pipe.Set(ctx, s.conversationKey(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  s.indexScore(),
		Member: key.String(),
	})
	return nil
}

func (s *Store) saveUser(ctx context.Context, pipe backend.Pipeliner, key domain.UserKey, state *domain.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}
	pipe.Set(ctx, s.userKey(key), data, s.ttl)
	return nil
}

func (s *Store) SaveConversation(ctx context.Context, key domain.ConversationKey, state *domain.ConversationState) error {
	pipe := s.client.Pipeline()
	if err := s.saveConversation(ctx, pipe, key, state); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

func (s *Store) LoadConversation(ctx context.Context, key domain.ConversationKey) (*domain.ConversationState, error) {
	val, err := s.client.Get(ctx, s.conversationKey(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}
	return &state, nil
}

func (s *Store) DeleteConversation(ctx context.Context, key domain.ConversationKey) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.conversationKey(key))
	pipe.ZRem(ctx, s.indexKey(), key.String())

	_, err := pipe.Exec(ctx)
	return err
}

// ListConversations returns active conversations from the ZSET index,
// lazily pruning entries whose records have expired.
func (s *Store) ListConversations(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired conversations: %w", err)
	}

	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return members, nil
}

func (s *Store) LoadUser(ctx context.Context, key domain.UserKey) (*domain.UserState, error) {
	val, err := s.client.Get(ctx, s.userKey(key)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var state domain.UserState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user state: %w", err)
	}
	return &state, nil
}

func (s *Store) SaveUser(ctx context.Context, key domain.UserKey, state *domain.UserState) error {
	pipe := s.client.Pipeline()
	if err := s.saveUser(ctx, pipe, key, state); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// SaveTurn writes both turn records in one MULTI/EXEC transaction, so a
// replica crash mid-commit never leaves conversation and user state from
// different turns.
func (s *Store) SaveTurn(ctx context.Context, ck domain.ConversationKey, cs *domain.ConversationState, uk domain.UserKey, us *domain.UserState) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		if err := s.saveConversation(ctx, pipe, ck, cs); err != nil {
			return err
		}
		return s.saveUser(ctx, pipe, uk, us)
	})
	if err != nil {
		return fmt.Errorf("failed to save turn to redis: %w", err)
	}
	return nil
}

// Client exposes the underlying client, for sharing the connection
// with the Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
