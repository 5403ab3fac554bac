// Package file persists state as JSON files, one per conversation or
// user, for single-instance deployments without a Redis.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Store implements ports.StateStore using the local filesystem.
// Conversation and user records live in separate subdirectories under
// the base path.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".adbot/state".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".adbot", "state")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) conversationPath(key domain.ConversationKey) string {
	return filepath.Join(s.BasePath, "conversations", url.QueryEscape(key.String())+".json")
}

func (s *Store) userPath(key domain.UserKey) string {
	return filepath.Join(s.BasePath, "users", url.QueryEscape(key.String())+".json")
}

// writeAtomic persists data by writing to a temporary file, fsyncing,
// and renaming it over the destination. The temp file lives in the same
// directory so the rename stays on one filesystem.
func writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists. The delete+rename
	// window is acceptable compared to a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing state file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ErrStateNotFound
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return nil
}

func (s *Store) LoadConversation(ctx context.Context, key domain.ConversationKey) (*domain.ConversationState, error) {
	var state domain.ConversationState
	if err := readJSON(s.conversationPath(key), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveConversation(ctx context.Context, key domain.ConversationKey, state *domain.ConversationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}
	return writeAtomic(s.conversationPath(key), data)
}

func (s *Store) DeleteConversation(ctx context.Context, key domain.ConversationKey) error {
	err := os.Remove(s.conversationPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete conversation file: %w", err)
	}
	return nil
}

func (s *Store) ListConversations(ctx context.Context) ([]string, error) {
	dir := filepath.Join(s.BasePath, "conversations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := entry.Name()
		escaped := name[:len(name)-len(".json")]
		raw, err := url.QueryUnescape(escaped)
		if err != nil {
			continue // Not one of ours
		}
		keys = append(keys, raw)
	}
	return keys, nil
}

func (s *Store) LoadUser(ctx context.Context, key domain.UserKey) (*domain.UserState, error) {
	var state domain.UserState
	if err := readJSON(s.userPath(key), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveUser(ctx context.Context, key domain.UserKey, state *domain.UserState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user state: %w", err)
	}
	return writeAtomic(s.userPath(key), data)
}
