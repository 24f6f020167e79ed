package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// StorageKey is the fixed name the session-scoped history snapshot is
// persisted under.
const StorageKey = "giton_chat_history.json"

// FileStore persists the history as a JSON array of {role, text} objects
// in a single file, mirroring the session-scoped storage of the client.
type FileStore struct {
	path string
}

// NewFileStore stores the snapshot under dir/StorageKey. An empty dir
// selects the OS temp directory (cleared on session end, kept across
// reloads).
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, StorageKey)}, nil
}

func (s *FileStore) Save(_ context.Context, messages []Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Load(_ context.Context) ([]Message, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return messages, nil
}

func (s *FileStore) Close() error { return nil }
