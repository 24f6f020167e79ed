package history

import (
	"context"
	"sync"
)

// InMemoryStore keeps the snapshot in-process for tests and dev runs.
type InMemoryStore struct {
	mu       sync.Mutex
	snapshot []Message
}

func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

func (s *InMemoryStore) Save(_ context.Context, messages []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = make([]Message, len(messages))
	copy(s.snapshot, messages)
	return nil
}

func (s *InMemoryStore) Load(_ context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.snapshot))
	copy(out, s.snapshot)
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
