package history

import (
	"context"
	"log"
	"sync"
)

// Redactor rewrites text before it enters the history (PII masking).
type Redactor func(string) (string, bool)

// Manager owns the ordered log of finalized turns. Voice turns and plain
// text-chat turns both append through one Manager so their writes never
// interleave.
type Manager struct {
	mu       sync.Mutex
	store    Store
	redact   Redactor
	messages []Message
}

// NewManager returns a manager over store. redact may be nil.
func NewManager(store Store, redact Redactor) *Manager {
	return &Manager{store: store, redact: redact, messages: greeting()}
}

// Load restores history from the store. A missing, corrupt, or
// structurally invalid snapshot falls back to the single default
// greeting rather than a partial load.
func (m *Manager) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	restored, err := m.store.Load(ctx)
	if err != nil {
		log.Printf("history: load failed, seeding greeting: %v", err)
		m.messages = greeting()
		return
	}
	if len(restored) == 0 {
		m.messages = greeting()
		return
	}
	for _, msg := range restored {
		if !msg.Valid() {
			log.Printf("history: discarding malformed snapshot (role=%q)", msg.Role)
			m.messages = greeting()
			return
		}
	}
	m.messages = restored
}

// Append adds messages to the log and persists the full updated history.
// Empty-text messages are dropped; they never enter history.
func (m *Manager) Append(ctx context.Context, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	appended := false
	for _, msg := range msgs {
		if msg.Text == "" {
			continue
		}
		if m.redact != nil {
			if masked, changed := m.redact(msg.Text); changed {
				msg.Text = masked
			}
		}
		m.messages = append(m.messages, msg)
		appended = true
	}
	if !appended {
		return nil
	}
	return m.store.Save(ctx, m.snapshotLocked())
}

// Clear resets history to the single default greeting and persists it.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = greeting()
	return m.store.Save(ctx, m.snapshotLocked())
}

// Messages returns a copy of the ordered history.
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
