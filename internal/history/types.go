package history

import "context"

// Message roles. The ordered sequence of Messages is replayed as context
// to every future model call, so insertion order is meaningful.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// DefaultGreeting seeds an empty or unrecoverable history.
const DefaultGreeting = "Hi! I can walk you through this repository. Ask me anything, or just start talking."

// Message is one finalized conversational turn. Immutable once appended.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Valid reports whether the message passes the structural check applied
// when restoring persisted history.
func (m Message) Valid() bool {
	return (m.Role == RoleUser || m.Role == RoleModel) && m.Text != ""
}

// Store persists the full conversation history snapshot.
type Store interface {
	Save(ctx context.Context, messages []Message) error
	Load(ctx context.Context) ([]Message, error)
	Close() error
}

func greeting() []Message {
	return []Message{{Role: RoleModel, Text: DefaultGreeting}}
}
