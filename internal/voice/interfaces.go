// Package voice runs realtime voice sessions: microphone frames go up to
// a generative audio backend, synthesized speech and transcripts come
// back down.
package voice

import (
	"context"
	"errors"

	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/tools"
)

// ErrConnection reports that the realtime backend could not be reached
// or rejected the session setup.
var ErrConnection = errors.New("voice backend connection failed")

type EventType string

const (
	// EventInputTranscript carries the evolving transcript of the
	// current user utterance. Each event replaces the previous value.
	EventInputTranscript EventType = "input_transcript"
	// EventOutputTranscript carries an incremental fragment of the
	// assistant's spoken reply. Fragments append.
	EventOutputTranscript EventType = "output_transcript"
	EventAudioChunk       EventType = "audio_chunk"
	EventToolCall         EventType = "tool_call"
	EventInterrupted      EventType = "interrupted"
	EventTurnComplete     EventType = "turn_complete"
	EventGrounding        EventType = "grounding"
	EventError            EventType = "error"
)

// ToolCall asks the client to run a named local capability and answer
// with a result tagged by the same call id.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]string
}

// Event is one backend-to-client message, normalized across transports.
type Event struct {
	Type        EventType
	Text        string
	AudioBase64 string
	MIMEType    string
	Call        *ToolCall
	Sources     []string
	Code        string
	Detail      string
	Retryable   bool
}

// SessionConfig is the negotiated setup for one realtime session.
type SessionConfig struct {
	SessionID        string
	SystemPrompt     string
	Tools            []tools.Declaration
	InputSampleRate  int
	OutputSampleRate int
}

// Transport is one open realtime session. Events closes when the remote
// side disconnects or Close is called.
type Transport interface {
	SendAudioFrame(ctx context.Context, frame audio.TransportFrame) error
	SendToolResponse(ctx context.Context, callID, name, result string) error
	Events() <-chan Event
	Close() error
}

// Dialer opens realtime sessions against one backend.
type Dialer interface {
	Connect(ctx context.Context, cfg SessionConfig) (Transport, error)
}
