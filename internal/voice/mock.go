package voice

import (
	"context"
	"sync"

	"github.com/guychenya/giton/internal/audio"
)

// MockDialer opens scripted in-process sessions. It stands in for a real
// backend when no credentials are configured, and drives tests and the
// voiceprobe tool.
type MockDialer struct {
	// Script, when set, is emitted in order after every scripted tool
	// call has been answered or immediately if there are none.
	Script []Event
	// FailConnect makes Connect fail with ErrConnection.
	FailConnect bool

	mu       sync.Mutex
	last     *MockTransport
	connects int
}

func NewMockDialer(script ...Event) *MockDialer {
	return &MockDialer{Script: script}
}

func (d *MockDialer) Connect(_ context.Context, cfg SessionConfig) (Transport, error) {
	if d.FailConnect {
		return nil, ErrConnection
	}
	t := &MockTransport{
		cfg:    cfg,
		events: make(chan Event, 256),
	}
	d.mu.Lock()
	d.last = t
	d.connects++
	d.mu.Unlock()
	for _, evt := range d.Script {
		t.events <- evt
	}
	return t, nil
}

// Last returns the transport opened by the most recent Connect.
func (d *MockDialer) Last() *MockTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Connects returns how many sessions were opened.
func (d *MockDialer) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

// MockTransport records what the assistant sends and lets tests feed
// events in.
type MockTransport struct {
	cfg SessionConfig

	mu            sync.Mutex
	closed        bool
	framesSent    []audio.TransportFrame
	toolResponses []MockToolResponse

	events chan Event
}

// MockToolResponse is one recorded SendToolResponse call.
type MockToolResponse struct {
	CallID string
	Name   string
	Result string
}

func (t *MockTransport) SendAudioFrame(_ context.Context, frame audio.TransportFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.framesSent = append(t.framesSent, frame)
	return nil
}

func (t *MockTransport) SendToolResponse(_ context.Context, callID, name, result string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toolResponses = append(t.toolResponses, MockToolResponse{CallID: callID, Name: name, Result: result})
	return nil
}

func (t *MockTransport) Events() <-chan Event { return t.events }

func (t *MockTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.events)
	return nil
}

// Emit feeds one event into the session as if the backend sent it.
// Returns false once the transport is closed.
func (t *MockTransport) Emit(evt Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.events <- evt
	return true
}

// Config returns the session setup the assistant connected with.
func (t *MockTransport) Config() SessionConfig { return t.cfg }

// FramesSent returns a copy of every forwarded microphone frame.
func (t *MockTransport) FramesSent() []audio.TransportFrame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]audio.TransportFrame, len(t.framesSent))
	copy(out, t.framesSent)
	return out
}

// ToolResponses returns a copy of every recorded tool response.
func (t *MockTransport) ToolResponses() []MockToolResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]MockToolResponse, len(t.toolResponses))
	copy(out, t.toolResponses)
	return out
}
