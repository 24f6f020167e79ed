package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/protocol"
	"github.com/guychenya/giton/internal/reliability"
)

// RelayConfig configures the websocket relay backend used when a native
// Gemini Live session is unavailable.
type RelayConfig struct {
	WSURL string
}

// RelayDialer opens sessions against a relay that proxies the realtime
// model behind the wire protocol in internal/protocol.
type RelayDialer struct {
	cfg RelayConfig
}

func NewRelayDialer(cfg RelayConfig) *RelayDialer {
	return &RelayDialer{cfg: cfg}
}

func (d *RelayDialer) Connect(ctx context.Context, cfg SessionConfig) (Transport, error) {
	if strings.TrimSpace(d.cfg.WSURL) == "" {
		return nil, fmt.Errorf("%w: relay url is not set", ErrConnection)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.cfg.WSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial relay: %v", ErrConnection, err)
	}

	setup := protocol.SessionSetup{
		Type:             protocol.TypeSessionSetup,
		SessionID:        cfg.SessionID,
		SystemPrompt:     cfg.SystemPrompt,
		InputSampleRate:  cfg.InputSampleRate,
		OutputSampleRate: cfg.OutputSampleRate,
		Transcribe:       true,
	}
	for _, decl := range cfg.Tools {
		wire := protocol.ToolDecl{Name: decl.Name, Description: decl.Description}
		for _, p := range decl.Params {
			wire.Params = append(wire.Params, protocol.ParamDecl{
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		setup.Tools = append(setup.Tools, wire)
	}
	if err := conn.WriteJSON(setup); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: send session setup: %v", ErrConnection, err)
	}

	t := &relayTransport{
		conn:      conn,
		sessionID: cfg.SessionID,
		events:    make(chan Event, 256),
	}
	go t.readLoop()
	return t, nil
}

type relayTransport struct {
	conn      *websocket.Conn
	sessionID string
	writeMu   sync.Mutex
	closeOnce sync.Once
	events    chan Event
}

func (t *relayTransport) SendAudioFrame(_ context.Context, frame audio.TransportFrame) error {
	return t.writeJSON(protocol.AudioChunk{
		Type:        protocol.TypeAudioChunk,
		SessionID:   t.sessionID,
		MIMEType:    frame.MIMEType,
		AudioBase64: frame.Data,
	})
}

func (t *relayTransport) SendToolResponse(_ context.Context, callID, name, result string) error {
	return t.writeJSON(protocol.ToolResponse{
		Type:      protocol.TypeToolResponse,
		SessionID: t.sessionID,
		CallID:    callID,
		Name:      name,
		Result:    result,
	})
}

func (t *relayTransport) Events() <-chan Event { return t.events }

// Close shuts the connection down; the event channel stays owned by
// readLoop, which closes it once the read side has drained.
func (t *relayTransport) Close() error {
	var retErr error
	t.closeOnce.Do(func() {
		retErr = t.conn.Close()
	})
	return retErr
}

func (t *relayTransport) writeJSON(payload any) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(payload)
}

func (t *relayTransport) readLoop() {
	defer close(t.events)
	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.closeOnce.Do(func() { _ = t.conn.Close() })
			if evt, ok := closeCodeEvent(err); ok {
				t.events <- evt
			}
			return
		}
		msg, err := protocol.ParseServerMessage(data)
		if err != nil {
			// Unknown or malformed frames are skipped; the session stays up.
			continue
		}
		switch m := msg.(type) {
		case protocol.InputTranscription:
			t.events <- Event{Type: EventInputTranscript, Text: m.Text}
		case protocol.OutputTranscription:
			t.events <- Event{Type: EventOutputTranscript, Text: m.Text}
		case protocol.AssistantAudio:
			t.events <- Event{Type: EventAudioChunk, AudioBase64: m.AudioBase64, MIMEType: m.MIMEType}
		case protocol.ToolCall:
			t.events <- Event{Type: EventToolCall, Call: &ToolCall{ID: m.CallID, Name: m.Name, Args: m.Args}}
		case protocol.Interrupted:
			t.events <- Event{Type: EventInterrupted}
		case protocol.TurnComplete:
			t.events <- Event{Type: EventTurnComplete}
		case protocol.Grounding:
			t.events <- Event{Type: EventGrounding, Sources: m.Sources}
		case protocol.ErrorEvent:
			t.events <- Event{
				Type:      EventError,
				Code:      m.Code,
				Detail:    m.Detail,
				Retryable: m.Retryable || reliability.IsRetryableRealtimeCode(m.Code),
			}
		}
	}
}

// closeCodeEvent turns an abnormal websocket close into a final error
// event so the session surfaces why the relay went away. Clean closes
// produce no event.
func closeCodeEvent(err error) (Event, bool) {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return Event{}, false
	}
	switch ce.Code {
	case websocket.CloseNormalClosure, websocket.CloseGoingAway:
		return Event{}, false
	}
	return Event{
		Type:      EventError,
		Code:      fmt.Sprintf("ws_close_%d", ce.Code),
		Detail:    ce.Text,
		Retryable: reliability.IsRetryableCloseCode(ce.Code),
	}, true
}
