package voice

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/tools"
)

// GeminiConfig configures the Gemini Live backend.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiDialer opens native realtime sessions against the Gemini Live API.
type GeminiDialer struct {
	cfg GeminiConfig
}

func NewGeminiDialer(cfg GeminiConfig) *GeminiDialer {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gemini-2.0-flash-live-001"
	}
	return &GeminiDialer{cfg: cfg}
}

func (d *GeminiDialer) Connect(ctx context.Context, cfg SessionConfig) (Transport, error) {
	if strings.TrimSpace(d.cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrConnection)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  d.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	live := &genai.LiveConnectConfig{
		ResponseModalities:       []genai.Modality{genai.ModalityAudio},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if strings.TrimSpace(cfg.SystemPrompt) != "" {
		live.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemPrompt}},
		}
	}
	if len(cfg.Tools) > 0 {
		live.Tools = []*genai.Tool{{FunctionDeclarations: geminiFunctionDecls(cfg.Tools)}}
	}

	session, err := client.Live.Connect(ctx, d.cfg.Model, live)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	t := &geminiTransport{session: session, events: make(chan Event, 256)}
	go t.readLoop()
	return t, nil
}

func geminiFunctionDecls(decls []tools.Declaration) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if len(d.Params) > 0 {
			props := make(map[string]*genai.Schema, len(d.Params))
			var required []string
			for _, p := range d.Params {
				props[p.Name] = &genai.Schema{
					Type:        genai.TypeString,
					Description: p.Description,
				}
				if p.Required {
					required = append(required, p.Name)
				}
			}
			fd.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			}
		}
		out = append(out, fd)
	}
	return out
}

type geminiTransport struct {
	session *genai.Session
	events  chan Event
}

func (t *geminiTransport) SendAudioFrame(_ context.Context, frame audio.TransportFrame) error {
	raw, err := base64.StdEncoding.DecodeString(frame.Data)
	if err != nil {
		return fmt.Errorf("decode outbound frame: %w", err)
	}
	return t.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: raw, MIMEType: frame.MIMEType},
	})
}

func (t *geminiTransport) SendToolResponse(_ context.Context, callID, name, result string) error {
	return t.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       callID,
			Name:     name,
			Response: map[string]any{"result": result},
		}},
	})
}

func (t *geminiTransport) Events() <-chan Event { return t.events }

func (t *geminiTransport) Close() error {
	return t.session.Close()
}

func (t *geminiTransport) readLoop() {
	defer close(t.events)
	for {
		msg, err := t.session.Receive()
		if err != nil {
			return
		}
		for _, evt := range geminiEvents(msg) {
			t.events <- evt
		}
	}
}

// geminiEvents flattens one live server message into normalized events.
func geminiEvents(msg *genai.LiveServerMessage) []Event {
	if msg == nil {
		return nil
	}
	var out []Event

	if tc := msg.ToolCall; tc != nil {
		for _, fc := range tc.FunctionCalls {
			if fc == nil {
				continue
			}
			args := make(map[string]string, len(fc.Args))
			for k, v := range fc.Args {
				args[k] = fmt.Sprintf("%v", v)
			}
			out = append(out, Event{
				Type: EventToolCall,
				Call: &ToolCall{ID: fc.ID, Name: fc.Name, Args: args},
			})
		}
	}

	sc := msg.ServerContent
	if sc == nil {
		return out
	}
	if sc.Interrupted {
		out = append(out, Event{Type: EventInterrupted})
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		out = append(out, Event{Type: EventInputTranscript, Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		out = append(out, Event{Type: EventOutputTranscript, Text: sc.OutputTranscription.Text})
	}
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			out = append(out, Event{
				Type:        EventAudioChunk,
				AudioBase64: base64.StdEncoding.EncodeToString(part.InlineData.Data),
				MIMEType:    part.InlineData.MIMEType,
			})
		}
	}
	if gm := sc.GroundingMetadata; gm != nil {
		var sources []string
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			label := strings.TrimSpace(chunk.Web.Title)
			if label == "" {
				label = strings.TrimSpace(chunk.Web.URI)
			}
			if label != "" {
				sources = append(sources, label)
			}
		}
		if len(sources) > 0 {
			out = append(out, Event{Type: EventGrounding, Sources: sources})
		}
	}
	if sc.TurnComplete {
		out = append(out, Event{Type: EventTurnComplete})
	}
	return out
}
