// Package protocol defines the JSON message set spoken with the relay
// realtime voice backend.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Client -> relay.
	TypeSessionSetup MessageType = "session_setup"
	TypeAudioChunk   MessageType = "audio_chunk"
	TypeToolResponse MessageType = "tool_response"

	// Relay -> client.
	TypeInputTranscription  MessageType = "input_transcription"
	TypeOutputTranscription MessageType = "output_transcription"
	TypeAssistantAudio      MessageType = "assistant_audio_chunk"
	TypeToolCall            MessageType = "tool_call"
	TypeInterrupted         MessageType = "interrupted"
	TypeTurnComplete        MessageType = "turn_complete"
	TypeGrounding           MessageType = "grounding"
	TypeErrorEvent          MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ToolDecl mirrors a local tool declaration for session setup.
type ToolDecl struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Params      []ParamDecl `json:"params,omitempty"`
}

type ParamDecl struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// SessionSetup opens a voice session: behavioral prompt, tool surface and
// negotiated sample rates, with transcription enabled in both directions.
type SessionSetup struct {
	Type             MessageType `json:"type"`
	SessionID        string      `json:"session_id"`
	SystemPrompt     string      `json:"system_prompt"`
	Tools            []ToolDecl  `json:"tools,omitempty"`
	InputSampleRate  int         `json:"input_sample_rate"`
	OutputSampleRate int         `json:"output_sample_rate"`
	Transcribe       bool        `json:"transcribe"`
}

// AudioChunk carries one base64 PCM16 frame toward the relay.
type AudioChunk struct {
	Type        MessageType `json:"type"`
	SessionID   string      `json:"session_id"`
	MIMEType    string      `json:"mime_type"`
	AudioBase64 string      `json:"audio_base64"`
}

// ToolResponse answers a tool call, tagged with the original call id.
type ToolResponse struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	CallID    string      `json:"call_id"`
	Name      string      `json:"name"`
	Result    string      `json:"result"`
}

// InputTranscription is the evolving transcript of the current user
// utterance; each message replaces the previous value.
type InputTranscription struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// OutputTranscription is an incremental fragment of what the model is
// saying; fragments are appended.
type OutputTranscription struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// AssistantAudio carries one base64 PCM16 chunk of synthesized speech.
type AssistantAudio struct {
	Type        MessageType `json:"type"`
	MIMEType    string      `json:"mime_type"`
	AudioBase64 string      `json:"audio_base64"`
}

// ToolCall asks the client to execute a named capability.
type ToolCall struct {
	Type   MessageType       `json:"type"`
	CallID string            `json:"call_id"`
	Name   string            `json:"name"`
	Args   map[string]string `json:"args,omitempty"`
}

// Interrupted signals user barge-in; all pending playback must stop.
type Interrupted struct {
	Type MessageType `json:"type"`
}

// TurnComplete marks the boundary of one exchange.
type TurnComplete struct {
	Type MessageType `json:"type"`
}

// Grounding carries source citations attached to the in-progress reply.
type Grounding struct {
	Type    MessageType `json:"type"`
	Sources []string    `json:"sources"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

// ParseServerMessage decodes one relay -> client payload.
func ParseServerMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeInputTranscription:
		var msg InputTranscription
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeOutputTranscription:
		var msg OutputTranscription
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeAssistantAudio:
		var msg AssistantAudio
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.AudioBase64 == "" {
			return nil, errors.New("invalid assistant_audio_chunk")
		}
		return msg, nil
	case TypeToolCall:
		var msg ToolCall
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.CallID == "" || msg.Name == "" {
			return nil, errors.New("invalid tool_call")
		}
		return msg, nil
	case TypeInterrupted:
		var msg Interrupted
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeTurnComplete:
		var msg TurnComplete
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeGrounding:
		var msg Grounding
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeErrorEvent:
		var msg ErrorEvent
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
