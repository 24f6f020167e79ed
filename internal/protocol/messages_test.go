package protocol

import (
	"errors"
	"testing"
)

func TestParseServerMessageToolCall(t *testing.T) {
	raw := []byte(`{"type":"tool_call","call_id":"c1","name":"showExampleDetails","args":{"name":"auth"}}`)
	parsed, err := ParseServerMessage(raw)
	if err != nil {
		t.Fatalf("ParseServerMessage() error = %v", err)
	}
	call, ok := parsed.(ToolCall)
	if !ok {
		t.Fatalf("parsed type = %T, want ToolCall", parsed)
	}
	if call.CallID != "c1" || call.Name != "showExampleDetails" || call.Args["name"] != "auth" {
		t.Fatalf("ToolCall = %+v, want c1/showExampleDetails/auth", call)
	}
}

func TestParseServerMessageRejectsInvalidToolCall(t *testing.T) {
	raw := []byte(`{"type":"tool_call","name":"x"}`)
	if _, err := ParseServerMessage(raw); err == nil {
		t.Fatalf("ParseServerMessage(tool_call without call_id) error = nil, want error")
	}
}

func TestParseServerMessageTranscriptions(t *testing.T) {
	parsed, err := ParseServerMessage([]byte(`{"type":"input_transcription","text":"open the auth"}`))
	if err != nil {
		t.Fatalf("ParseServerMessage(input) error = %v", err)
	}
	if in, ok := parsed.(InputTranscription); !ok || in.Text != "open the auth" {
		t.Fatalf("parsed = %+v (%T), want InputTranscription", parsed, parsed)
	}

	parsed, err = ParseServerMessage([]byte(`{"type":"output_transcription","text":"Here "}`))
	if err != nil {
		t.Fatalf("ParseServerMessage(output) error = %v", err)
	}
	if out, ok := parsed.(OutputTranscription); !ok || out.Text != "Here " {
		t.Fatalf("parsed = %+v (%T), want OutputTranscription", parsed, parsed)
	}
}

func TestParseServerMessageControlSignals(t *testing.T) {
	if parsed, err := ParseServerMessage([]byte(`{"type":"interrupted"}`)); err != nil {
		t.Fatalf("ParseServerMessage(interrupted) error = %v", err)
	} else if _, ok := parsed.(Interrupted); !ok {
		t.Fatalf("parsed type = %T, want Interrupted", parsed)
	}
	if parsed, err := ParseServerMessage([]byte(`{"type":"turn_complete"}`)); err != nil {
		t.Fatalf("ParseServerMessage(turn_complete) error = %v", err)
	} else if _, ok := parsed.(TurnComplete); !ok {
		t.Fatalf("parsed type = %T, want TurnComplete", parsed)
	}
}

func TestParseServerMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseServerMessage([]byte(`{"type":"mystery"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ParseServerMessage(unknown) error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseServerMessageRejectsEmptyAudio(t *testing.T) {
	_, err := ParseServerMessage([]byte(`{"type":"assistant_audio_chunk","mime_type":"audio/pcm;rate=24000"}`))
	if err == nil {
		t.Fatalf("ParseServerMessage(empty audio) error = nil, want error")
	}
}
