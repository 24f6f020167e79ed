package audio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncodePCM16Clamps(t *testing.T) {
	got := EncodePCM16([]float32{2.0, -2.0, 0, 1.0, -1.0})
	want := []byte{
		0xff, 0x7f, // +32767
		0x00, 0x80, // -32768
		0x00, 0x00,
		0xff, 0x7f,
		0x00, 0x80,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodePCM16 = %v, want %v", got, want)
	}
}

func TestEncodePCM16SymmetricScale(t *testing.T) {
	// Positive and negative samples use the same 32768 scale the
	// decoder divides by, so exact fractions survive a round trip.
	got := EncodePCM16([]float32{0.5, -0.5, 1.0 / 32768, -1.0 / 32768})
	want := []byte{
		0x00, 0x40, // +16384
		0x00, 0xc0, // -16384
		0x01, 0x00, // +1
		0xff, 0xff, // -1
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodePCM16 = %v, want %v", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.99, -0.99}
	pcm := EncodePCM16(in)
	buf, err := DecodePCM16Bytes(pcm, 16000, 1)
	if err != nil {
		t.Fatalf("DecodePCM16Bytes() error = %v", err)
	}
	if len(buf.Samples) != len(in) {
		t.Fatalf("len(Samples) = %d, want %d", len(buf.Samples), len(in))
	}
	for i := range in {
		diff := buf.Samples[i] - in[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/32768 {
			t.Fatalf("Samples[%d] = %f, want within 1/32768 of %f", i, buf.Samples[i], in[i])
		}
	}
}

func TestDecodePCM16RejectsMisalignedPayload(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})
	_, err := DecodePCM16(data, 24000, 1)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("DecodePCM16(misaligned) error = %v, want ErrDecode", err)
	}
}

func TestDecodePCM16RejectsBadBase64(t *testing.T) {
	_, err := DecodePCM16("!!not base64!!", 24000, 1)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("DecodePCM16(bad base64) error = %v, want ErrDecode", err)
	}
}

func TestNewTransportFrame(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0x02, 0x00}
	frame := NewTransportFrame(pcm, 16000)
	if frame.MIMEType != "audio/pcm;rate=16000" {
		t.Fatalf("MIMEType = %q, want %q", frame.MIMEType, "audio/pcm;rate=16000")
	}
	raw, err := base64.StdEncoding.DecodeString(frame.Data)
	if err != nil {
		t.Fatalf("frame data is not valid base64: %v", err)
	}
	if !bytes.Equal(raw, pcm) {
		t.Fatalf("decoded frame data = %v, want %v", raw, pcm)
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float32, 24000), SampleRate: 24000, Channels: 1}
	if got := buf.Duration(); got != time.Second {
		t.Fatalf("Duration() = %s, want 1s", got)
	}
	stereo := &Buffer{Samples: make([]float32, 48000), SampleRate: 24000, Channels: 2}
	if got := stereo.Duration(); got != time.Second {
		t.Fatalf("stereo Duration() = %s, want 1s", got)
	}
	var nilBuf *Buffer
	if got := nilBuf.Duration(); got != 0 {
		t.Fatalf("nil Duration() = %s, want 0", got)
	}
}

func TestSineToneLength(t *testing.T) {
	buf := SineTone(440, 16000, 250*time.Millisecond, 0.2)
	if len(buf.Samples) != 4000 {
		t.Fatalf("len(Samples) = %d, want 4000", len(buf.Samples))
	}
	for i, s := range buf.Samples {
		if s > 0.2001 || s < -0.2001 {
			t.Fatalf("Samples[%d] = %f, want within amplitude 0.2", i, s)
		}
	}
}

func TestWriteWAVHeaderShape(t *testing.T) {
	var out bytes.Buffer
	pcm := EncodePCM16([]float32{0.1, -0.1, 0.2, -0.2})
	if err := WriteWAV(&out, pcm, 16000, 1); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	b := out.Bytes()
	if len(b) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(b), 44+len(pcm))
	}
	if !strings.HasPrefix(string(b), "RIFF") {
		t.Fatalf("wav prefix = %q, want RIFF", string(b[:4]))
	}
	if string(b[8:12]) != "WAVE" {
		t.Fatalf("wav format = %q, want WAVE", string(b[8:12]))
	}
}
