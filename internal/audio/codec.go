package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrDecode reports a malformed audio payload from the remote service.
var ErrDecode = errors.New("malformed audio payload")

// Buffer is a decoded block of floating-point samples ready for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 || b.Channels <= 0 || len(b.Samples) == 0 {
		return 0
	}
	frames := len(b.Samples) / b.Channels
	return time.Duration(float64(frames) / float64(b.SampleRate) * float64(time.Second))
}

// TransportFrame is one encoded audio chunk ready to send upstream.
type TransportFrame struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// EncodePCM16 maps float samples in [-1, 1] to 16-bit little-endian PCM.
// Out-of-range samples are clamped, never rejected.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		// Same 32768 scale as the decoder, so a round trip stays within
		// one quantization step. Only +1.0 itself needs the upper clamp.
		scaled := float64(s) * 32768
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(scaled)))
	}
	return out
}

// NewTransportFrame base64-encodes raw PCM16 bytes and tags them with the
// MIME type the realtime protocol expects.
func NewTransportFrame(pcm []byte, sampleRate int) TransportFrame {
	return TransportFrame{
		MIMEType: fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
		Data:     base64.StdEncoding.EncodeToString(pcm),
	}
}

// DecodePCM16 base64-decodes a payload, reinterprets it as 16-bit
// little-endian PCM and rescales to float samples at the given rate.
func DecodePCM16(data string, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrDecode, sampleRate)
	}
	if channels <= 0 {
		channels = 1
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return DecodePCM16Bytes(raw, sampleRate, channels)
}

// DecodePCM16Bytes converts raw PCM16LE bytes to a playable Buffer.
func DecodePCM16Bytes(raw []byte, sampleRate, channels int) (*Buffer, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of samples", ErrDecode, len(raw))
	}
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float32(v) / 32768
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// PCM16 re-encodes the buffer as raw PCM16LE bytes.
func (b *Buffer) PCM16() []byte {
	return EncodePCM16(b.Samples)
}

// SineTone synthesizes a mono test tone; used by the probe CLI and the
// mock transport so offline runs still exercise the playback path.
func SineTone(freqHz float64, sampleRate int, d time.Duration, amplitude float64) *Buffer {
	if sampleRate <= 0 || d <= 0 {
		return &Buffer{SampleRate: sampleRate, Channels: 1}
	}
	if amplitude <= 0 || amplitude > 1 {
		amplitude = 0.2
	}
	n := int(float64(sampleRate) * d.Seconds())
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = float32(amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate, Channels: 1}
}
