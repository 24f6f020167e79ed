package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// WriteWAV writes raw PCM16LE audio bytes to out as a WAV stream.
func WriteWAV(out io.Writer, pcm []byte, sampleRate, channels int) error {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if channels <= 0 {
		channels = 1
	}
	if err := writeWAVHeader(out, uint32(len(pcm)), sampleRate, channels); err != nil {
		return err
	}
	_, err := out.Write(pcm)
	return err
}

// Dump appends received assistant audio to a WAV file for diagnostics.
// The header is patched with the final data size on Close.
type Dump struct {
	mu         sync.Mutex
	f          *os.File
	sampleRate int
	channels   int
	written    uint32
	closed     bool
}

// NewDump creates (truncating) the dump file and reserves the header.
func NewDump(path string, sampleRate, channels int) (*Dump, error) {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	if channels <= 0 {
		channels = 1
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create audio dump: %w", err)
	}
	if err := writeWAVHeader(f, 0, sampleRate, channels); err != nil {
		f.Close()
		return nil, fmt.Errorf("write audio dump header: %w", err)
	}
	return &Dump{f: f, sampleRate: sampleRate, channels: channels}, nil
}

// Write appends raw PCM16LE bytes to the dump.
func (d *Dump) Write(pcm []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	n, err := d.f.Write(pcm)
	d.written += uint32(n)
	return err
}

// Close patches the RIFF/data sizes and closes the file. Idempotent.
func (d *Dump) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var sizes [4]byte
	binary.LittleEndian.PutUint32(sizes[:], 36+d.written)
	if _, err := d.f.WriteAt(sizes[:], 4); err != nil {
		d.f.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sizes[:], d.written)
	if _, err := d.f.WriteAt(sizes[:], 40); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}

func writeWAVHeader(out io.Writer, dataSize uint32, sampleRate, channels int) error {
	const bitsPerSample = 16
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	if _, err := out.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := out.Write([]byte("WAVE")); err != nil {
		return err
	}

	if _, err := out.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	// PCM format tag.
	if err := binary.Write(out, binary.LittleEndian, uint16(1)); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint16(channels)); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	if _, err := out.Write([]byte("data")); err != nil {
		return err
	}
	return binary.Write(out, binary.LittleEndian, dataSize)
}
