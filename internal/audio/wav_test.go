package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestDumpPatchesSizesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.wav")
	d, err := NewDump(path, 24000, 1)
	if err != nil {
		t.Fatalf("NewDump() error = %v", err)
	}

	pcm := EncodePCM16(make([]float32, 1200))
	if err := d.Write(pcm); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Second close is a no-op.
	if err := d.Close(); err != nil {
		t.Fatalf("Close() second call error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) != 44+len(pcm) {
		t.Fatalf("file length = %d, want %d", len(raw), 44+len(pcm))
	}
	riffSize := binary.LittleEndian.Uint32(raw[4:8])
	if riffSize != uint32(36+len(pcm)) {
		t.Fatalf("riff size = %d, want %d", riffSize, 36+len(pcm))
	}
	dataSize := binary.LittleEndian.Uint32(raw[40:44])
	if dataSize != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", dataSize, len(pcm))
	}
}

func TestDumpWriteAfterCloseIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.wav")
	d, err := NewDump(path, 24000, 1)
	if err != nil {
		t.Fatalf("NewDump() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Write([]byte{0x01, 0x00}); err != nil {
		t.Fatalf("Write() after close error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) != 44 {
		t.Fatalf("file length = %d, want header only (44)", len(raw))
	}
}
