package playback

import (
	"sync"

	"github.com/guychenya/giton/internal/audio"
)

// FakeSink records Play/Flush/Close calls for tests.
type FakeSink struct {
	mu      sync.Mutex
	played  []*audio.Buffer
	flushes int
	closed  bool
}

func NewFakeSink() *FakeSink { return &FakeSink{} }

func (f *FakeSink) Play(buf *audio.Buffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, buf)
	return nil
}

func (f *FakeSink) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *FakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FakeSink) Played() []*audio.Buffer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*audio.Buffer, len(f.played))
	copy(out, f.played)
	return out
}

func (f *FakeSink) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

func (f *FakeSink) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
