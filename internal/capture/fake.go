package capture

import (
	"context"
	"sync"
)

// Fake is a scripted capture pipeline for tests and offline runs. Frames
// are delivered only when Emit is called.
type Fake struct {
	// FailStart, when set, is returned from Start instead of activating.
	FailStart error

	mu      sync.Mutex
	onFrame FrameFunc
	running bool
	stops   int
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) Start(_ context.Context, onFrame FrameFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailStart != nil {
		return f.FailStart
	}
	if f.running {
		return ErrAlreadyActive
	}
	f.running = true
	f.onFrame = onFrame
	return nil
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.running = false
	f.onFrame = nil
}

// Emit delivers one frame to the registered callback, if any.
func (f *Fake) Emit(samples []float32) {
	f.mu.Lock()
	cb := f.onFrame
	f.mu.Unlock()
	if cb != nil {
		cb(samples)
	}
}

// Running reports whether Start succeeded and Stop has not been called.
func (f *Fake) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Stops returns how many times Stop was called.
func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
