package capture

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// DeviceConfig tunes the microphone stream.
type DeviceConfig struct {
	SampleRate      int
	FramesPerBuffer int
	Channels        int
}

// Device captures from the default system microphone via PortAudio.
type Device struct {
	cfg DeviceConfig

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewDevice returns an idle microphone pipeline.
func NewDevice(cfg DeviceConfig) *Device {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 4096
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &Device{cfg: cfg}
}

// Start opens the default input stream and forwards frames to onFrame in
// capture order until Stop.
func (d *Device) Start(ctx context.Context, onFrame FrameFunc) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrAlreadyActive
	}
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	stop, done := d.stop, d.done
	d.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		d.reset()
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	frame := make([]float32, d.cfg.FramesPerBuffer*d.cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(d.cfg.Channels, 0, float64(d.cfg.SampleRate), d.cfg.FramesPerBuffer, frame)
	if err != nil {
		_ = portaudio.Terminate()
		d.reset()
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		d.reset()
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	go func() {
		defer close(done)
		defer func() {
			_ = stream.Stop()
			_ = stream.Close()
			_ = portaudio.Terminate()
		}()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			default:
			}
			if err := stream.Read(); err != nil {
				log.Printf("capture: read error: %v", err)
				return
			}
			out := make([]float32, len(frame))
			copy(out, frame)
			onFrame(out)
		}
	}()
	return nil
}

// Stop halts frame delivery and releases the device. Idempotent.
func (d *Device) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	stop, done := d.stop, d.done
	d.running = false
	d.stop = nil
	d.done = nil
	d.mu.Unlock()

	close(stop)
	<-done
}

func (d *Device) reset() {
	d.mu.Lock()
	d.running = false
	d.stop = nil
	d.done = nil
	d.mu.Unlock()
}
