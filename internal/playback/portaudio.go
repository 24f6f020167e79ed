package playback

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/guychenya/giton/internal/audio"
)

// DeviceConfig tunes the speaker stream.
type DeviceConfig struct {
	SampleRate      int
	FramesPerBuffer int
	Channels        int
}

// DeviceSink renders audio through the default PortAudio output device.
// Queued samples are drained in realtime by a writer goroutine; Flush
// drops the queue so barge-in takes effect within one device buffer.
type DeviceSink struct {
	cfg DeviceConfig

	mu     sync.Mutex
	queue  []float32
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// NewDeviceSink opens the default output stream and starts draining.
func NewDeviceSink(cfg DeviceConfig) (*DeviceSink, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 24000
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 1024
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("open output device: %w", err)
	}

	out := make([]float32, cfg.FramesPerBuffer*cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), cfg.FramesPerBuffer, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open output device: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start output device: %w", err)
	}

	s := &DeviceSink{
		cfg:  cfg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.drain(stream, out)
	return s, nil
}

func (s *DeviceSink) drain(stream *portaudio.Stream, out []float32) {
	defer close(s.done)
	defer func() {
		_ = stream.Stop()
		_ = stream.Close()
		_ = portaudio.Terminate()
	}()
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		s.mu.Lock()
		n := copy(out, s.queue)
		s.queue = s.queue[n:]
		s.mu.Unlock()
		// Pad the tail with silence so the device keeps a steady cadence.
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		if err := stream.Write(); err != nil {
			log.Printf("playback: write error: %v", err)
		}
	}
}

// Play appends the buffer's samples to the device queue without blocking.
func (s *DeviceSink) Play(buf *audio.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || buf == nil {
		return nil
	}
	s.queue = append(s.queue, buf.Samples...)
	return nil
}

// Flush drops all queued samples immediately.
func (s *DeviceSink) Flush() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}

// Close stops the drain loop and releases the output device. Idempotent.
func (s *DeviceSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}
