// Package playback schedules decoded assistant audio for gapless,
// non-overlapping playback with immediate barge-in cancellation.
package playback

import (
	"sync"
	"time"

	"github.com/guychenya/giton/internal/audio"
)

// Sink renders scheduled buffers on the output device. Play must not
// block; Flush drops everything queued or playing immediately.
type Sink interface {
	Play(buf *audio.Buffer) error
	Flush()
	Close() error
}

type entry struct {
	timer   *time.Timer
	started bool
}

// Scheduler owns the monotonic playback cursor. Each enqueued buffer
// starts no earlier than the end of the previously scheduled one and
// never in the past.
type Scheduler struct {
	mu        sync.Mutex
	sink      Sink
	now       func() time.Time
	nextStart time.Time
	pending   map[int64]*entry
	nextID    int64
	closed    bool
}

// NewScheduler returns a scheduler rendering through sink.
func NewScheduler(sink Sink) *Scheduler {
	return &Scheduler{
		sink:    sink,
		now:     time.Now,
		pending: make(map[int64]*entry),
	}
}

// Enqueue schedules buf to start at max(nextStart, now) and advances the
// cursor by the buffer's duration. It never blocks. The scheduled start
// time is returned.
func (s *Scheduler) Enqueue(buf *audio.Buffer) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.closed || buf == nil || len(buf.Samples) == 0 {
		return now
	}

	start := s.nextStart
	if start.Before(now) {
		start = now
	}
	s.nextStart = start.Add(buf.Duration())

	id := s.nextID
	s.nextID++
	e := &entry{}
	e.timer = time.AfterFunc(start.Sub(now), func() { s.fire(id, buf) })
	s.pending[id] = e
	return start
}

// fire renders the buffer, then re-arms the entry's timer to expire when
// playback of this buffer finishes so the scheduled set stays accurate.
func (s *Scheduler) fire(id int64, buf *audio.Buffer) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	if !e.started {
		e.started = true
		e.timer = time.AfterFunc(buf.Duration(), func() { s.fire(id, buf) })
		sink := s.sink
		s.mu.Unlock()
		_ = sink.Play(buf)
		return
	}
	delete(s.pending, id)
	s.mu.Unlock()
}

// InterruptAll stops every playing or scheduled buffer, clears the
// scheduled set and resets the cursor to now. Used on barge-in.
func (s *Scheduler) InterruptAll() {
	s.mu.Lock()
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	s.nextStart = s.now()
	sink := s.sink
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		sink.Flush()
	}
}

// Teardown stops everything and releases the output device. Idempotent.
func (s *Scheduler) Teardown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	sink := s.sink
	s.mu.Unlock()

	sink.Flush()
	_ = sink.Close()
}

// ScheduledCount reports how many buffers are scheduled or playing.
func (s *Scheduler) ScheduledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
