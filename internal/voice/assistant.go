package voice

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/capture"
	"github.com/guychenya/giton/internal/history"
	"github.com/guychenya/giton/internal/observability"
	"github.com/guychenya/giton/internal/playback"
	"github.com/guychenya/giton/internal/tools"
)

// State is the realtime session lifecycle. listening is the only state
// in which audio frames are forwarded and tool calls dispatched.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateListening  State = "listening"
	StateError      State = "error"
)

// Status is a point-in-time snapshot of the assistant for UI polling.
type Status struct {
	State           State  `json:"state"`
	UserTranscript  string `json:"user_transcript"`
	ModelTranscript string `json:"model_transcript"`
	LastError       string `json:"last_error,omitempty"`
}

// Config wires the assistant to its collaborators. All fields except
// AudioDump are required.
type Config struct {
	Dialer  Dialer
	Capture capture.Pipeline
	// Output opens the speaker sink for one session. A fresh sink is
	// acquired on every Start and released on Stop.
	Output  func() (playback.Sink, error)
	Tools   *tools.Registry
	History *history.Manager
	Metrics *observability.Metrics

	// RepoContext is the preformatted repository description block
	// included verbatim in the session's behavioral prompt.
	RepoContext string

	InputSampleRate  int
	OutputSampleRate int

	// AudioDump, when set, receives every decoded assistant audio chunk.
	AudioDump *audio.Dump
}

// Assistant owns one voice session at a time: microphone capture in,
// scheduled speech playback out, tool calls bridged to local actions
// and finalized turns appended to history.
type Assistant struct {
	cfg Config

	mu        sync.Mutex
	state     State
	gen       uint64
	transport Transport
	scheduler *playback.Scheduler
	cancel    context.CancelFunc
	loopDone  chan struct{}

	liveUser       string
	liveModel      strings.Builder
	citations      []string
	turnStartedAt  time.Time
	firstAudioSeen bool
	lastErr        string
}

func NewAssistant(cfg Config) *Assistant {
	if cfg.InputSampleRate <= 0 {
		cfg.InputSampleRate = 16000
	}
	if cfg.OutputSampleRate <= 0 {
		cfg.OutputSampleRate = 24000
	}
	return &Assistant{cfg: cfg, state: StateIdle}
}

// Start opens a session: microphone first, then the remote connection.
// It is a no-op while a session is connecting or already live. A failed
// start leaves the assistant in the error state with a user-facing
// message; the next Start may retry.
func (a *Assistant) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state == StateConnecting || a.state == StateListening {
		a.mu.Unlock()
		return nil
	}
	a.state = StateConnecting
	a.lastErr = ""
	a.gen++
	gen := a.gen
	a.mu.Unlock()
	a.cfg.Metrics.SessionEvents.WithLabelValues("session_start").Inc()

	sessionCtx, cancel := context.WithCancel(context.Background())

	if err := a.cfg.Capture.Start(sessionCtx, a.forwardFrame); err != nil {
		cancel()
		a.enterError(gen, "Microphone unavailable. Check input device permissions.")
		a.cfg.Metrics.SessionEvents.WithLabelValues("capture_failed").Inc()
		return err
	}

	setup := SessionConfig{
		SessionID:        uuid.NewString(),
		SystemPrompt:     BuildSystemPrompt(a.cfg.RepoContext),
		Tools:            a.cfg.Tools.Declarations(),
		InputSampleRate:  a.cfg.InputSampleRate,
		OutputSampleRate: a.cfg.OutputSampleRate,
	}
	connectStart := time.Now()
	transport, err := a.cfg.Dialer.Connect(ctx, setup)
	if err != nil {
		a.cfg.Capture.Stop()
		cancel()
		a.enterError(gen, "Could not reach the voice service.")
		a.cfg.Metrics.SessionEvents.WithLabelValues("connect_failed").Inc()
		return err
	}
	a.cfg.Metrics.Latency.Observe(observability.StageConnect, float64(time.Since(connectStart).Milliseconds()))

	sink, err := a.cfg.Output()
	if err != nil {
		_ = transport.Close()
		a.cfg.Capture.Stop()
		cancel()
		a.enterError(gen, "Audio output device unavailable.")
		return err
	}
	scheduler := playback.NewScheduler(sink)

	done := make(chan struct{})
	a.mu.Lock()
	if a.gen != gen || a.state != StateConnecting {
		// Stop raced the connect; release what was acquired and leave
		// the state Stop decided on.
		a.mu.Unlock()
		scheduler.Teardown()
		_ = transport.Close()
		a.cfg.Capture.Stop()
		cancel()
		return nil
	}
	a.transport = transport
	a.scheduler = scheduler
	a.cancel = cancel
	a.loopDone = done
	a.state = StateListening
	a.mu.Unlock()
	a.cfg.Metrics.SessionActive.Set(1)
	a.cfg.Metrics.SessionEvents.WithLabelValues("session_listening").Inc()

	go a.eventLoop(sessionCtx, transport, scheduler, done)
	return nil
}

// Stop is the single cancellation entry point. It is idempotent and
// safe from every state, including when Start was never called: the
// microphone is released, playback torn down, the remote session closed
// and the state returned to idle. Close errors are logged, never
// surfaced.
func (a *Assistant) Stop() {
	a.mu.Lock()
	a.gen++
	transport := a.transport
	scheduler := a.scheduler
	cancel := a.cancel
	done := a.loopDone
	wasIdle := a.state == StateIdle
	a.transport = nil
	a.scheduler = nil
	a.cancel = nil
	a.loopDone = nil
	a.resetTurnLocked()
	a.state = StateIdle
	a.mu.Unlock()

	a.cfg.Capture.Stop()
	if scheduler != nil {
		scheduler.Teardown()
	}
	if cancel != nil {
		cancel()
	}
	if transport != nil {
		if err := transport.Close(); err != nil {
			log.Printf("voice: close transport: %v", err)
		}
	}
	if done != nil {
		<-done
	}
	if !wasIdle {
		a.cfg.Metrics.SessionActive.Set(0)
		a.cfg.Metrics.SessionEvents.WithLabelValues("session_stopped").Inc()
	}
}

// Status returns the live fields the UI polls.
func (a *Assistant) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		State:           a.state,
		UserTranscript:  a.liveUser,
		ModelTranscript: a.liveModel.String(),
		LastError:       a.lastErr,
	}
}

// State returns the current lifecycle state.
func (a *Assistant) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// forwardFrame is the capture callback. Frames arriving outside the
// listening state are dropped.
func (a *Assistant) forwardFrame(samples []float32) {
	a.mu.Lock()
	transport := a.transport
	listening := a.state == StateListening
	a.mu.Unlock()
	if !listening || transport == nil {
		return
	}
	frame := audio.NewTransportFrame(audio.EncodePCM16(samples), a.cfg.InputSampleRate)
	if err := transport.SendAudioFrame(context.Background(), frame); err != nil {
		log.Printf("voice: send audio frame: %v", err)
		return
	}
	a.cfg.Metrics.AudioFramesSent.Inc()
}

func (a *Assistant) eventLoop(ctx context.Context, transport Transport, scheduler *playback.Scheduler, done chan struct{}) {
	defer close(done)

	for evt := range transport.Events() {
		switch evt.Type {
		case EventInputTranscript:
			// The evolving user utterance replaces, never appends.
			a.mu.Lock()
			a.liveUser = evt.Text
			if a.turnStartedAt.IsZero() && strings.TrimSpace(evt.Text) != "" {
				a.turnStartedAt = time.Now()
				a.firstAudioSeen = false
			}
			a.mu.Unlock()

		case EventOutputTranscript:
			a.mu.Lock()
			a.liveModel.WriteString(evt.Text)
			a.mu.Unlock()

		case EventAudioChunk:
			buf, err := audio.DecodePCM16(evt.AudioBase64, a.cfg.OutputSampleRate, 1)
			if err != nil {
				log.Printf("voice: dropping undecodable audio chunk: %v", err)
				a.cfg.Metrics.DecodeFailures.Inc()
				continue
			}
			a.observeFirstAudio()
			scheduler.Enqueue(buf)
			if a.cfg.AudioDump != nil {
				if err := a.cfg.AudioDump.Write(buf.PCM16()); err != nil {
					log.Printf("voice: audio dump: %v", err)
				}
			}

		case EventToolCall:
			if evt.Call == nil {
				continue
			}
			dispatchStart := time.Now()
			result := a.cfg.Tools.Dispatch(ctx, evt.Call.Name, evt.Call.Args)
			a.cfg.Metrics.Latency.Observe(observability.StageToolDispatch, float64(time.Since(dispatchStart).Milliseconds()))
			a.cfg.Metrics.ToolDispatches.WithLabelValues(evt.Call.Name, tools.Outcome(result)).Inc()
			if err := transport.SendToolResponse(ctx, evt.Call.ID, evt.Call.Name, result); err != nil {
				log.Printf("voice: send tool response %s: %v", evt.Call.Name, err)
			}

		case EventInterrupted:
			scheduler.InterruptAll()
			a.cfg.Metrics.Interruptions.Inc()

		case EventGrounding:
			a.mu.Lock()
			a.citations = append(a.citations, evt.Sources...)
			a.mu.Unlock()

		case EventTurnComplete:
			a.finalizeTurn(ctx)
			a.cfg.Metrics.TurnsCompleted.Inc()

		case EventError:
			msg := strings.TrimSpace(evt.Detail)
			if msg == "" {
				msg = evt.Code
			}
			a.mu.Lock()
			a.lastErr = "Voice service error: " + msg
			a.mu.Unlock()
			a.cfg.Metrics.SessionEvents.WithLabelValues("backend_error").Inc()
			if !evt.Retryable {
				a.teardownFromLoop(done, StateError, "Voice service error: "+msg)
			}
		}
	}

	// Remote drop: same teardown as an explicit Stop. The in-flight
	// partial turn is discarded, not recoverable.
	a.teardownFromLoop(done, StateIdle, "Voice session disconnected.")
}

// teardownFromLoop releases session resources from inside the event
// loop. It is a no-op when Stop already claimed them.
func (a *Assistant) teardownFromLoop(done chan struct{}, final State, msg string) {
	a.mu.Lock()
	if a.loopDone != done {
		a.mu.Unlock()
		return
	}
	a.gen++
	transport := a.transport
	scheduler := a.scheduler
	cancel := a.cancel
	a.transport = nil
	a.scheduler = nil
	a.cancel = nil
	a.loopDone = nil
	a.resetTurnLocked()
	a.state = final
	a.lastErr = msg
	a.mu.Unlock()

	a.cfg.Capture.Stop()
	if scheduler != nil {
		scheduler.Teardown()
	}
	if cancel != nil {
		cancel()
	}
	if transport != nil {
		_ = transport.Close()
	}
	a.cfg.Metrics.SessionActive.Set(0)
	a.cfg.Metrics.SessionEvents.WithLabelValues("session_dropped").Inc()
}

// finalizeTurn converts the accumulated live transcripts into zero, one
// or two history messages. Citations are appended to the model text
// before it is committed.
func (a *Assistant) finalizeTurn(ctx context.Context) {
	a.mu.Lock()
	user := strings.TrimSpace(a.liveUser)
	model := strings.TrimSpace(a.liveModel.String())
	sources := a.citations
	if !a.turnStartedAt.IsZero() {
		a.cfg.Metrics.Latency.Observe(observability.StageTurnTotal, float64(time.Since(a.turnStartedAt).Milliseconds()))
	}
	a.resetTurnLocked()
	a.mu.Unlock()

	if model != "" && len(sources) > 0 {
		model += "\n\nSources: " + strings.Join(dedupe(sources), ", ")
	}

	var msgs []history.Message
	if user != "" {
		msgs = append(msgs, history.Message{Role: history.RoleUser, Text: user})
	}
	if model != "" {
		msgs = append(msgs, history.Message{Role: history.RoleModel, Text: model})
	}
	if len(msgs) == 0 {
		return
	}
	if err := a.cfg.History.Append(ctx, msgs...); err != nil {
		log.Printf("voice: persist turn: %v", err)
	}
}

func (a *Assistant) observeFirstAudio() {
	a.mu.Lock()
	started := a.turnStartedAt
	seen := a.firstAudioSeen
	a.firstAudioSeen = true
	a.mu.Unlock()
	if seen || started.IsZero() {
		return
	}
	a.cfg.Metrics.ObserveFirstAudioLatency(time.Since(started))
}

func (a *Assistant) enterError(gen uint64, msg string) {
	a.mu.Lock()
	if a.gen == gen {
		a.state = StateError
		a.lastErr = msg
	}
	a.mu.Unlock()
}

func (a *Assistant) resetTurnLocked() {
	a.liveUser = ""
	a.liveModel.Reset()
	a.citations = nil
	a.turnStartedAt = time.Time{}
	a.firstAudioSeen = false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
