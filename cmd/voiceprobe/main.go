// voiceprobe drives a scripted in-process voice session and reports the
// rolling latency window, so pipeline regressions show up without audio
// hardware or a live backend.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/guychenya/giton/internal/actions"
	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/capture"
	"github.com/guychenya/giton/internal/history"
	"github.com/guychenya/giton/internal/observability"
	"github.com/guychenya/giton/internal/playback"
	"github.com/guychenya/giton/internal/tools"
	"github.com/guychenya/giton/internal/voice"
)

type options struct {
	turns         int
	chunksPerTurn int
	chunkMS       int
	sampleRate    int
	withToolCall  bool
	jsonOut       bool
	timeout       time.Duration
}

func parseFlags() options {
	var opts options
	flag.IntVar(&opts.turns, "turns", 5, "number of scripted turns to run")
	flag.IntVar(&opts.chunksPerTurn, "chunks", 3, "audio chunks per turn")
	flag.IntVar(&opts.chunkMS, "chunk-ms", 200, "duration of each audio chunk in milliseconds")
	flag.IntVar(&opts.sampleRate, "rate", 24000, "playback sample rate")
	flag.BoolVar(&opts.withToolCall, "tool-call", true, "include a tool call in every turn")
	flag.BoolVar(&opts.jsonOut, "json", false, "emit the latency snapshot as JSON")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-turn completion timeout")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()
	if opts.turns <= 0 || opts.chunksPerTurn <= 0 || opts.chunkMS <= 0 {
		log.Fatalf("turns, chunks and chunk-ms must be positive")
	}

	ctx := context.Background()
	metrics := observability.NewMetrics("giton_probe")

	manager := history.NewManager(history.NewInMemoryStore(), nil)
	manager.Load(ctx)

	registry := tools.NewRegistry()
	actions.NewBridge(actions.Config{}).RegisterAll(registry)

	dialer := voice.NewMockDialer()
	mic := capture.NewFake()
	sink := playback.NewFakeSink()

	assistant := voice.NewAssistant(voice.Config{
		Dialer:           dialer,
		Capture:          mic,
		Output:           func() (playback.Sink, error) { return sink, nil },
		Tools:            registry,
		History:          manager,
		Metrics:          metrics,
		OutputSampleRate: opts.sampleRate,
	})
	defer assistant.Stop()

	if err := assistant.Start(ctx); err != nil {
		log.Fatalf("session start failed: %v", err)
	}

	chunk := base64.StdEncoding.EncodeToString(
		audio.SineTone(440, opts.sampleRate, time.Duration(opts.chunkMS)*time.Millisecond, 0.4).PCM16(),
	)

	transport := dialer.Last()
	for turn := 1; turn <= opts.turns; turn++ {
		before := len(manager.Messages())

		transport.Emit(voice.Event{
			Type: voice.EventInputTranscript,
			Text: fmt.Sprintf("probe turn %d", turn),
		})
		if opts.withToolCall {
			transport.Emit(voice.Event{
				Type: voice.EventToolCall,
				Call: &voice.ToolCall{
					ID:   fmt.Sprintf("probe-%d", turn),
					Name: "searchExamples",
					Args: map[string]string{"term": "probe"},
				},
			})
		}
		for i := 0; i < opts.chunksPerTurn; i++ {
			transport.Emit(voice.Event{
				Type:        voice.EventAudioChunk,
				AudioBase64: chunk,
				MIMEType:    fmt.Sprintf("audio/pcm;rate=%d", opts.sampleRate),
			})
		}
		transport.Emit(voice.Event{
			Type: voice.EventOutputTranscript,
			Text: fmt.Sprintf("probe answer %d", turn),
		})
		transport.Emit(voice.Event{Type: voice.EventTurnComplete})

		if err := waitForTurn(manager, before, opts.timeout); err != nil {
			log.Fatalf("turn %d: %v", turn, err)
		}
	}

	assistant.Stop()

	snap := metrics.Latency.Snapshot()
	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("encode snapshot: %v", err)
		}
		return
	}

	fmt.Printf("turns=%d chunks/turn=%d chunk=%dms played=%d\n",
		opts.turns, opts.chunksPerTurn, opts.chunkMS, len(sink.Played()))
	for _, st := range snap.Stages {
		fmt.Printf("%-16s samples=%-4d last=%-8.2fms avg=%-8.2fms p95=%-8.2fms p99=%.2fms\n",
			st.Stage, st.Samples, st.LastMS, st.AvgMS, st.P95MS, st.P99MS)
	}
	for _, ind := range snap.Indicators {
		fmt.Printf("%-16s count=%d\n", ind.Name, ind.Count)
	}
}

// waitForTurn polls until the history grows past its previous length,
// which marks the turn-complete event as fully processed.
func waitForTurn(manager *history.Manager, before int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(manager.Messages()) > before {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for turn completion")
}
