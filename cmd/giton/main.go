package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/guychenya/giton/internal/actions"
	"github.com/guychenya/giton/internal/audio"
	"github.com/guychenya/giton/internal/capture"
	"github.com/guychenya/giton/internal/config"
	"github.com/guychenya/giton/internal/history"
	"github.com/guychenya/giton/internal/httpapi"
	"github.com/guychenya/giton/internal/observability"
	"github.com/guychenya/giton/internal/playback"
	"github.com/guychenya/giton/internal/policy"
	"github.com/guychenya/giton/internal/tools"
	"github.com/guychenya/giton/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	metrics.Latency.SetStageTarget(observability.StageFirstAudio, cfg.FirstAudioSLO)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.HistoryDir)
	if err != nil {
		log.Fatalf("history store init failed: %v", err)
	}
	defer store.Close()

	var redact history.Redactor
	if cfg.RedactPII {
		redact = policy.RedactPII
	}
	manager := history.NewManager(store, redact)
	manager.Load(ctx)

	registry := tools.NewRegistry()
	bridge := actions.NewBridge(actions.Config{
		Notify: func(evt actions.Event) {
			log.Printf("action %s: %s", evt.Name, evt.Result)
		},
	})
	bridge.RegisterAll(registry)

	var repoContext string
	if cfg.RepoContextPath != "" {
		raw, err := os.ReadFile(cfg.RepoContextPath)
		if err != nil {
			log.Fatalf("repo context read failed: %v", err)
		}
		repoContext = strings.TrimSpace(string(raw))
	}

	var dialer voice.Dialer
	transportMode := cfg.VoiceTransport

	tryGemini := func() bool {
		if cfg.GeminiAPIKey == "" {
			return false
		}
		dialer = voice.NewGeminiDialer(voice.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiLiveModel,
		})
		log.Printf("voice transport: gemini live (%s)", cfg.GeminiLiveModel)
		return true
	}

	tryRelay := func() bool {
		if cfg.RelayWSURL == "" {
			return false
		}
		dialer = voice.NewRelayDialer(voice.RelayConfig{WSURL: cfg.RelayWSURL})
		log.Printf("voice transport: websocket relay (%s)", cfg.RelayWSURL)
		return true
	}

	switch transportMode {
	case "gemini":
		if !tryGemini() {
			log.Fatalf("VOICE_TRANSPORT=gemini but GEMINI_API_KEY is not set")
		}
	case "relay":
		if !tryRelay() {
			log.Fatalf("VOICE_TRANSPORT=relay but GITON_RELAY_WS_URL is not set")
		}
	case "mock":
		dialer = voice.NewMockDialer()
		log.Printf("voice transport: mock")
	default: // auto; config.Load rejects anything else
		if tryGemini() {
			break
		}
		if tryRelay() {
			break
		}
		dialer = voice.NewMockDialer()
		log.Printf("voice transport: mock (no gemini key and no relay url)")
	}

	var dump *audio.Dump
	if cfg.AudioDumpPath != "" {
		dump, err = audio.NewDump(cfg.AudioDumpPath, cfg.OutputSampleRate, 1)
		if err != nil {
			log.Fatalf("audio dump init failed: %v", err)
		}
		defer dump.Close()
	}

	mic := capture.NewDevice(capture.DeviceConfig{
		SampleRate:      cfg.InputSampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Channels:        1,
	})

	assistant := voice.NewAssistant(voice.Config{
		Dialer:  dialer,
		Capture: mic,
		Output: func() (playback.Sink, error) {
			return playback.NewDeviceSink(playback.DeviceConfig{
				SampleRate: cfg.OutputSampleRate,
				Channels:   1,
			})
		},
		Tools:            registry,
		History:          manager,
		Metrics:          metrics,
		RepoContext:      repoContext,
		InputSampleRate:  cfg.InputSampleRate,
		OutputSampleRate: cfg.OutputSampleRate,
		AudioDump:        dump,
	})
	defer assistant.Stop()

	api := httpapi.New(cfg, assistant, registry, manager, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	assistant.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
