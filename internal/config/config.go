package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the voice assistant service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// VoiceTransport selects the realtime backend: auto|gemini|relay|mock.
	VoiceTransport string

	GeminiAPIKey    string
	GeminiLiveModel string

	RelayWSURL string

	InputSampleRate  int
	OutputSampleRate int
	FramesPerBuffer  int

	FirstAudioSLO time.Duration

	DatabaseURL string
	HistoryDir  string
	RedactPII   bool

	RepoContextPath string
	AudioDumpPath   string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("GITON_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("GITON_METRICS_NAMESPACE", "giton"),
		AllowAnyOrigin:   false,
		VoiceTransport:   envOrDefault("VOICE_TRANSPORT", "auto"),
		GeminiAPIKey:     stringsTrimSpace("GEMINI_API_KEY"),
		// Native-audio live model with transcription and tool support.
		GeminiLiveModel:  envOrDefault("GEMINI_LIVE_MODEL", "gemini-2.0-flash-live-001"),
		RelayWSURL:       stringsTrimSpace("GITON_RELAY_WS_URL"),
		InputSampleRate:  16000,
		OutputSampleRate: 24000,
		FramesPerBuffer:  4096,
		FirstAudioSLO:    700 * time.Millisecond,
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		HistoryDir:       stringsTrimSpace("GITON_HISTORY_DIR"),
		RedactPII:        true,
		RepoContextPath:  stringsTrimSpace("GITON_REPO_CONTEXT_PATH"),
		AudioDumpPath:    stringsTrimSpace("GITON_AUDIO_DUMP_PATH"),
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("GITON_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.FirstAudioSLO, err = durationFromEnv("GITON_FIRST_AUDIO_SLO", cfg.FirstAudioSLO)
	if err != nil {
		return Config{}, err
	}
	cfg.InputSampleRate, err = intFromEnv("GITON_INPUT_SAMPLE_RATE", cfg.InputSampleRate)
	if err != nil {
		return Config{}, err
	}
	cfg.OutputSampleRate, err = intFromEnv("GITON_OUTPUT_SAMPLE_RATE", cfg.OutputSampleRate)
	if err != nil {
		return Config{}, err
	}
	cfg.FramesPerBuffer, err = intFromEnv("GITON_FRAMES_PER_BUFFER", cfg.FramesPerBuffer)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("GITON_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.RedactPII, err = boolFromEnv("GITON_REDACT_PII", cfg.RedactPII)
	if err != nil {
		return Config{}, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.VoiceTransport)) {
	case "auto", "gemini", "relay", "mock":
	default:
		return Config{}, fmt.Errorf("VOICE_TRANSPORT must be auto|gemini|relay|mock, got %q", cfg.VoiceTransport)
	}
	if cfg.InputSampleRate <= 0 {
		return Config{}, fmt.Errorf("GITON_INPUT_SAMPLE_RATE must be positive")
	}
	if cfg.OutputSampleRate <= 0 {
		return Config{}, fmt.Errorf("GITON_OUTPUT_SAMPLE_RATE must be positive")
	}
	if cfg.FramesPerBuffer <= 0 {
		return Config{}, fmt.Errorf("GITON_FRAMES_PER_BUFFER must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
