package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/probablyarth/dynload-go/httpinject"
)

const (
	defaultListenAddr   = ":8080"
	defaultFetchTimeout = 30 * time.Second
	defaultLogFormat    = "json"

	envListenAddr   = "DYNLOAD_LISTEN_ADDR"
	envLogLevel     = "DYNLOAD_LOG_LEVEL"
	envLogFormat    = "DYNLOAD_LOG_FORMAT"
	envRetry        = "DYNLOAD_RETRY"
	envFetchTimeout = "DYNLOAD_FETCH_TIMEOUT"
	envMaxBytes     = "DYNLOAD_MAX_BYTES"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	LogLevel   slog.Level
	LogFormat  string
	// Retry is the default retry budget for batches that do not set one.
	Retry        int
	FetchTimeout time.Duration
	MaxBytes     int64
}

// Load reads configuration from environment variables with sensible defaults.
// Malformed numeric values fall back to their defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:   defaultListenAddr,
		LogLevel:     slog.LevelInfo,
		LogFormat:    defaultLogFormat,
		FetchTimeout: defaultFetchTimeout,
		MaxBytes:     httpinject.DefaultMaxBytes,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = ParseLogLevel(v)
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv(envRetry); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Retry = n
		}
	}
	if v := os.Getenv(envFetchTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if v := os.Getenv(envMaxBytes); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBytes = n
		}
	}

	return cfg
}

// ParseLogLevel maps a level name to a slog.Level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to w at the given level.
// format is "text" or "json"; anything else means json.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
