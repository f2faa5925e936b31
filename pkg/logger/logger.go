package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init configures the process-wide logger. Production defaults to JSON at
// info level, everything else to text at debug level; a non-empty level or
// format overrides the default.
func Init(env string, overrides ...string) {
	level := slog.LevelDebug
	format := "text"
	if env == "production" {
		level = slog.LevelInfo
		format = "json"
	}

	if len(overrides) > 0 && overrides[0] != "" {
		level = ParseLevel(overrides[0])
	}
	if len(overrides) > 1 && overrides[1] != "" {
		format = strings.ToLower(overrides[1])
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
