package config

import (
	"log/slog"
	"strings"
)

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sanitize normalises the level string.
func (l *LoggingConfig) Sanitize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
}

// SlogLevel maps the configured level to slog, defaulting to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
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
