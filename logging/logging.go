// Package logging provides slog setup with optional rotating file output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration
type Config struct {
	// Level is the default log level
	Level string `mapstructure:"level"`

	// File enables a size-rotated log file in addition to stdout
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// SetDefaults sets default logging configuration
func (c *Config) SetDefaults(v *viper.Viper, prefix string) {
	p := ""
	if prefix != "" {
		p = prefix + "."
	}
	v.SetDefault(p+"level", "info")
	v.SetDefault(p+"file", "")
	v.SetDefault(p+"max_size_mb", 25)
	v.SetDefault(p+"max_backups", 10)
	v.SetDefault(p+"max_age_days", 14)
	v.SetDefault(p+"compress", true)
}

// ParseLevel converts a string to slog.Level
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new text logger with the specified level.
func NewLogger(level string) *slog.Logger {
	return newTextLogger(os.Stdout, level)
}

// New creates a logger from cfg. When cfg.File is set, output goes to stdout
// and to a rotating file; the returned closer releases the file.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return NewLogger(cfg.Level), io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	return newTextLogger(io.MultiWriter(os.Stdout, logWriter), cfg.Level), logWriter, nil
}

func newTextLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}
