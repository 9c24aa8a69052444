// Package logger provides the process-wide structured logger.
//
// It wraps log/slog behind a package-level API so every component logs the
// same way without threading a logger through constructors. Output format
// (text or json), level, and destination are reconfigurable at runtime.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu      sync.RWMutex
	output  io.Writer = os.Stdout
	level             = slog.LevelInfo
	format            = "text"
	slogger           = newLogger(os.Stdout, slog.LevelInfo, "text")
)

func newLogger(w io.Writer, lvl slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// reconfigure rebuilds the slog handler from the current settings.
// Callers must hold mu.
func reconfigure() {
	slogger = newLogger(output, level, format)
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path (opened for append).
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
	}

	if cfg.Level != "" {
		level = parseLevel(cfg.Level)
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}

	reconfigure()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, lvl, formatName string) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	if lvl != "" {
		level = parseLevel(lvl)
	}
	if f := strings.ToLower(formatName); f == "text" || f == "json" {
		format = f
	}
	reconfigure()
}

// SetLevel sets the minimum log level. Invalid levels fall back to INFO.
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(lvl)
	reconfigure()
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

// Debug logs at debug level with structured fields.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with structured fields.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with structured fields.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger { return get().With(args...) }
