// Package activity implements the append-only event trail shared by all
// request handlers. Every mutating operation records one timestamped
// human-readable line summarizing what happened and whether it succeeded.
//
// The trail is operational breadcrumbs, not structured logging; the
// structured logger lives in internal/logger. Failures to append are
// swallowed: a broken trail must never take a session down with it.
package activity

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Log is an append-only event trail. A nil *Log is valid and discards
// everything, so callers never need to guard their Record calls.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if needed) the trail file for append.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log %q: %w", path, err)
	}
	return &Log{file: f}, nil
}

// Record appends one timestamped line. Write errors are ignored.
func (l *Log) Record(format string, args ...any) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("[%s] %s\n", time.Now().Format(timeLayout), fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_, _ = l.file.WriteString(line)
	}
}

// Close closes the underlying file. Further Record calls become no-ops.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
