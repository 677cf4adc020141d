// Package audit maintains the append-only JSONL trail of failed
// external-store operations. One JSON record per line; a failed append
// never aborts the run.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Record is one audit entry for a failed synchronization step.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	URL       string    `json:"url"`
	Step      string    `json:"step"`
	Error     string    `json:"error"`
}

// Logger appends records to a JSONL file. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
}

// NewLogger creates a Logger writing to path. The parent directory is
// created on first append.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one record, stamping it with the current UTC time when
// the timestamp is zero.
func (l *Logger) Append(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "audit: marshal record")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "audit: create log directory")
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "audit: open log")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return eris.Wrap(err, "audit: append record")
	}
	return nil
}
