package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunLogLayout names the run log file.
const RunLogLayout = "2006-01-02_15-04-05"

// RunLog is the plain text record of detections and errors of one run.
type RunLog struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// NewRunLog creates `<dir>/<timestamp>.txt`.
func NewRunLog(dir string, now time.Time) (*RunLog, error) {
	path := filepath.Join(dir, now.Format(RunLogLayout)+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run log: %w", err)
	}
	return &RunLog{path: path, file: f}, nil
}

// Path returns the log file path.
func (l *RunLog) Path() string {
	return l.path
}

// Printf appends one line.
func (l *RunLog) Printf(format string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.file, format+"\n", args...); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
