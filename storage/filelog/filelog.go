// Package filelog appends accepted readings to a human-readable text file.
package filelog

import (
	"fmt"
	"os"
	"sync"

	"github.com/and161185/fill-monitor/model"
)

// TimeLayout is the timestamp format used on each line.
const TimeLayout = "2006-01-02 15:04:05"

// FileLog writes one line per reading. Lines are never rewritten or removed.
type FileLog struct {
	path string
	mu   sync.Mutex
	f    *os.File
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return &FileLog{path: path, f: f}, nil
}

// Path returns the file the log writes to.
func (l *FileLog) Path() string { return l.path }

// Append writes r as a single line with one Write call.
func (l *FileLog) Append(r model.Reading) error {
	line := []byte(FormatLine(r))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return fmt.Errorf("append to %s: %w", l.path, os.ErrClosed)
	}
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	return nil
}

// Close closes the file. Append fails afterwards.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// FormatLine renders r as "<timestamp> | Distance: <d> cm | Fill: <f>%\n".
func FormatLine(r model.Reading) string {
	return fmt.Sprintf("%s | Distance: %s cm | Fill: %d%%\n", r.Timestamp.Format(TimeLayout), model.FormatDistance(r.Distance), r.Fill)
}
