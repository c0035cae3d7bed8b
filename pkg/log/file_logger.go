package log

import (
	"os"
	"sync"
)

// FileLogger writes output events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
//
// With a rotation limit set, the current file is renamed to path+".1"
// (replacing any previous generation) once it grows past the limit, and
// logging continues into a fresh file.
type FileLogger struct {
	path    string
	maxSize int64

	mu      sync.Mutex
	file    *os.File
	written int64
	closed  bool
}

// NewFileLogger creates a FileLogger that appends to the specified path
// without rotation. The file is created with permissions 0644 if it
// doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	return NewRotatingFileLogger(path, 0)
}

// NewRotatingFileLogger creates a FileLogger that rotates once the file
// exceeds maxSize bytes. A maxSize of 0 disables rotation.
func NewRotatingFileLogger(path string, maxSize int64) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &FileLogger{
		path:    path,
		maxSize: maxSize,
		file:    f,
		written: info.Size(),
	}, nil
}

// Log writes an event to the log file.
// This method is safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Ignore encoding errors - logging should not disrupt the output thread
	data, err := EncodeEvent(event)
	if err != nil {
		return
	}
	n, err := l.file.Write(data)
	l.written += int64(n)
	if err != nil {
		return
	}

	if l.maxSize > 0 && l.written >= l.maxSize {
		l.rotate()
	}
}

// rotate renames the current file to path+".1" and reopens a fresh one.
// Called with the mutex held. On any failure logging continues into the
// current file.
func (l *FileLogger) rotate() {
	if err := l.file.Close(); err != nil {
		return
	}
	_ = os.Rename(l.path, l.path+".1")

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.closed = true
		return
	}
	l.file = f
	l.written = 0
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
