// Package debuglog writes structured debug logs to a file.
package debuglog

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Path is the default debug log location, in the working directory so it is easy to find.
const Path = "indico-debug.log"

// Logger is a slog logger backed by a debug file.
// The zero-cost disabled form discards everything.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Open returns a JSON logger writing to path when enabled, or a discarding
// logger otherwise. An empty path means Path. The file is truncated.
func Open(enabled bool, path string) (*Logger, error) {
	if !enabled {
		return Discard(), nil
	}
	if path == "" {
		path = Path
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := &Logger{Logger: slog.New(handler), file: f}
	l.Info("debug start", "log_file", path, "pid", os.Getpid())
	return l, nil
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Enabled reports whether records reach a file.
func (l *Logger) Enabled() bool {
	return l != nil && l.file != nil
}

// Close writes a final record and closes the file.
func (l *Logger) Close() error {
	if !l.Enabled() {
		return nil
	}
	l.Info("debug end", "at", time.Now().Format(time.RFC3339))
	return l.file.Close()
}
