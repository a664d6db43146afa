// Package logging builds the process-wide structured logger.
//
// Every record is written as one line to stdout and, when enabled, appended
// to a log file. JSON records carry timestamp, level, service and message keys.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Options configures the logger.
type Options struct {
	Service string
	Level   string
	Format  string // "json" or "text"

	// FilePath is opened in append mode when non-empty.
	FilePath string

	// Console defaults to os.Stdout.
	Console io.Writer
}

// Logger owns the slog.Logger and the file it writes to.
type Logger struct {
	*slog.Logger

	file      *os.File
	closeOnce sync.Once
}

// New creates the logger. Call Close on shutdown to release the log file.
func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	var (
		out  = console
		file *os.File
	)

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(console, f)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: renameKeys,
	}

	var h slog.Handler
	if opts.Format == "text" {
		h = slog.NewTextHandler(out, handlerOpts)
	} else {
		h = slog.NewJSONHandler(out, handlerOpts)
	}

	logger := slog.New(h)
	if opts.Service != "" {
		logger = logger.With(slog.String("service", opts.Service))
	}

	return &Logger{Logger: logger, file: file}, nil
}

// Close syncs and closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file == nil {
			return
		}
		if syncErr := l.file.Sync(); syncErr != nil {
			err = fmt.Errorf("failed to sync log file: %w", syncErr)
		}
		if closeErr := l.file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close log file: %w", closeErr)
		}
	})
	return err
}

// ParseLevel converts string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// renameKeys maps slog's built-in keys to the log schema.
func renameKeys(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
