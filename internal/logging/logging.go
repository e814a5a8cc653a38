// Package logging provides the process-wide slog logger used by the
// validate CLI; the validators themselves do not log. It is initialized
// once by cmd/takane-validate's root command and discards everything until
// Init is called, so library callers of the takane package who never touch
// this package see no output.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// L is the global logger instance. It discards all output until Init is
// called.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded.
	JSON    bool       // Use slog.NewJSONHandler instead of text.
	Level   slog.Level // Minimum log level. Default: LevelInfo when enabled.
}

// Init configures the package logger. Call from main before any log calls.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	level := opts.Level
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	L = slog.New(handler)
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
