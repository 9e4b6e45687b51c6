// Package logger sets up the engine's structured logging.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures where logs go.
type Options struct {
	Level string
	// File, when set, receives a copy of every record with size-based rotation.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Logger wraps slog with a mutable level and an optional rotating file.
type Logger struct {
	internal *slog.Logger
	level    *slog.LevelVar
	closer   io.Closer
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a text logger on stderr at the given level.
func NewLogger(level string) *Logger {
	return New(Options{Level: level}, os.Stderr)
}

// New builds a logger writing to w and, if opts.File is set, to the file.
func New(opts Options, w io.Writer) *Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(ParseLevel(opts.Level))

	l := &Logger{level: lvl}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			Compress:   true,
		}
		l.closer = lj
		w = io.MultiWriter(w, lj)
	}

	l.internal = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return l
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

// Slog returns the underlying logger for injection into components.
func (l *Logger) Slog() *slog.Logger { return l.internal }

// SetLevel changes the level of this logger and all children.
func (l *Logger) SetLevel(level string) { l.level.Set(ParseLevel(level)) }

func (l *Logger) Info(msg string, args ...any)  { l.internal.Info(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.internal.Error(msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.internal.Debug(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.internal.Warn(msg, args...) }

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
