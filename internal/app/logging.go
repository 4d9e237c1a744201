package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// Logger provides leveled, structured logging for the application. Messages
// are printf-formatted; fields attach as slog attributes.
type Logger struct {
	slog     *slog.Logger
	level    *slog.LevelVar
	closer   io.Closer
	disabled bool
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. It takes precedence over File.
	Output io.Writer
	// File is a log file rotated by size. With neither Output nor File set
	// the logger discards everything: the terminal belongs to the sessions.
	File string
	// MaxSizeMB and MaxBackups control rotation of File.
	MaxSizeMB  int
	MaxBackups int
	// Prefix is attached to every record as the "app" attribute.
	Prefix string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Prefix: "stormux",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	level := new(slog.LevelVar)
	level.Set(cfg.Level.slog())

	l := &Logger{level: level}
	out := cfg.Output
	if out == nil && cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out = rotator
		l.closer = rotator
	}
	if out == nil {
		out = io.Discard
		l.disabled = true
	}

	l.slog = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	if cfg.Prefix != "" {
		l.slog = l.slog.With("app", cfg.Prefix)
	}
	return l
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	child := *l
	child.slog = l.slog.With(key, value)
	child.closer = nil
	return &child
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		args = append(args, k, fields[k])
	}
	child := *l
	child.slog = l.slog.With(args...)
	child.closer = nil
	return &child
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum log level. Derived loggers share the level.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slog())
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	return !l.disabled && l.slog.Enabled(context.Background(), level.slog())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.slog.Log(context.Background(), level.slog(), msg)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// NullLogger is a logger that discards all output.
var NullLogger = NewLogger(LoggerConfig{})
