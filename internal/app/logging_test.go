package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = &buf
	return NewLogger(cfg), &buf
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"Warn":    LogLevelWarn,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"bogus":   LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelWarn)

	logger.Debug("hidden %d", 1)
	logger.Info("hidden too")
	logger.Warn("shown %s", "warn")
	logger.Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="shown warn"`)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "app=stormux")
}

func TestLoggerFields(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelDebug)

	logger.WithComponent("mux").WithFields(map[string]any{"b": 2, "a": 1}).Debug("focus")

	line := buf.String()
	assert.Contains(t, line, "component=mux")
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
}

func TestLoggerSetLevelShared(t *testing.T) {
	logger, buf := newBufferLogger(LogLevelInfo)
	child := logger.WithComponent("session")

	child.Debug("before")
	logger.SetLevel(LogLevelDebug)
	child.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
	assert.True(t, child.Enabled(LogLevelDebug))
}

func TestNullLoggerDisabled(t *testing.T) {
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug})
	assert.False(t, logger.Enabled(LogLevelError))
	assert.NoError(t, logger.Close())
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stormux.log")
	logger := NewLogger(LoggerConfig{
		Level:      LogLevelInfo,
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		Prefix:     "stormux",
	})

	logger.WithComponent("app").Info("hello %s", "file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="hello file"`)
	assert.Contains(t, string(data), "component=app")
}
