package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LogLevelWarn, &buf).Named("session")

	logger.Info("hidden %d", 1)
	logger.Debug("hidden too")
	logger.Warn("dropped %s", "region")
	logger.Error("failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] [session] dropped region")
	assert.Contains(t, out, "[ERROR] [session] failed")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel(" TRACE "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Error("nothing") })
}
