package badgecheck

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	logger := NewDefaultLogger(LogLevelWarn)

	logger.Debug("debug message", "version", "v1_0strict")
	logger.Info("info message")
	logger.Warn("warn message", "code", "structure_invalid")
	logger.Error("error message", "dangling")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "WARN: warn message code=structure_invalid")
	assert.Contains(t, output, "ERROR: error message !BADKEY=dangling")
}

func TestDefaultLogger_None(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	logger := &DefaultLogger{}
	logger.Error("error message")

	assert.Empty(t, buf.String())
}

func TestZapLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core).Sugar())

	logger.Debug("debug message", "version", "v0_5")
	assert.Equal(t, 0, recorded.Len(), "Debug message should not be recorded at Info level")

	logger.Info("info message", "version", "v0_5")
	logger.Warn("warn message")
	logger.Error("error message")
	require.Equal(t, 3, recorded.Len())

	entry := recorded.All()[0]
	assert.Equal(t, "info message", entry.Message)
	assert.Equal(t, "v0_5", entry.ContextMap()["version"])
	assert.Equal(t, zapcore.WarnLevel, recorded.All()[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, recorded.All()[2].Level)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Debug("debug message")
	logger.Info("info message", "version", "v1_1")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.Contains(t, output, `"message":"debug message"`)
	assert.Contains(t, output, `"version":"v1_1"`)
	assert.Contains(t, output, `"level":"warn"`)
	assert.Contains(t, output, `"level":"error"`)
}

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	logrusLogger := logrus.New()
	logrusLogger.Out = &buf
	logrusLogger.Level = logrus.InfoLevel

	logger := NewLogrusLogger(logrusLogger)

	logger.Debug("debug message")
	logger.Info("info message", "version", "v1_0strict")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message", "Debug messages should not be logged at Info level")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "version=v1_0strict")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")

	buf.Reset()
	logrusLogger.Level = logrus.DebugLevel
	logger.Debug("debug message")
	assert.Contains(t, buf.String(), "debug message")
}
