package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, level)
	assert.Equal(t, "debug", level.String())

	level, err = ParseLogLevel("verbose")
	require.Error(t, err)
	assert.Equal(t, LogLevelInfo, level)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	buf := captureLog(t)

	logger := NewLogger("PipelineService", LogLevelWarn)
	logger.Debugf("hidden %d", 1)
	logger.Infof("hidden too")
	logger.Warnf("file %s failed", "cast.csv")
	logger.Errorf("boom")

	assert.Equal(t, "[PipelineService] WARN: file cast.csv failed\n[PipelineService] ERROR: boom\n", buf.String())
}

func TestNilLoggerIsSilent(t *testing.T) {
	buf := captureLog(t)

	var logger *Logger
	logger.Infof("nothing")
	assert.False(t, logger.Enabled(LogLevelError))
	assert.Empty(t, buf.String())
}
