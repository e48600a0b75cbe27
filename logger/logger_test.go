package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityTrace))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(99))
}

func TestShouldLogHelpers(t *testing.T) {
	assert.False(t, ShouldLogQueries(VerbosityInfo))
	assert.True(t, ShouldLogQueries(VerbosityDebug))
	assert.False(t, ShouldLogTrace(VerbosityDebug))
	assert.True(t, ShouldLogTrace(VerbosityTrace))
}

func TestInitializeDoesNotPanicBeforeAndAfter(t *testing.T) {
	// Package-level helpers must be safe before Initialize.
	Infow("pre-init message", "key", "value")

	require.NoError(t, Initialize(false, VerbosityInfo))
	Infow("post-init message", "key", "value")
	Cleanup()

	require.NoError(t, Initialize(true, VerbosityUser))
	Warnw("json mode message")
	Cleanup()
}
