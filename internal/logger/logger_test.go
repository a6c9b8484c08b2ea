package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestForJobAndProviderFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithProvider(ForJob(base, "abc"), " gemini ", "").Info("called")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields[FieldJobID])
	assert.Equal(t, "gemini", fields[FieldProvider])
	assert.NotContains(t, fields, FieldModel)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.NotPanics(t, func() { ForJob(nil, "x").Info("ignored") })
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "", TruncateForLog("abc", 0))
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 5))
	assert.Equal(t, "èèè...", TruncateForLog("èèèèè", 3))
}
