package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInit_Levels(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)

	require.NoError(t, l.Init("Info"))
	assert.True(t, l.Log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Log.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, l.InitConsole("debug"))
	assert.True(t, l.Log.Core().Enabled(zapcore.DebugLevel))
}

func TestInit_BadLevelKeepsPreviousLogger(t *testing.T) {
	l := New()
	prev := l.Log

	assert.Error(t, l.Init("chatty"))
	assert.Same(t, prev, l.Log)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := New()
	assert.Same(t, l.Log, OrNop(l.Log))
}
