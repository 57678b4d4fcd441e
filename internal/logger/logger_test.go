package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewModes(t *testing.T) {
	dev, err := New("dev")
	require.NoError(t, err)
	assert.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))

	prod, err := New("PROD")
	require.NoError(t, err)
	assert.False(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestWithKeepsParentUntouched(t *testing.T) {
	base := Nop()
	child := base.With("component", "test")
	assert.NotSame(t, base.SugaredLogger, child.SugaredLogger)
	assert.NotNil(t, child.StdLog())
}
