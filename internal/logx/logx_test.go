package logx

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("debug", "console", "tool-rental-api")
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	// level tidak dikenal jatuh ke info
	log, err = New("loud", "json", "tool-rental-api")
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
