package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		level      string
		wantLevel  zapcore.Level
	}{
		{name: "JSON output mode", jsonOutput: true, level: "info", wantLevel: zapcore.InfoLevel},
		{name: "Console output mode", jsonOutput: false, level: "", wantLevel: zapcore.WarnLevel},
		{name: "Debug level", jsonOutput: false, level: "debug", wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Initialize(tt.jsonOutput, tt.level))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.True(t, Base().Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, Base().Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestInitialize_InvalidLevel(t *testing.T) {
	err := Initialize(false, "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	lvl, err := ParseLevel(" ERROR ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.ErrorLevel, lvl)
}
