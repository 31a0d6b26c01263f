package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, false)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}

func TestNew_WithMeta(t *testing.T) {
	log, err := New("info", true, zap.String("service", "tourguide"))
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestConfigure_Encoding(t *testing.T) {
	assert.Equal(t, "json", configure(zapcore.InfoLevel, false).Encoding)
	assert.Equal(t, "console", configure(zapcore.InfoLevel, true).Encoding)
	assert.Equal(t, "timestamp", configure(zapcore.InfoLevel, true).EncoderConfig.TimeKey)
}
