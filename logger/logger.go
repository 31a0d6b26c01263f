// Package logger builds the zap logger shared by the server and its workers.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger at the given level ("debug", "info", "warn", "error").
// Development mode writes colored console lines; otherwise output is JSON.
func New(level string, development bool, meta ...zap.Field) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	log, err := configure(lvl, development).Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log.With(meta...), nil
}

func configure(level zapcore.Level, development bool) zap.Config {
	encoder := zap.NewProductionEncoderConfig()
	encoder.TimeKey = "timestamp"
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder.EncodeCaller = zapcore.ShortCallerEncoder
	encoder.EncodeDuration = zapcore.StringDurationEncoder
	encoder.CallerKey = "caller"

	encoding := "json"
	if development {
		encoding = "console"
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       development,
		DisableStacktrace: !development,
		Encoding:          encoding,
		EncoderConfig:     encoder,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}
