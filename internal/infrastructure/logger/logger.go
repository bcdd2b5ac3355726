// Package logger builds the process-wide structured logger. Every request
// handler derives a child from it carrying the request's trace id.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pixelpro/internal/config"
)

// New builds a production JSON logger at the configured level. An
// unrecognized level falls back to info rather than failing startup.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
