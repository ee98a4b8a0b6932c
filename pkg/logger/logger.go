package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	log, err := config.Build()
	if err != nil {
		return nil, err
	}
	return log, nil
}

// NewWithLevel is New with a parsed level (debug, info, warn, error).
func NewWithLevel(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	config.Level = lvl
	return config.Build()
}
