// Package utils provides shared helpers for logging and text output.
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a zap logger named "faqnav". Debug mode uses the
// development config (console, debug level); otherwise JSON at info level.
// Extra options are applied after the base config is built.
func NewLogger(debug bool, opts ...zap.Option) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return logger.Named("faqnav"), nil
}

