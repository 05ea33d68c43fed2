package utils

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%v) error: %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%v) returned nil logger", debug)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != debug {
			t.Errorf("NewLogger(%v): debug enabled = %v", debug, got)
		}
		if !logger.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("NewLogger(%v): info level should be enabled", debug)
		}
		_ = logger.Sync()
	}
}

func TestNewLogger_AppliesOptions(t *testing.T) {
	logger, err := NewLogger(false, zap.Fields(zap.String("component", "test")))
	if err != nil {
		t.Fatal(err)
	}
	if logger == nil {
		t.Fatal("nil logger")
	}
	_ = logger.Sync()
}
