package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{3, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		if got := VerbosityToLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestInitialize(t *testing.T) {
	if err := Initialize(1, false); err != nil {
		t.Fatalf("Initialize(console) failed: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Initialize")
	}

	if err := Initialize(0, true); err != nil {
		t.Fatalf("Initialize(json) failed: %v", err)
	}
	Cleanup()
}

func TestLoggerUsableBeforeInitialize(t *testing.T) {
	// The package-level no-op logger must absorb calls without panicking.
	Debugw("classification", "type", ".com.infoblox.dns.option")
	Warnf("action %q not implemented", "bogus")
}
