package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		encoding string
		wantErr  bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "debug", "console", false},
		{"default encoding", "warn", "", false},
		{"bad level", "loud", "json", true},
		{"bad encoding", "info", "xml", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.level, tc.encoding)
			if tc.wantErr {
				if err == nil {
					t.Fatal("New should return error")
				}
				if logger != nil {
					t.Error("New should return nil logger on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if logger == nil {
				t.Fatal("New returned nil logger")
			}
		})
	}
}

func TestNew_LevelEnabled(t *testing.T) {
	logger, err := New("warn", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ce := logger.Check(zapcore.DebugLevel, "debug"); ce != nil {
		t.Error("debug should be disabled at warn level")
	}
}
