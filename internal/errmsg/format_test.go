//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPrepare,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPrepare,
			err:      errors.New("resource not found"),
			expected: "Failed to prepare player: resource not found",
		},
		{
			name:     "system volume operation",
			op:       OpSystemVolume,
			err:      errors.New("no volume control"),
			expected: "Failed to read system volume: no volume control",
		},
		{
			name:     "bridge operation",
			op:       OpConnect,
			err:      errors.New("connection refused"),
			expected: "Failed to connect to soundpool: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPrepare,
			context:  "3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpPrepare,
			context:  "3",
			err:      errors.New("resource not found"),
			expected: "Failed to prepare player '3': resource not found",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSeek,
			context:  "",
			err:      errors.New("unknown key"),
			expected: "Failed to seek: unknown key",
		},
		{
			name:     "socket path context",
			op:       OpListen,
			context:  "/run/user/1000/soundpool.sock",
			err:      errors.New("address already in use"),
			expected: "Failed to listen on socket '/run/user/1000/soundpool.sock': address already in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	ops := []Op{
		OpPrepare, OpPlay, OpPause, OpStop, OpRelease, OpSeek,
		OpSetVolume, OpSetSpeed, OpSetLooping, OpCurrentTime,
		OpSetCategory, OpSpeakerphone, OpSystemVolume, OpSetSysVolume,
		OpFocus, OpListPlayers, OpSaveStreamVol, OpRestoreSession,
		OpConnect, OpListen,
		OpLoadConfig, OpOpenState, OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}
			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
