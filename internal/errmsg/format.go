// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Player operations
	OpPrepare     Op = "prepare player"
	OpPlay        Op = "play"
	OpPause       Op = "pause"
	OpStop        Op = "stop"
	OpRelease     Op = "release player"
	OpSeek        Op = "seek"
	OpSetVolume   Op = "set volume"
	OpSetSpeed    Op = "set speed"
	OpSetLooping  Op = "set looping"
	OpCurrentTime Op = "read current time"

	// Session operations
	OpSetCategory    Op = "set category"
	OpSpeakerphone   Op = "switch speakerphone"
	OpSystemVolume   Op = "read system volume"
	OpSetSysVolume   Op = "set system volume"
	OpFocus          Op = "change audio focus"
	OpListPlayers    Op = "list players"
	OpSaveStreamVol  Op = "save stream volume"
	OpRestoreSession Op = "restore session"

	// Bridge operations
	OpConnect Op = "connect to soundpool"
	OpListen  Op = "listen on socket"

	// Initialization
	OpLoadConfig Op = "load config"
	OpOpenState  Op = "open state database"
	OpInitialize Op = "initialize soundpool"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
