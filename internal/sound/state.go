// internal/sound/state.go
package sound

// State represents the lifecycle of one player as seen by its listener.
//
//	┌──────┐ prepare ┌───────────┐  ready  ┌───────┐  play  ┌─────────┐
//	│ Idle │────────▶│ Preparing │────────▶│ Ready │───────▶│ Playing │
//	└──────┘         └───────────┘         └───────┘        └─────────┘
//	                       │                                  │  ▲  │
//	                 error │                            pause │  │  │ end
//	                       ▼                                  ▼  │  ▼
//	                 ┌─────────┐                        ┌────────┐ ┌───────┐
//	                 │ Errored │                        │ Paused │ │ Ended │
//	                 └─────────┘                        └────────┘ └───────┘
//
// Stop moves any prepared state to Stopped; play from Stopped or Ended goes
// back to Playing. Release moves every state to Released, which is
// absorbing. Errored is reachable from every state before Released.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateReady
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
	StateReleased
	StateErrored
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePreparing:
		return "Preparing"
	case StateReady:
		return "Ready"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateEnded:
		return "Ended"
	case StateReleased:
		return "Released"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// IsPrepared returns true once the backend reported ready and the player
// has not been released or errored.
func (s State) IsPrepared() bool {
	switch s {
	case StateReady, StatePlaying, StatePaused, StateStopped, StateEnded:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for absorbing states.
func (s State) IsTerminal() bool {
	return s == StateReleased || s == StateErrored
}
