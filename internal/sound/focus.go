package sound

// FocusChange is a system audio-focus notification.
type FocusChange int

const (
	FocusGain FocusChange = iota
	FocusLoss
	FocusLossTransient
	FocusLossTransientCanDuck
)

// String returns the change name used by the bridge.
func (c FocusChange) String() string {
	switch c {
	case FocusGain:
		return "gain"
	case FocusLoss:
		return "loss"
	case FocusLossTransient:
		return "loss_transient"
	case FocusLossTransientCanDuck:
		return "loss_transient_can_duck"
	default:
		return "unknown"
	}
}

// IsLoss reports whether the change takes focus away.
func (c FocusChange) IsLoss() bool {
	return c == FocusLoss || c == FocusLossTransient || c == FocusLossTransientCanDuck
}

// ParseFocusChange parses a bridge focus change name.
func ParseFocusChange(s string) (FocusChange, bool) {
	for _, c := range []FocusChange{FocusGain, FocusLoss, FocusLossTransient, FocusLossTransientCanDuck} {
		if c.String() == s {
			return c, true
		}
	}
	return FocusGain, false
}

// FocusListener receives focus changes. OnFocusChange must not block.
type FocusListener interface {
	OnFocusChange(c FocusChange)
}

// FocusManager is the system audio-focus API.
type FocusManager interface {
	RequestFocus(l FocusListener) bool
	AbandonFocus(l FocusListener)
}

// VolumeControl is the platform stream volume API.
type VolumeControl interface {
	StreamVolume(t StreamType) (level, maxLevel int, err error)
	SetStreamVolume(t StreamType, level int) error
}

// Router toggles speakerphone output.
type Router interface {
	SetSpeakerphoneOn(on bool) error
}

// arbiter tracks which player holds exclusive focus.
type arbiter struct {
	focusedKey int
	hasFocused bool
	wasPlaying bool
}

func (a *arbiter) grant(key int) {
	a.focusedKey = key
	a.hasFocused = true
}

func (a *arbiter) holds(key int) bool {
	return a.hasFocused && a.focusedKey == key
}

func (a *arbiter) focused() (int, bool) {
	return a.focusedKey, a.hasFocused
}

func (a *arbiter) clear() {
	a.hasFocused = false
	a.wasPlaying = false
}
