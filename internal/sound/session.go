package sound

// Recognized playback categories.
const (
	CategoryPlayback = "Playback"
	CategoryAmbient  = "Ambient"
	CategorySystem   = "System"
)

// Session is the module-level playback configuration. It only affects
// players prepared after it changes.
type Session struct {
	Category      string // empty means no category
	MixWithOthers bool
}

// DefaultSession mixes with other audio and sets no category.
func DefaultSession() Session {
	return Session{MixWithOthers: true}
}

// Exclusive reports whether players compete for audio focus.
func (s Session) Exclusive() bool { return !s.MixWithOthers }

// streamType maps the category to an output stream. ok is false when no
// category is set or the category is not recognized.
func (s Session) streamType() (t StreamType, ok bool) {
	switch s.Category {
	case CategoryPlayback:
		return StreamMusic, true
	case CategoryAmbient:
		return StreamNotification, true
	case CategorySystem:
		return StreamSystem, true
	default:
		return StreamDefault, false
	}
}

// SessionStore persists session changes. SaveSession must not block.
type SessionStore interface {
	SaveSession(s Session)
}
