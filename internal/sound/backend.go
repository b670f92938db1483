package sound

import "time"

// SourceKind tells the backend how to load a resolved locator.
type SourceKind int

const (
	SourceFile SourceKind = iota
	SourceStream
)

// Source is a resolved media locator.
type Source struct {
	Kind      SourceKind
	Locator   string // absolute path or http(s) URL
	UserAgent string
	Headers   map[string]string
}

// IsStream reports whether the source is fetched over HTTP.
func (s Source) IsStream() bool { return s.Kind == SourceStream }

// BackendEventKind enumerates the notifications a backend reports.
type BackendEventKind int

const (
	EventReady BackendEventKind = iota
	EventEnded
	EventError
)

// String returns the event name for logs.
func (k BackendEventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// BackendEvent is a state change reported by a backend.
type BackendEvent struct {
	Kind BackendEventKind
	Err  error // set for EventError
}

// StreamType is the output stream a backend renders to.
type StreamType int

const (
	StreamDefault StreamType = iota
	StreamMusic
	StreamNotification
	StreamSystem
)

// String returns the stream name.
func (t StreamType) String() string {
	switch t {
	case StreamDefault:
		return "default"
	case StreamMusic:
		return "music"
	case StreamNotification:
		return "notification"
	case StreamSystem:
		return "system"
	default:
		return "unknown"
	}
}

// TrackInfo describes the media loaded by a backend.
type TrackInfo struct {
	Title            string
	Artist           string
	Album            string
	NumberOfChannels int
}

// Backend wraps a single playback engine instance.
//
// Methods are called from the module's control goroutine and must not
// block. Notifications must be delivered through the notify function the
// backend was built with, from the backend's own goroutines, never
// synchronously from inside a method call.
type Backend interface {
	// Prepare starts loading src. It reports EventReady or EventError.
	Prepare(src Source)
	SetPlayWhenReady(play bool)
	PlayWhenReady() bool
	SeekTo(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	Info() TrackInfo
	SetVolume(level float64)
	SetSpeed(speed float64)
	SetStreamType(t StreamType)
	Release()
}

// BackendFactory builds a backend that reports through notify.
type BackendFactory func(notify func(BackendEvent)) Backend
