package sound

// Event names as seen by the host.
const (
	EventNamePlayingState = "playing-state"
	EventNameProgress     = "progress"
)

// Event is pushed to the host. Every event carries the player key.
type Event interface {
	Name() string
	PlayerKey() int
}

// PlayingStateEvent is emitted on play, pause, stop and natural end.
type PlayingStateEvent struct {
	Key         int     `json:"key"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"` // whole seconds
}

func (e PlayingStateEvent) Name() string   { return EventNamePlayingState }
func (e PlayingStateEvent) PlayerKey() int { return e.Key }

// ProgressEvent is emitted on every decasecond boundary while playing.
type ProgressEvent struct {
	Key      int     `json:"key"`
	Progress float64 `json:"progress"` // seconds
}

func (e ProgressEvent) Name() string   { return EventNameProgress }
func (e ProgressEvent) PlayerKey() int { return e.Key }

// Emitter receives events from the module's control goroutine.
// Emit must not block and must not call back into the module.
type Emitter interface {
	Emit(e Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) { f(e) }

// MultiEmitter fans events out to several emitters in order.
type MultiEmitter []Emitter

// Emit forwards e to every non-nil emitter.
func (m MultiEmitter) Emit(e Event) {
	for _, em := range m {
		if em != nil {
			em.Emit(e)
		}
	}
}

type discardEmitter struct{}

func (discardEmitter) Emit(Event) {}
