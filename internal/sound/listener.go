package sound

import "math"

// listener is the per-key state machine bound to one backend and one
// prepare completion.
type listener struct {
	key        int
	backend    Backend
	completion *Completion
	source     Source
	loop       bool
	fired      bool
	state      State
}

func newListener(key int, b Backend, c *Completion) *listener {
	return &listener{
		key:        key,
		backend:    b,
		completion: c,
		state:      StatePreparing,
	}
}

// action is what the module must do after the listener absorbed an event.
type action int

const (
	actNone action = iota
	actInsert           // first ready: pool the record, complete with success
	actRestart          // looping end: seek to 0 and keep playing
	actEmitEnded        // non-looping end: emit a stopped playing-state
	actFailPrepare      // pre-ready error: complete with failure, unregister
	actFailPlayback     // post-ready error: emit, release
)

// handle advances the state machine and tells the caller what to do.
func (l *listener) handle(ev BackendEvent) action {
	if l.state.IsTerminal() {
		return actNone
	}
	switch ev.Kind {
	case EventReady:
		if l.fired {
			return actNone
		}
		l.fired = true
		l.state = StateReady
		return actInsert
	case EventEnded:
		if !l.fired {
			return actNone
		}
		if l.loop {
			l.state = StatePlaying
			return actRestart
		}
		l.state = StateEnded
		return actEmitEnded
	case EventError:
		l.state = StateErrored
		if !l.fired {
			l.fired = true
			return actFailPrepare
		}
		return actFailPlayback
	}
	return actNone
}

func (l *listener) result() PrepareResult {
	info := l.backend.Info()
	return PrepareResult{
		Duration:         l.backend.Duration().Seconds(),
		NumberOfChannels: info.NumberOfChannels,
		Title:            info.Title,
		Artist:           info.Artist,
		Album:            info.Album,
	}
}

// wholeSeconds floors a position in seconds, as the host displays it.
func wholeSeconds(sec float64) float64 {
	return math.Floor(sec)
}
