package mpris

import (
	"errors"
	"math"
	"time"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Rate bounds advertised to media controls.
const (
	minRate = 0.5
	maxRate = 2.0
)

var errNoPlayer = errors.New("no active player")

// Controller is the player pool the media controls drive. Every action
// targets the active player.
type Controller interface {
	Active() (int, bool)
	Player(key int) (sound.PlayerInfo, bool)
	Play(key int) bool
	Pause(key int) bool
	Stop(key int) bool
	SetCurrentTime(key int, seconds float64)
	SetSpeed(key int, speed float64)
	SetVolume(key int, level float64)
	SetLooping(key int, looping bool)
}

type status int

const (
	statusStopped status = iota
	statusPlaying
	statusPaused
)

// remote maps media-key actions onto the active player.
type remote struct {
	ctl Controller
}

func (r remote) active() (sound.PlayerInfo, bool) {
	key, ok := r.ctl.Active()
	if !ok {
		return sound.PlayerInfo{}, false
	}
	return r.ctl.Player(key)
}

func (r remote) withActive(fn func(p sound.PlayerInfo)) error {
	p, ok := r.active()
	if !ok {
		return errNoPlayer
	}
	fn(p)
	return nil
}

func (r remote) play() error {
	return r.withActive(func(p sound.PlayerInfo) { r.ctl.Play(p.Key) })
}

func (r remote) pause() error {
	return r.withActive(func(p sound.PlayerInfo) { r.ctl.Pause(p.Key) })
}

func (r remote) stop() error {
	return r.withActive(func(p sound.PlayerInfo) { r.ctl.Stop(p.Key) })
}

func (r remote) playPause() error {
	return r.withActive(func(p sound.PlayerInfo) {
		if p.IsPlaying {
			r.ctl.Pause(p.Key)
			return
		}
		r.ctl.Play(p.Key)
	})
}

// seek moves by offset, clamped to the media.
func (r remote) seek(offset time.Duration) error {
	return r.withActive(func(p sound.PlayerInfo) {
		r.ctl.SetCurrentTime(p.Key, clampPosition(p.CurrentTime+offset.Seconds(), p.Duration))
	})
}

func (r remote) setPosition(pos time.Duration) error {
	return r.withActive(func(p sound.PlayerInfo) {
		if pos < 0 || (p.Duration > 0 && pos.Seconds() > p.Duration) {
			return
		}
		r.ctl.SetCurrentTime(p.Key, pos.Seconds())
	})
}

func clampPosition(sec, duration float64) float64 {
	sec = math.Max(0, sec)
	if duration > 0 {
		sec = math.Min(duration, sec)
	}
	return sec
}

func (r remote) status() status {
	p, ok := r.active()
	switch {
	case !ok:
		return statusStopped
	case p.IsPlaying:
		return statusPlaying
	default:
		return statusPaused
	}
}

func (r remote) position() time.Duration {
	p, ok := r.active()
	if !ok {
		return 0
	}
	return time.Duration(p.CurrentTime * float64(time.Second))
}

func (r remote) rate() float64 {
	p, ok := r.active()
	if !ok || p.Speed <= 0 {
		return 1
	}
	return p.Speed
}

// setRate ignores zero, which media controls use to mean pause.
func (r remote) setRate(v float64) error {
	if v <= 0 {
		return nil
	}
	return r.withActive(func(p sound.PlayerInfo) {
		r.ctl.SetSpeed(p.Key, math.Max(minRate, math.Min(maxRate, v)))
	})
}

func (r remote) volume() float64 {
	p, ok := r.active()
	if !ok {
		return 1
	}
	return p.Volume
}

func (r remote) setVolume(v float64) error {
	return r.withActive(func(p sound.PlayerInfo) { r.ctl.SetVolume(p.Key, v) })
}

func (r remote) looping() bool {
	p, ok := r.active()
	return ok && p.Looping
}

func (r remote) setLooping(loop bool) error {
	return r.withActive(func(p sound.PlayerInfo) { r.ctl.SetLooping(p.Key, loop) })
}
