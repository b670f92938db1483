package sound

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// Prepare creates the player for key from locator. The returned completion
// succeeds once the backend is ready, or fails with a *ResourceError, a
// *BackendError, ErrReleased or ErrClosed.
//
// A live player under the same key is released first.
func (m *Module) Prepare(locator string, key int, opts PrepareOptions) *Completion {
	c := newCompletion(key)
	if !m.exec(func() { m.prepare(locator, key, opts, c) }) {
		_ = c.fail(ErrClosed)
	}
	return c
}

func (m *Module) prepare(locator string, key int, opts PrepareOptions, c *Completion) {
	log := m.log.WithField("key", key)
	if m.closed {
		_ = c.fail(ErrClosed)
		return
	}

	src, err := m.resolver.Resolve(locator, opts)
	if err != nil {
		log.WithError(err).Warn("cannot resolve source")
		m.complete(c, PrepareResult{}, err)
		return
	}

	m.release(key)

	var l *listener
	b := m.newBackend(func(ev BackendEvent) {
		m.post(func() { m.backendEvent(l, ev) })
	})
	l = newListener(key, b, c)
	l.source = src

	if m.session.Category != "" {
		if t, ok := m.session.streamType(); ok {
			b.SetStreamType(t)
		} else {
			log.WithField("category", m.session.Category).Warn("unrecognized category, using default stream")
		}
	}

	m.pool.register(l)
	b.Prepare(src)
	m.startTicker(key)
	log.WithField("source", src.Locator).Debug("preparing player")
}

// complete delivers a prepare outcome. A second completion is a bug in the
// caller and is only logged.
func (m *Module) complete(c *Completion, res PrepareResult, err error) {
	var cerr error
	if err != nil {
		cerr = c.fail(err)
	} else {
		cerr = c.succeed(res)
	}
	if cerr != nil {
		m.log.WithField("key", c.Key()).WithError(cerr).Error("prepare completed twice")
	}
}

func (m *Module) backendEvent(l *listener, ev BackendEvent) {
	log := m.log.WithFields(logrus.Fields{"key": l.key, "event": ev.Kind.String()})
	if !m.pool.current(l) {
		log.Debug("ignoring event from stale backend")
		return
	}

	switch l.handle(ev) {
	case actInsert:
		m.pool.insert(&record{key: l.key, backend: l.backend, listener: l, volume: 1, speed: 1})
		m.complete(l.completion, l.result(), nil)
	case actRestart:
		l.backend.SeekTo(0)
	case actEmitEnded:
		pos := l.backend.Position()
		l.backend.SetPlayWhenReady(false)
		m.stopTicker(l.key)
		m.emit(PlayingStateEvent{Key: l.key, IsPlaying: false, CurrentTime: wholeSeconds(pos.Seconds())})
	case actFailPrepare:
		log.WithError(ev.Err).Warn("backend failed while preparing")
		m.pool.unregister(l)
		l.backend.Release()
		m.stopTicker(l.key)
		m.complete(l.completion, PrepareResult{}, newBackendError(ev.Err))
	case actFailPlayback:
		log.WithError(ev.Err).Error("backend failed during playback, releasing player")
		pos := l.backend.Position()
		m.emit(PlayingStateEvent{Key: l.key, IsPlaying: false, CurrentTime: wholeSeconds(pos.Seconds())})
		m.release(l.key)
	}
}

// Play starts key. It reports false when key is not a live player.
func (m *Module) Play(key int) bool {
	var ok bool
	m.exec(func() { ok = m.play(key) })
	return ok
}

func (m *Module) play(key int) bool {
	rec, ok := m.pool.get(key)
	if !ok {
		return false
	}
	if rec.backend.PlayWhenReady() {
		return true
	}

	if m.session.Exclusive() {
		m.requestFocus()
		m.arbiter.grant(key)
		for _, other := range m.pool.keysExcept(key) {
			m.log.WithFields(logrus.Fields{"key": other, "by": key}).Debug("releasing player for exclusive playback")
			m.release(other)
		}
	}

	if rec.listener.state == StateEnded {
		rec.backend.SeekTo(0)
	}
	rec.backend.SetPlayWhenReady(true)
	rec.listener.state = StatePlaying
	m.lastPlayed, m.hasPlayed = key, true

	m.startTicker(key)
	m.emit(PlayingStateEvent{Key: key, IsPlaying: true, CurrentTime: wholeSeconds(rec.backend.Position().Seconds())})
	return true
}

// Pause pauses key. It reports false when key is not a live player.
func (m *Module) Pause(key int) bool {
	var ok bool
	m.exec(func() { ok = m.pause(key) })
	return ok
}

func (m *Module) pause(key int) bool {
	rec, ok := m.pool.get(key)
	if !ok {
		return false
	}
	rec.backend.SetPlayWhenReady(false)
	rec.listener.state = StatePaused
	m.stopTicker(key)
	m.emit(PlayingStateEvent{Key: key, IsPlaying: false, CurrentTime: wholeSeconds(rec.backend.Position().Seconds())})
	return true
}

// Stop pauses key, rewinds it and gives up focus it holds. It reports false
// when key is not a live player.
func (m *Module) Stop(key int) bool {
	var ok bool
	m.exec(func() { ok = m.stop(key) })
	return ok
}

func (m *Module) stop(key int) bool {
	rec, ok := m.pool.get(key)
	if !ok {
		return false
	}
	if rec.backend.PlayWhenReady() {
		rec.backend.SetPlayWhenReady(false)
	}
	rec.backend.SeekTo(0)
	rec.listener.state = StateStopped
	m.stopTicker(key)
	m.abandonFocus(key)
	m.emit(PlayingStateEvent{Key: key, IsPlaying: false, CurrentTime: wholeSeconds(rec.backend.Position().Seconds())})
	return true
}

// Release frees key. A player still preparing is cancelled and its prepare
// fails with ErrReleased. Unknown keys are ignored.
func (m *Module) Release(key int) {
	m.exec(func() { m.release(key) })
}

func (m *Module) release(key int) {
	rec, ok := m.pool.get(key)
	if !ok {
		if l, pending := m.pool.listener(key); pending {
			m.cancelPending(key, l, ErrReleased)
		}
		return
	}
	if rec.backend.PlayWhenReady() {
		rec.backend.SetPlayWhenReady(false)
	}
	rec.backend.Release()
	rec.listener.state = StateReleased
	m.pool.remove(key)
	m.stopTicker(key)
	m.abandonFocus(key)
	m.log.WithField("key", key).Debug("released player")
}

func (m *Module) cancelPending(key int, l *listener, err error) {
	l.state = StateReleased
	l.backend.Release()
	m.pool.unregister(l)
	m.stopTicker(key)
	m.complete(l.completion, PrepareResult{}, err)
}

// SetVolume sets the player volume, clamped to [0, 1].
func (m *Module) SetVolume(key int, level float64) {
	m.exec(func() {
		if rec, ok := m.pool.get(key); ok {
			rec.volume = math.Max(0, math.Min(1, level))
			rec.backend.SetVolume(rec.volume)
		}
	})
}

// SetLooping toggles looping. It also applies to a player still preparing.
func (m *Module) SetLooping(key int, looping bool) {
	m.exec(func() {
		if l, ok := m.pool.listener(key); ok {
			l.loop = looping
		}
	})
}

// SetSpeed sets the playback speed factor.
func (m *Module) SetSpeed(key int, speed float64) {
	m.exec(func() {
		if speed <= 0 {
			m.log.WithFields(logrus.Fields{"key": key, "speed": speed}).Warn("ignoring non-positive speed")
			return
		}
		if rec, ok := m.pool.get(key); ok {
			rec.speed = speed
			rec.backend.SetSpeed(speed)
		}
	})
}

// SetCurrentTime seeks to seconds, truncated to whole milliseconds.
func (m *Module) SetCurrentTime(key int, seconds float64) {
	m.exec(func() {
		rec, ok := m.pool.get(key)
		if !ok {
			return
		}
		ms := math.Floor(seconds * 1000)
		if ms < 0 {
			ms = 0
		}
		rec.backend.SeekTo(time.Duration(ms) * time.Millisecond)
		if rec.listener.state == StateEnded {
			rec.listener.state = StatePaused
		}
		if rec.backend.PlayWhenReady() {
			m.startTicker(key)
		}
	})
}

// CurrentTime returns the position in seconds and whether key is playing,
// or (-1, false) when key is not a live player.
func (m *Module) CurrentTime(key int) (seconds float64, playing bool) {
	seconds = -1
	m.exec(func() {
		if rec, ok := m.pool.get(key); ok {
			seconds = rec.backend.Position().Seconds()
			playing = rec.backend.PlayWhenReady()
		}
	})
	return seconds, playing
}

// SetSpeakerphoneOn routes key to the music stream and toggles the
// speakerphone.
func (m *Module) SetSpeakerphoneOn(key int, on bool) {
	m.exec(func() {
		rec, ok := m.pool.get(key)
		if !ok {
			return
		}
		rec.backend.SetStreamType(StreamMusic)
		if m.router == nil {
			m.log.WithField("key", key).Warn("speakerphone routing not available")
			return
		}
		if err := m.router.SetSpeakerphoneOn(on); err != nil {
			m.log.WithField("key", key).WithError(err).Warn("cannot toggle speakerphone")
		}
	})
}

// SetCategory changes the session. It applies to players prepared later.
func (m *Module) SetCategory(category string, mixWithOthers bool) {
	m.exec(func() {
		m.session = Session{Category: category, MixWithOthers: mixWithOthers}
		if m.store != nil {
			m.store.SaveSession(m.session)
		}
		m.log.WithFields(logrus.Fields{"category": category, "mix": mixWithOthers}).Debug("session changed")
	})
}

// Session returns the current session.
func (m *Module) Session() Session {
	var s Session
	m.exec(func() { s = m.session })
	return s
}

var errNoVolumeControl = errors.New("system volume control not available")

// SystemVolume returns the music stream volume in [0, 1].
func (m *Module) SystemVolume() (float64, error) {
	if m.volume == nil {
		return 0, errNoVolumeControl
	}
	level, maxLevel, err := m.volume.StreamVolume(StreamMusic)
	if err != nil {
		return 0, fmt.Errorf("reading music volume: %w", err)
	}
	if maxLevel <= 0 {
		return 0, fmt.Errorf("music stream reports max level %d", maxLevel)
	}
	return float64(level) / float64(maxLevel), nil
}

// SetSystemVolume sets the music stream volume from a [0, 1] fraction,
// rounded to the nearest step.
func (m *Module) SetSystemVolume(v float64) error {
	if m.volume == nil {
		return errNoVolumeControl
	}
	_, maxLevel, err := m.volume.StreamVolume(StreamMusic)
	if err != nil {
		return fmt.Errorf("reading music volume: %w", err)
	}
	v = math.Max(0, math.Min(1, v))
	level := int(math.Round(float64(maxLevel) * v))
	if err := m.volume.SetStreamVolume(StreamMusic, level); err != nil {
		return fmt.Errorf("setting music volume: %w", err)
	}
	return nil
}
