package sound

import "time"

// DefaultProgressInterval is the decasecond progress cadence.
const DefaultProgressInterval = 10 * time.Second

// ticker is the progress timer of one key. Re-arming bumps gen so a timer
// that already fired but has not run yet becomes stale.
type ticker struct {
	timer *time.Timer
	gen   uint64
}

func (t *ticker) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// nextTickDelay returns the delay to the next interval boundary of pos.
func nextTickDelay(pos, interval time.Duration) time.Duration {
	ms := interval.Milliseconds()
	if ms <= 0 {
		return interval
	}
	posMs := pos.Milliseconds()
	if posMs < 0 {
		posMs = 0
	}
	return time.Duration(ms-posMs%ms) * time.Millisecond
}

// startTicker restarts the progress chain of key and ticks right away.
func (m *Module) startTicker(key int) {
	t, ok := m.tickers[key]
	if !ok {
		t = &ticker{}
		m.tickers[key] = t
	}
	t.stop()
	m.tick(key, t.gen)
}

func (m *Module) stopTicker(key int) {
	if t, ok := m.tickers[key]; ok {
		t.stop()
		delete(m.tickers, key)
	}
}

// tick emits one progress snapshot and re-arms, or ends the chain when the
// key is gone or not playing.
func (m *Module) tick(key int, gen uint64) {
	t, ok := m.tickers[key]
	if !ok || t.gen != gen {
		return
	}
	rec, ok := m.pool.get(key)
	if !ok || !rec.backend.PlayWhenReady() {
		t.timer = nil
		return
	}

	pos := rec.backend.Position()
	m.emit(ProgressEvent{Key: key, Progress: pos.Seconds()})

	t.timer = time.AfterFunc(nextTickDelay(pos, m.interval), func() {
		m.post(func() { m.tick(key, gen) })
	})
}
