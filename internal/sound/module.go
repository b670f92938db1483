// Package sound implements the player pool: it creates, tracks and controls
// concurrent players keyed by integer handles, relays their state changes
// and progress as events, and arbitrates exclusive audio focus.
package sound

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Config wires a Module to its collaborators. Only Backends is required.
type Config struct {
	Backends BackendFactory
	FS       afero.Fs // local file lookup; nil means the OS filesystem
	Focus    FocusManager
	Volume   VolumeControl
	Router   Router
	Emitter  Emitter
	Store    SessionStore
	Logger   logrus.FieldLogger
	Session  *Session // nil means DefaultSession

	// ProgressInterval is the progress cadence; zero means decaseconds.
	ProgressInterval time.Duration
}

// Module is the command surface of the player pool. All methods are safe
// for concurrent use; they are serialized on one control goroutine.
type Module struct {
	newBackend BackendFactory
	resolver   *Resolver
	focus      FocusManager
	volume     VolumeControl
	router     Router
	emitter    Emitter
	store      SessionStore
	log        logrus.FieldLogger
	interval   time.Duration

	// Owned by the control goroutine.
	session    Session
	pool       *pool
	arbiter    arbiter
	tickers    map[int]*ticker
	lastPlayed int
	hasPlayed  bool
	closed     bool

	mail      *mailbox
	loopDone  chan struct{}
	closeOnce sync.Once
}

// Verify Module implements FocusListener at compile time.
var _ FocusListener = (*Module)(nil)

// New creates a module and starts its control goroutine.
func New(cfg Config) *Module {
	m := &Module{
		newBackend: cfg.Backends,
		resolver:   NewResolver(cfg.FS),
		focus:      cfg.Focus,
		volume:     cfg.Volume,
		router:     cfg.Router,
		emitter:    cfg.Emitter,
		store:      cfg.Store,
		log:        cfg.Logger,
		interval:   cfg.ProgressInterval,
		session:    DefaultSession(),
		pool:       newPool(),
		tickers:    make(map[int]*ticker),
		mail:       newMailbox(),
		loopDone:   make(chan struct{}),
	}
	if m.emitter == nil {
		m.emitter = discardEmitter{}
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}
	if m.interval <= 0 {
		m.interval = DefaultProgressInterval
	}
	if cfg.Session != nil {
		m.session = *cfg.Session
	}
	go m.run()
	return m
}

func (m *Module) run() {
	defer close(m.loopDone)
	for range m.mail.signal {
		for _, fn := range m.mail.drain() {
			fn()
		}
		if m.mail.isClosed() {
			// Late pushes raced with close; run them against the empty pool.
			for _, fn := range m.mail.drain() {
				fn()
			}
			return
		}
	}
}

// exec runs fn on the control goroutine and waits for it. It returns false
// when the module is closed and fn did not run.
func (m *Module) exec(fn func()) bool {
	done := make(chan struct{})
	if !m.mail.push(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	<-done
	return true
}

// post queues fn on the control goroutine without waiting.
func (m *Module) post(fn func()) {
	m.mail.push(fn)
}

func (m *Module) emit(e Event) {
	m.emitter.Emit(e)
}

// Close releases every player and stops the control goroutine.
func (m *Module) Close() error {
	m.closeOnce.Do(func() {
		m.exec(func() {
			for _, key := range m.pool.keys() {
				m.release(key)
			}
			for key, l := range m.pool.listeners {
				m.cancelPending(key, l, ErrClosed)
			}
			for key := range m.tickers {
				m.stopTicker(key)
			}
			m.closed = true
		})
		m.mail.close()
		<-m.loopDone
	})
	return nil
}

// OnFocusChange implements FocusListener. It never blocks.
func (m *Module) OnFocusChange(c FocusChange) {
	m.post(func() { m.focusChanged(c) })
}

func (m *Module) focusChanged(c FocusChange) {
	if !m.session.Exclusive() {
		return
	}
	key, ok := m.arbiter.focused()
	if !ok {
		return
	}
	rec, ok := m.pool.get(key)
	if !ok {
		return
	}
	m.log.WithFields(logrus.Fields{"key": key, "change": c.String()}).Debug("audio focus changed")

	if c.IsLoss() {
		m.arbiter.wasPlaying = rec.backend.PlayWhenReady()
		if m.arbiter.wasPlaying {
			m.pause(key)
		}
		return
	}
	if m.arbiter.wasPlaying {
		m.play(key)
		m.arbiter.wasPlaying = false
	}
}

func (m *Module) requestFocus() {
	if m.focus == nil {
		return
	}
	if !m.focus.RequestFocus(m) {
		m.log.Warn("audio focus request denied")
	}
}

// abandonFocus gives focus back when key holds it in exclusive mode.
func (m *Module) abandonFocus(key int) {
	if !m.session.Exclusive() || !m.arbiter.holds(key) {
		return
	}
	if m.focus != nil {
		m.focus.AbandonFocus(m)
	}
	m.arbiter.clear()
}

// PlayerInfo is a snapshot of one live player.
type PlayerInfo struct {
	Key         int     `json:"key"`
	Source      string  `json:"source"`
	IsPlaying   bool    `json:"isPlaying"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	Looping     bool    `json:"looping"`
	Volume      float64 `json:"volume"`
	Speed       float64 `json:"speed"`
	Focused     bool    `json:"focused"`
	Title       string  `json:"title,omitempty"`
	Artist      string  `json:"artist,omitempty"`
	Album       string  `json:"album,omitempty"`
}

// Players returns a snapshot of the live players ordered by key.
func (m *Module) Players() []PlayerInfo {
	var out []PlayerInfo
	m.exec(func() {
		for _, key := range m.pool.keys() {
			if rec, _ := m.pool.get(key); rec.listener.state.IsPrepared() {
				out = append(out, m.info(key))
			}
		}
	})
	return out
}

// Player returns the snapshot of key.
func (m *Module) Player(key int) (PlayerInfo, bool) {
	var (
		info PlayerInfo
		ok   bool
	)
	m.exec(func() {
		if _, ok = m.pool.get(key); ok {
			info = m.info(key)
		}
	})
	return info, ok
}

// Active returns the focused player, or else the most recently played live
// player.
func (m *Module) Active() (int, bool) {
	var (
		key int
		ok  bool
	)
	m.exec(func() {
		if k, has := m.arbiter.focused(); has {
			if _, live := m.pool.get(k); live {
				key, ok = k, true
				return
			}
		}
		if m.hasPlayed {
			if _, live := m.pool.get(m.lastPlayed); live {
				key, ok = m.lastPlayed, true
			}
		}
	})
	return key, ok
}

func (m *Module) info(key int) PlayerInfo {
	rec, _ := m.pool.get(key)
	ti := rec.backend.Info()
	return PlayerInfo{
		Key:         key,
		Source:      rec.listener.source.Locator,
		IsPlaying:   rec.backend.PlayWhenReady(),
		CurrentTime: rec.backend.Position().Seconds(),
		Duration:    rec.backend.Duration().Seconds(),
		Looping:     rec.loop(),
		Volume:      rec.volume,
		Speed:       rec.speed,
		Focused:     m.arbiter.holds(key),
		Title:       ti.Title,
		Artist:      ti.Artist,
		Album:       ti.Album,
	}
}
