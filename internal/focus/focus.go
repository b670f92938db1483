// Package focus arbitrates audio focus between the players of a process.
//
// Holders form a stack. Requesting focus pushes the requester and tells the
// previous top holder it lost focus; abandoning pops the holder and gives
// focus back to whoever is on top afterwards. Notifications are delivered
// after the manager's lock is released, so listeners may call back in.
package focus

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Manager is a process-wide focus stack. It implements sound.FocusManager.
type Manager struct {
	mu    sync.Mutex
	stack []sound.FocusListener
	log   logrus.FieldLogger
}

// Verify Manager implements sound.FocusManager at compile time.
var _ sound.FocusManager = (*Manager)(nil)

// New creates an empty focus manager.
func New(log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{log: log}
}

type delivery struct {
	to     sound.FocusListener
	change sound.FocusChange
}

func (m *Manager) deliver(ds []delivery) {
	for _, d := range ds {
		d.to.OnFocusChange(d.change)
	}
}

// RequestFocus makes l the focus holder. Requesting while already on top is
// a no-op. It always grants.
func (m *Manager) RequestFocus(l sound.FocusListener) bool {
	m.mu.Lock()
	var ds []delivery
	if top := m.topLocked(); top != l {
		if top != nil {
			ds = append(ds, delivery{to: top, change: sound.FocusLoss})
		}
		m.removeLocked(l)
		m.stack = append(m.stack, l)
	}
	depth := len(m.stack)
	m.mu.Unlock()

	m.log.WithField("depth", depth).Debug("focus granted")
	m.deliver(ds)
	return true
}

// AbandonFocus removes l from the stack. If l was on top, the next holder
// regains focus.
func (m *Manager) AbandonFocus(l sound.FocusListener) {
	m.mu.Lock()
	wasTop := m.topLocked() == l
	if !m.removeLocked(l) {
		m.mu.Unlock()
		return
	}
	var ds []delivery
	if next := m.topLocked(); wasTop && next != nil {
		ds = append(ds, delivery{to: next, change: sound.FocusGain})
	}
	m.mu.Unlock()

	m.log.Debug("focus abandoned")
	m.deliver(ds)
}

// Notify forwards an external focus change to the current holder. It
// reports whether anyone held focus.
func (m *Manager) Notify(c sound.FocusChange) bool {
	m.mu.Lock()
	top := m.topLocked()
	m.mu.Unlock()

	if top == nil {
		return false
	}
	m.log.WithField("change", c.String()).Debug("forwarding focus change")
	top.OnFocusChange(c)
	return true
}

// Holders returns how many listeners are on the stack.
func (m *Manager) Holders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack)
}

func (m *Manager) topLocked() sound.FocusListener {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Manager) removeLocked(l sound.FocusListener) bool {
	for i, cur := range m.stack {
		if cur == l {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			return true
		}
	}
	return false
}
