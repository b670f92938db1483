package focus

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/soundpool/internal/sound"
)

type listener struct {
	name    string
	changes []sound.FocusChange
}

func (l *listener) OnFocusChange(c sound.FocusChange) {
	l.changes = append(l.changes, c)
}

func newManager() *Manager {
	log, _ := test.NewNullLogger()
	return New(log)
}

func TestManager_RequestNotifiesPreviousHolder(t *testing.T) {
	m := newManager()
	a, b := &listener{name: "a"}, &listener{name: "b"}

	if !m.RequestFocus(a) {
		t.Fatal("RequestFocus(a) denied")
	}
	m.RequestFocus(b)

	if len(a.changes) != 1 || a.changes[0] != sound.FocusLoss {
		t.Errorf("a changes = %v, want [loss]", a.changes)
	}
	if len(b.changes) != 0 {
		t.Errorf("b changes = %v, want none", b.changes)
	}
	if m.Holders() != 2 {
		t.Errorf("Holders() = %d, want 2", m.Holders())
	}
}

func TestManager_RequestWhileOnTopIsNoop(t *testing.T) {
	m := newManager()
	a := &listener{}
	m.RequestFocus(a)
	m.RequestFocus(a)

	if len(a.changes) != 0 {
		t.Errorf("changes = %v, want none", a.changes)
	}
	if m.Holders() != 1 {
		t.Errorf("Holders() = %d, want 1", m.Holders())
	}
}

func TestManager_AbandonGivesFocusBack(t *testing.T) {
	m := newManager()
	a, b := &listener{}, &listener{}
	m.RequestFocus(a)
	m.RequestFocus(b)
	m.AbandonFocus(b)

	want := []sound.FocusChange{sound.FocusLoss, sound.FocusGain}
	if len(a.changes) != 2 || a.changes[0] != want[0] || a.changes[1] != want[1] {
		t.Errorf("a changes = %v, want %v", a.changes, want)
	}

	// Abandoning a holder that is not on top, or not present, is silent.
	m.RequestFocus(b)
	m.AbandonFocus(a)
	m.AbandonFocus(a)
	if len(b.changes) != 0 {
		t.Errorf("b changes = %v, want none", b.changes)
	}
}

func TestManager_Notify(t *testing.T) {
	m := newManager()
	if m.Notify(sound.FocusLoss) {
		t.Error("Notify() with no holder = true")
	}

	a := &listener{}
	m.RequestFocus(a)
	if !m.Notify(sound.FocusLossTransientCanDuck) {
		t.Error("Notify() = false")
	}
	if len(a.changes) != 1 || a.changes[0] != sound.FocusLossTransientCanDuck {
		t.Errorf("changes = %v", a.changes)
	}
}

// reentrant calls back into the manager from its notification.
type reentrant struct {
	m     *Manager
	calls int
}

func (r *reentrant) OnFocusChange(sound.FocusChange) {
	r.calls++
	r.m.Holders()
}

func TestManager_DeliversOutsideLock(t *testing.T) {
	m := newManager()
	r := &reentrant{m: m}
	m.RequestFocus(r)
	m.RequestFocus(&listener{})

	if r.calls != 1 {
		t.Errorf("calls = %d, want 1", r.calls)
	}
}
