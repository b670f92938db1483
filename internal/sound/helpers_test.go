package sound

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// recorder is an Emitter that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
	at     []time.Time
}

func (r *recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.at = append(r.at, time.Now())
}

func (r *recorder) playingStates() []PlayingStateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PlayingStateEvent
	for _, e := range r.events {
		if ps, ok := e.(PlayingStateEvent); ok {
			out = append(out, ps)
		}
	}
	return out
}

func (r *recorder) progress() ([]ProgressEvent, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		out []ProgressEvent
		at  []time.Time
	)
	for i, e := range r.events {
		if p, ok := e.(ProgressEvent); ok {
			out = append(out, p)
			at = append(at, r.at[i])
		}
	}
	return out, at
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.at = nil
}

// fakeFocus records focus calls.
type fakeFocus struct {
	mu       sync.Mutex
	deny     bool
	requests int
	abandons int
	holder   FocusListener
}

func (f *fakeFocus) RequestFocus(l FocusListener) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.deny {
		return false
	}
	f.holder = l
	return true
}

func (f *fakeFocus) AbandonFocus(l FocusListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandons++
	if f.holder == l {
		f.holder = nil
	}
}

func (f *fakeFocus) counts() (requests, abandons int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests, f.abandons
}

// fakeVolume is a stepped stream volume table.
type fakeVolume struct {
	mu     sync.Mutex
	levels map[StreamType]int
	max    int
	err    error
}

func (v *fakeVolume) StreamVolume(t StreamType) (int, int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return 0, 0, v.err
	}
	return v.levels[t], v.max, nil
}

func (v *fakeVolume) SetStreamVolume(t StreamType, level int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.levels == nil {
		v.levels = make(map[StreamType]int)
	}
	v.levels[t] = level
	return nil
}

type fakeRouter struct {
	mu    sync.Mutex
	calls []bool
}

func (r *fakeRouter) SetSpeakerphoneOn(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, on)
	return nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []Session
}

func (s *fakeStore) SaveSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, sess)
}

type harness struct {
	m       *Module
	backs   *MockFactory
	events  *recorder
	focus   *fakeFocus
	logHook *test.Hook
}

// newHarness builds a module over an in-memory filesystem holding
// /music/a.mp3 and /music/b.mp3. Callers must Close the module.
func newHarness(t *testing.T, session Session) *harness {
	t.Helper()
	fs := memFS(t, "/music/a.mp3", "/music/b.mp3")
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	h := &harness{
		backs:   &MockFactory{},
		events:  &recorder{},
		focus:   &fakeFocus{},
		logHook: hook,
	}
	h.m = New(Config{
		Backends: h.backs.New,
		FS:       fs,
		Focus:    h.focus,
		Emitter:  h.events,
		Logger:   logger,
		Session:  &session,
	})
	return h
}

// ready prepares key from path and makes its backend ready.
func (h *harness) ready(t *testing.T, path string, key int) *MockBackend {
	t.Helper()
	c := h.m.Prepare(path, key, PrepareOptions{})
	if c.Completed() {
		_, err := c.Result()
		t.Fatalf("Prepare(%q) completed early: %v", path, err)
	}
	b := h.backs.Last()
	b.SimulateReady()
	if _, err := c.Result(); err != nil {
		t.Fatalf("Prepare(%q) = %v", path, err)
	}
	return b
}

func memFS(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte{0}, 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return fs
}
