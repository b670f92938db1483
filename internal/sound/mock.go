package sound

import (
	"sync"
	"time"
)

// MockBackend is a test double for Backend. Its position advances with the
// wall clock while it plays, so it follows the fake clock under synctest.
type MockBackend struct {
	mu         sync.Mutex
	notify     func(BackendEvent)
	source     Source
	prepared   bool
	playing    bool
	base       time.Duration
	since      time.Time
	duration   time.Duration
	info       TrackInfo
	volume     float64
	speed      float64
	streamType StreamType
	released   bool
	seekCalls  []time.Duration
}

// NewMockBackend creates a mock reporting through notify.
func NewMockBackend(notify func(BackendEvent)) *MockBackend {
	return &MockBackend{
		notify:   notify,
		volume:   1,
		speed:    1,
		duration: 3 * time.Minute,
	}
}

func (b *MockBackend) Prepare(src Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = src
	b.prepared = true
}

func (b *MockBackend) SetPlayWhenReady(play bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if play == b.playing {
		return
	}
	b.base = b.positionLocked()
	b.since = time.Now()
	b.playing = play
}

func (b *MockBackend) PlayWhenReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

func (b *MockBackend) SeekTo(pos time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seekCalls = append(b.seekCalls, pos)
	b.base = pos
	b.since = time.Now()
}

func (b *MockBackend) Position() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.positionLocked()
}

func (b *MockBackend) positionLocked() time.Duration {
	pos := b.base
	if b.playing {
		pos += time.Duration(float64(time.Since(b.since)) * b.speed)
	}
	if b.duration > 0 && pos > b.duration {
		pos = b.duration
	}
	return pos
}

func (b *MockBackend) Duration() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duration
}

func (b *MockBackend) Info() TrackInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.info
}

func (b *MockBackend) SetVolume(level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = level
}

func (b *MockBackend) SetSpeed(speed float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.base = b.positionLocked()
	b.since = time.Now()
	b.speed = speed
}

func (b *MockBackend) SetStreamType(t StreamType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streamType = t
}

func (b *MockBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.base = b.positionLocked()
	b.playing = false
	b.released = true
}

// Test helpers

func (b *MockBackend) SetDuration(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.duration = d
}

func (b *MockBackend) SetInfo(info TrackInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.info = info
}

func (b *MockBackend) Source() Source {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.source
}

func (b *MockBackend) Prepared() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.prepared
}

func (b *MockBackend) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *MockBackend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *MockBackend) Speed() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

func (b *MockBackend) StreamType() StreamType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamType
}

func (b *MockBackend) SeekCalls() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Duration(nil), b.seekCalls...)
}

// SimulateReady reports the backend as ready.
func (b *MockBackend) SimulateReady() { b.notify(BackendEvent{Kind: EventReady}) }

// SimulateEnded moves to the end of the media and reports it.
func (b *MockBackend) SimulateEnded() {
	b.mu.Lock()
	b.base = b.duration
	b.since = time.Now()
	b.mu.Unlock()
	b.notify(BackendEvent{Kind: EventEnded})
}

// SimulateError reports a backend failure.
func (b *MockBackend) SimulateError(err error) {
	b.notify(BackendEvent{Kind: EventError, Err: err})
}

// MockFactory builds MockBackends and remembers them in creation order.
type MockFactory struct {
	mu       sync.Mutex
	backends []*MockBackend
}

// New implements BackendFactory.
func (f *MockFactory) New(notify func(BackendEvent)) Backend {
	b := NewMockBackend(notify)
	f.mu.Lock()
	f.backends = append(f.backends, b)
	f.mu.Unlock()
	return b
}

// Last returns the most recently built backend, or nil.
func (f *MockFactory) Last() *MockBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.backends) == 0 {
		return nil
	}
	return f.backends[len(f.backends)-1]
}

// Count returns how many backends were built.
func (f *MockFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.backends)
}

// Verify MockBackend implements Backend at compile time.
var _ Backend = (*MockBackend)(nil)
