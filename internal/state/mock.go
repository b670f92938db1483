// internal/state/mock.go
package state

import (
	"sync"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Mock is a test double for Manager.
type Mock struct {
	mu      sync.Mutex
	session *sound.Session
	volumes map[string]int
	saveErr error
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{volumes: make(map[string]int)}
}

func (m *Mock) SaveSession(s sound.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &s
}

func (m *Mock) GetSession() (sound.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return sound.DefaultSession(), nil
	}
	return *m.session, nil
}

func (m *Mock) SavedSession() (sound.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return sound.DefaultSession(), false, nil
	}
	return *m.session, true, nil
}

func (m *Mock) SaveStreamVolume(stream string, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.volumes[stream] = level
	return nil
}

func (m *Mock) StreamVolumes() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.volumes))
	for k, v := range m.volumes {
		out[k] = v
	}
	return out, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
