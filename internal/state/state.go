// Package state persists the daemon's session and stream volumes in SQLite.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/soundpool/internal/sound"
)

const (
	appName      = "soundpool"
	dbFileName   = "soundpool.db"
	saveDebounce = 500 * time.Millisecond
	memoryPath   = ":memory:"
)

type Manager struct {
	db        *sql.DB
	log       logrus.FieldLogger
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *sound.Session
}

// Open opens the store at path. An empty path uses the XDG data dir;
// ":memory:" opens a private in-memory database.
func Open(path string, log logrus.FieldLogger) (*Manager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if path == "" {
		var err error
		if path, err = getDBPath(); err != nil {
			return nil, fmt.Errorf("resolving state path: %w", err)
		}
	}
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and serializes writes.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	log.WithField("path", path).Debug("state store opened")
	return &Manager{db: db, log: log}, nil
}

// Close flushes a pending session save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveSession(m.db, *pending); err != nil {
			m.log.WithError(err).Warn("flushing session state")
		}
	}
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
