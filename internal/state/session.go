package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/soundpool/internal/db"
	"github.com/llehouerou/soundpool/internal/sound"
)

// GetSession returns the saved session, or the default session when none
// was saved.
func (m *Manager) GetSession() (sound.Session, error) {
	s, _, err := getSession(m.db)
	return s, err
}

// SavedSession returns the saved session and whether one exists.
func (m *Manager) SavedSession() (sound.Session, bool, error) {
	return getSession(m.db)
}

// SaveSession stores s after a short debounce. It implements
// sound.SessionStore and never blocks on the database.
func (m *Manager) SaveSession(s sound.Session) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveSession(m.db, *pending); err != nil {
				m.log.WithError(err).Warn("saving session state")
			}
		}
	})
}

func getSession(conn *sql.DB) (sound.Session, bool, error) {
	var (
		category sql.NullString
		mix      bool
	)
	err := conn.QueryRow(`SELECT category, mix_with_others FROM session_state WHERE id = 1`).
		Scan(&category, &mix)
	if errors.Is(err, sql.ErrNoRows) {
		return sound.DefaultSession(), false, nil
	}
	if err != nil {
		return sound.Session{}, false, err
	}
	return sound.Session{Category: db.NullStringValue(category), MixWithOthers: mix}, true, nil
}

func saveSession(conn *sql.DB, s sound.Session) error {
	_, err := conn.Exec(`
		INSERT INTO session_state (id, category, mix_with_others)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			mix_with_others = excluded.mix_with_others
	`, db.NullString(s.Category), s.MixWithOthers)
	return err
}
