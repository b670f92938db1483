package state

import (
	"context"
	"database/sql"

	"github.com/llehouerou/soundpool/internal/db"
)

// StreamVolumes returns the saved level of every stream by name.
func (m *Manager) StreamVolumes() (map[string]int, error) {
	rows, err := m.db.Query(`SELECT stream, level FROM stream_volumes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make(map[string]int)
	for rows.Next() {
		var (
			stream string
			level  int
		)
		if err := rows.Scan(&stream, &level); err != nil {
			return nil, err
		}
		levels[stream] = level
	}
	return levels, rows.Err()
}

// SaveStreamVolume persists the level of one stream.
func (m *Manager) SaveStreamVolume(stream string, level int) error {
	return db.WithTx(context.Background(), m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO stream_volumes (stream, level) VALUES (?, ?)
			ON CONFLICT(stream) DO UPDATE SET level = excluded.level
		`, stream, level)
		return err
	})
}
