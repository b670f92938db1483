// internal/state/interface.go
package state

import (
	"github.com/llehouerou/soundpool/internal/player"
	"github.com/llehouerou/soundpool/internal/sound"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	sound.SessionStore
	player.VolumeStore
	GetSession() (sound.Session, error)
	SavedSession() (sound.Session, bool, error)
	StreamVolumes() (map[string]int, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
