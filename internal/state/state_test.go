package state

import (
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/llehouerou/soundpool/internal/sound"
)

func openTestManager(t *testing.T) *Manager {
	t.Helper()
	log, _ := test.NewNullLogger()
	m, err := Open(memoryPath, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return m
}

func TestGetSession_Empty(t *testing.T) {
	m := openTestManager(t)
	defer m.Close()

	s, err := m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if s != sound.DefaultSession() {
		t.Errorf("GetSession() = %+v, want default", s)
	}
	if _, ok, err := m.SavedSession(); err != nil || ok {
		t.Errorf("SavedSession() ok = %v, err = %v, want no saved session", ok, err)
	}
}

func TestSaveAndGetSession(t *testing.T) {
	m := openTestManager(t)
	defer m.Close()

	want := sound.Session{Category: sound.CategoryAmbient, MixWithOthers: false}
	if err := saveSession(m.db, want); err != nil {
		t.Fatalf("saveSession failed: %v", err)
	}
	got, err := m.GetSession()
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != want {
		t.Errorf("GetSession() = %+v, want %+v", got, want)
	}
	if saved, ok, _ := m.SavedSession(); !ok || saved != want {
		t.Errorf("SavedSession() = %+v, %v", saved, ok)
	}

	// Overwrite clears the category.
	if err := saveSession(m.db, sound.Session{MixWithOthers: true}); err != nil {
		t.Fatalf("saveSession failed: %v", err)
	}
	got, _ = m.GetSession()
	if got.Category != "" || !got.MixWithOthers {
		t.Errorf("GetSession() = %+v after overwrite", got)
	}
}

func TestSaveSession_Debounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := openTestManager(t)
		defer m.Close()

		m.SaveSession(sound.Session{Category: sound.CategorySystem})
		m.SaveSession(sound.Session{Category: sound.CategoryPlayback})

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		if s, _ := m.GetSession(); s.Category != "" {
			t.Errorf("saved before debounce: %+v", s)
		}

		time.Sleep(saveDebounce)
		synctest.Wait()
		s, _ := m.GetSession()
		if s.Category != sound.CategoryPlayback {
			t.Errorf("Category = %q, want last saved Playback", s.Category)
		}
	})
}

func TestClose_FlushesPendingSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	log, _ := test.NewNullLogger()

	m, err := Open(path, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.SaveSession(sound.Session{Category: sound.CategoryAmbient, MixWithOthers: true})
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = Open(path, log)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()
	s, _ := m.GetSession()
	if s.Category != sound.CategoryAmbient {
		t.Errorf("Category = %q after reopen, want Ambient", s.Category)
	}
}

func TestStreamVolumes(t *testing.T) {
	m := openTestManager(t)
	defer m.Close()

	levels, err := m.StreamVolumes()
	if err != nil {
		t.Fatalf("StreamVolumes failed: %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("StreamVolumes() = %v, want empty", levels)
	}

	for _, sv := range []struct {
		stream string
		level  int
	}{{"music", 4}, {"system", 9}, {"music", 11}} {
		if err := m.SaveStreamVolume(sv.stream, sv.level); err != nil {
			t.Fatalf("SaveStreamVolume(%s) failed: %v", sv.stream, err)
		}
	}

	levels, _ = m.StreamVolumes()
	if levels["music"] != 11 || levels["system"] != 9 || len(levels) != 2 {
		t.Errorf("StreamVolumes() = %v", levels)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	m := openTestManager(t)
	defer m.Close()

	if err := initSchema(m.db); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}
	var version int
	if err := m.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != currentSchemaVersion {
		t.Errorf("version = %d, want %d", version, currentSchemaVersion)
	}
}
