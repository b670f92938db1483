package player

import (
	"errors"
	"sync"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/soundpool/internal/sound"
)

// fakeSink mixes by hand instead of driving a device.
type fakeSink struct {
	mu        sync.Mutex
	inits     int
	initErr   error
	streamers []beep.Streamer
}

func (s *fakeSink) Init(beep.SampleRate, int) error {
	s.inits++
	return s.initErr
}

func (s *fakeSink) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streamers = append(s.streamers, st)
}

func (s *fakeSink) Lock()   { s.mu.Lock() }
func (s *fakeSink) Unlock() { s.mu.Unlock() }

// pull streams n samples from every live streamer and drops finished ones.
func (s *fakeSink) pull(n int) [][2]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([][2]float64, n)
	live := s.streamers[:0]
	for _, st := range s.streamers {
		if _, ok := st.Stream(buf); ok {
			live = append(live, st)
		}
	}
	s.streamers = live
	return buf
}

func (s *fakeSink) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streamers)
}

type fakeVolumeStore struct {
	saved map[string]int
	err   error
}

func (f *fakeVolumeStore) SaveStreamVolume(stream string, level int) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	f.saved[stream] = level
	return nil
}

func TestOutput_StreamVolumes(t *testing.T) {
	store := &fakeVolumeStore{}
	out := newOutput(&fakeSink{}, OutputConfig{VolumeSteps: 15}, store,
		map[string]int{"music": 7, "bogus": 3, "system": 99}, nil)

	level, maxLevel, err := out.StreamVolume(sound.StreamMusic)
	require.NoError(t, err)
	assert.Equal(t, 7, level)
	assert.Equal(t, 15, maxLevel)

	level, _, _ = out.StreamVolume(sound.StreamSystem)
	assert.Equal(t, 15, level, "restored levels are clamped")

	level, _, _ = out.StreamVolume(sound.StreamNotification)
	assert.Equal(t, 15, level, "unsaved streams start at max")

	require.NoError(t, out.SetStreamVolume(sound.StreamMusic, -4))
	level, _, _ = out.StreamVolume(sound.StreamMusic)
	assert.Zero(t, level)
	assert.Equal(t, 0, store.saved["music"])

	store.err = errors.New("disk full")
	assert.Error(t, out.SetStreamVolume(sound.StreamMusic, 3))
}

func TestOutput_OpensDeviceOnce(t *testing.T) {
	sink := &fakeSink{}
	out := newOutput(sink, OutputConfig{}, nil, nil, nil)

	require.NoError(t, out.play(&mockStreamer{samples: 1}))
	require.NoError(t, out.play(&mockStreamer{samples: 1}))
	assert.Equal(t, 1, sink.inits)
	assert.Equal(t, 2, sink.live())
	assert.Equal(t, beep.SampleRate(44100), out.SampleRate())
}

func TestOutput_InitFailureSticks(t *testing.T) {
	sink := &fakeSink{initErr: errors.New("no device")}
	out := newOutput(sink, OutputConfig{}, nil, nil, nil)

	assert.ErrorContains(t, out.play(&mockStreamer{}), "no device")
	assert.Error(t, out.play(&mockStreamer{}))
	assert.Equal(t, 1, sink.inits)
}

func TestLevelToVolume(t *testing.T) {
	assert.Equal(t, 0.0, levelToVolume(1))
	assert.Equal(t, -1.0, levelToVolume(0.5))
	assert.Equal(t, -2.0, levelToVolume(0.25))
	assert.Equal(t, -10.0, levelToVolume(0))
}
