package player

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Sink is the audio device the players mix into.
type Sink interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// speakerSink is the beep speaker.
type speakerSink struct{}

func (speakerSink) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (speakerSink) Play(s beep.Streamer)                          { speaker.Play(s) }
func (speakerSink) Lock()                                         { speaker.Lock() }
func (speakerSink) Unlock()                                       { speaker.Unlock() }

// VolumeStore persists stream volumes.
type VolumeStore interface {
	SaveStreamVolume(stream string, level int) error
}

// OutputConfig configures the shared output.
type OutputConfig struct {
	SampleRate  int
	Buffer      time.Duration
	VolumeSteps int
}

// Output owns the audio device and the stepped per-stream volumes. It
// implements sound.VolumeControl.
type Output struct {
	sink       Sink
	sampleRate beep.SampleRate
	buffer     time.Duration
	steps      int
	store      VolumeStore
	log        logrus.FieldLogger

	initOnce sync.Once
	initErr  error

	mu     sync.Mutex
	levels map[sound.StreamType]int
}

// Verify Output implements sound.VolumeControl at compile time.
var _ sound.VolumeControl = (*Output)(nil)

// NewOutput creates an output on the speaker. The device opens on first
// playback. levels restores saved stream volumes by stream name.
func NewOutput(cfg OutputConfig, store VolumeStore, levels map[string]int, log logrus.FieldLogger) *Output {
	return newOutput(speakerSink{}, cfg, store, levels, log)
}

func newOutput(sink Sink, cfg OutputConfig, store VolumeStore, levels map[string]int, log logrus.FieldLogger) *Output {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 100 * time.Millisecond
	}
	if cfg.VolumeSteps <= 0 {
		cfg.VolumeSteps = 15
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := &Output{
		sink:       sink,
		sampleRate: beep.SampleRate(cfg.SampleRate),
		buffer:     cfg.Buffer,
		steps:      cfg.VolumeSteps,
		store:      store,
		log:        log,
		levels:     make(map[sound.StreamType]int),
	}
	for _, t := range streamTypes {
		o.levels[t] = o.steps
	}
	for name, level := range levels {
		t, ok := parseStreamType(name)
		if !ok {
			log.WithField("stream", name).Warn("ignoring saved volume of unknown stream")
			continue
		}
		o.levels[t] = o.clamp(level)
	}
	return o
}

var streamTypes = []sound.StreamType{
	sound.StreamDefault,
	sound.StreamMusic,
	sound.StreamNotification,
	sound.StreamSystem,
}

func parseStreamType(name string) (sound.StreamType, bool) {
	for _, t := range streamTypes {
		if t.String() == name {
			return t, true
		}
	}
	return sound.StreamDefault, false
}

// SampleRate returns the device sample rate.
func (o *Output) SampleRate() beep.SampleRate { return o.sampleRate }

// open initializes the device once.
func (o *Output) open() error {
	o.initOnce.Do(func() {
		if err := o.sink.Init(o.sampleRate, o.sampleRate.N(o.buffer)); err != nil {
			o.initErr = fmt.Errorf("opening audio device: %w", err)
			return
		}
		o.log.WithField("rate", int(o.sampleRate)).Debug("audio device opened")
	})
	return o.initErr
}

func (o *Output) play(s beep.Streamer) error {
	if err := o.open(); err != nil {
		return err
	}
	o.sink.Play(s)
	return nil
}

// StreamVolume implements sound.VolumeControl.
func (o *Output) StreamVolume(t sound.StreamType) (level, maxLevel int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.levels[t], o.steps, nil
}

// SetStreamVolume implements sound.VolumeControl. The level is clamped to
// the step range and persisted when a store is set.
func (o *Output) SetStreamVolume(t sound.StreamType, level int) error {
	level = o.clamp(level)
	o.mu.Lock()
	o.levels[t] = level
	o.mu.Unlock()

	if o.store == nil {
		return nil
	}
	if err := o.store.SaveStreamVolume(t.String(), level); err != nil {
		return fmt.Errorf("saving %s volume: %w", t, err)
	}
	return nil
}

// gain returns the linear factor of stream t.
func (o *Output) gain(t sound.StreamType) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(o.levels[t]) / float64(o.steps)
}

func (o *Output) clamp(level int) int {
	return max(0, min(o.steps, level))
}
