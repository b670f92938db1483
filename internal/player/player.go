// Package player is the desktop playback backend built on beep.
//
// Each Player decodes one source and renders it through the shared Output:
//
//	decoder → resampler (rate × speed) → end detection → ctrl → volume → voice → mixer
package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Options tune how players load and render media.
type Options struct {
	FS              afero.Fs // nil means the OS filesystem
	HTTPClient      *http.Client
	UserAgent       string
	MaxStreamBytes  int64
	ResampleQuality int
}

// Player renders one source. It implements sound.Backend.
type Player struct {
	out    *Output
	load   *loader
	notify func(sound.BackendEvent)
	log    logrus.FieldLogger
	qual   int

	mu       sync.Mutex
	cancel   context.CancelFunc
	streamer beep.StreamSeekCloser
	format   beep.Format
	resamp   *beep.Resampler
	tail     *endStreamer
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	voice    *voice
	info     sound.TrackInfo
	ready    bool
	released bool

	playWhenReady bool
	level         float64
	speed         float64
	stream        sound.StreamType
	pendingSeek   time.Duration
}

// Verify Player implements sound.Backend at compile time.
var _ sound.Backend = (*Player)(nil)

// Factory returns a sound.BackendFactory building players on out.
func Factory(out *Output, opts Options, log logrus.FieldLogger) sound.BackendFactory {
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ResampleQuality <= 0 {
		opts.ResampleQuality = 4
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	ld := &loader{
		fs:        opts.FS,
		client:    opts.HTTPClient,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxStreamBytes,
	}
	return func(notify func(sound.BackendEvent)) sound.Backend {
		return &Player{
			out:    out,
			load:   ld,
			notify: notify,
			log:    log,
			qual:   opts.ResampleQuality,
			level:  1,
			speed:  1,
		}
	}
}

// Prepare loads src in the background and reports ready or error.
func (p *Player) Prepare(src sound.Source) {
	p.mu.Lock()
	if p.released || p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		if err := p.prepare(ctx, src); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			p.notify(sound.BackendEvent{Kind: sound.EventError, Err: err})
			return
		}
		p.notify(sound.BackendEvent{Kind: sound.EventReady})
	}()
}

func (p *Player) prepare(ctx context.Context, src sound.Source) error {
	m, err := p.load.open(ctx, src)
	if err != nil {
		return err
	}
	format, err := detectFormat(src.Locator, m)
	if err != nil {
		m.Close()
		return err
	}
	info := readInfo(src.Locator, m)

	streamer, f, err := decode(format, m)
	if err != nil {
		m.Close()
		return fmt.Errorf("decoding %s: %w", src.Locator, err)
	}
	info.NumberOfChannels = f.NumChannels

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released || ctx.Err() != nil {
		streamer.Close()
		return context.Canceled
	}

	p.streamer = streamer
	p.format = f
	p.info = info
	if p.pendingSeek > 0 {
		if err := streamer.Seek(min(f.SampleRate.N(p.pendingSeek), streamer.Len())); err != nil {
			p.log.WithError(err).Warn("cannot apply initial seek")
		}
	}
	p.resamp = beep.ResampleRatio(p.qual, p.ratioLocked(), streamer)
	p.tail = &endStreamer{src: p.resamp, onEnd: p.ended}
	p.ctrl = &beep.Ctrl{Streamer: p.tail, Paused: !p.playWhenReady}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: levelToVolume(p.level), Silent: p.level <= 0}
	p.voice = newVoice(p.volume, p.out)
	p.voice.setStream(p.stream)

	if err := p.out.play(p.voice); err != nil {
		streamer.Close()
		return err
	}
	p.ready = true
	return nil
}

// ratioLocked converts the source rate to the device rate at the current
// speed.
func (p *Player) ratioLocked() float64 {
	return float64(p.format.SampleRate) / float64(p.out.SampleRate()) * p.speed
}

// ended runs inside the mixer. The notification goes out on its own
// goroutine.
func (p *Player) ended() {
	go p.notify(sound.BackendEvent{Kind: sound.EventEnded})
}

// locked runs fn with the mixer held.
func (p *Player) locked(fn func()) {
	p.out.sink.Lock()
	defer p.out.sink.Unlock()
	fn()
}

func (p *Player) SetPlayWhenReady(play bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playWhenReady = play
	if p.ready {
		p.locked(func() { p.ctrl.Paused = !play })
	}
}

func (p *Player) PlayWhenReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playWhenReady
}

// SeekTo moves to pos. The resampler is rebuilt so no stale samples play,
// which also makes an ended player playable again.
func (p *Player) SeekTo(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		p.pendingSeek = pos
		return
	}
	p.locked(func() {
		n := max(0, min(p.format.SampleRate.N(pos), p.streamer.Len()))
		if err := p.streamer.Seek(n); err != nil {
			p.log.WithError(err).WithField("position", pos).Warn("seek failed")
			return
		}
		p.resamp = beep.ResampleRatio(p.qual, p.ratioLocked(), p.streamer)
		p.tail.reset(p.resamp)
	})
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return p.pendingSeek
	}
	var pos time.Duration
	p.locked(func() { pos = p.format.SampleRate.D(p.streamer.Position()) })
	return pos
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

func (p *Player) Info() sound.TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info
}

func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = max(0, min(1, level))
	if p.ready {
		p.locked(func() {
			p.volume.Volume = levelToVolume(p.level)
			p.volume.Silent = p.level <= 0
		})
	}
}

func (p *Player) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
	if p.ready {
		p.locked(func() { p.resamp.SetRatio(p.ratioLocked()) })
	}
}

func (p *Player) SetStreamType(t sound.StreamType) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stream = t
	if p.voice != nil {
		p.voice.setStream(t)
	}
}

// Release stops rendering, cancels an in-flight prepare and closes the
// media.
func (p *Player) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	if p.cancel != nil {
		p.cancel()
	}
	if !p.ready {
		return
	}
	p.voice.close()
	p.locked(func() {
		if err := p.streamer.Close(); err != nil {
			p.log.WithError(err).Debug("closing media")
		}
	})
}
