package player

import (
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/soundpool/internal/sound"
)

var (
	_ beep.Streamer = (*endStreamer)(nil)
	_ beep.Streamer = (*voice)(nil)
)

// endStreamer reports the end of its source once and then plays silence,
// so it stays in the mixer and can be rewound by seeking.
type endStreamer struct {
	mu    sync.Mutex
	src   beep.Streamer
	ended bool
	onEnd func()
}

// Stream implements beep.Streamer.
func (e *endStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ended {
		for n < len(samples) {
			m, more := e.src.Stream(samples[n:])
			n += m
			if !more {
				e.ended = true
				if e.onEnd != nil {
					e.onEnd()
				}
				break
			}
			if m == 0 {
				break
			}
		}
	}
	clear(samples[n:])
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *endStreamer) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src.Err()
}

// reset swaps in a rewound source so the end can be reported again.
func (e *endStreamer) reset(src beep.Streamer) {
	e.mu.Lock()
	e.src = src
	e.ended = false
	e.mu.Unlock()
}

// voice is the outermost streamer of a player. It applies the gain of the
// player's output stream and leaves the mixer once closed.
type voice struct {
	src    beep.Streamer
	out    *Output
	stream atomic.Int32
	closed atomic.Bool
}

func newVoice(src beep.Streamer, out *Output) *voice {
	return &voice{src: src, out: out}
}

func (v *voice) setStream(t sound.StreamType) { v.stream.Store(int32(t)) }

func (v *voice) streamType() sound.StreamType { return sound.StreamType(v.stream.Load()) }

func (v *voice) close() { v.closed.Store(true) }

// Stream implements beep.Streamer.
func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.closed.Load() {
		return 0, false
	}
	n, ok = v.src.Stream(samples)
	g := v.out.gain(v.streamType())
	if g == 1 {
		return n, ok
	}
	for i := range samples[:n] {
		samples[i][0] *= g
		samples[i][1] *= g
	}
	return n, ok
}

// Err implements beep.Streamer.
func (v *voice) Err() error { return v.src.Err() }
