package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// mp3Stereo16 is the frame size of go-mp3 output: stereo, 16-bit.
const mp3Stereo16 = 4

// mp3Streamer adapts a go-mp3 decoder to beep.StreamSeekCloser.
type mp3Streamer struct {
	dec    *mp3.Decoder
	closer io.Closer
	err    error
	buf    []byte
}

func decodeGoMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Streamer{dec: dec, closer: rc, buf: make([]byte, 8192)}, format, nil
}

// Stream implements beep.Streamer.
func (s *mp3Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	want := len(samples) * mp3Stereo16
	if len(s.buf) < want {
		s.buf = make([]byte, want)
	}

	read, err := io.ReadFull(s.dec, s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}
	n = read / mp3Stereo16
	if n == 0 {
		return 0, false
	}
	for i := range n {
		off := i * mp3Stereo16
		left := int16(binary.LittleEndian.Uint16(s.buf[off:]))    //nolint:gosec // audio samples
		right := int16(binary.LittleEndian.Uint16(s.buf[off+2:])) //nolint:gosec // audio samples
		samples[i][0] = float64(left) / 32768.0
		samples[i][1] = float64(right) / 32768.0
	}
	return n, true
}

// Err implements beep.Streamer.
func (s *mp3Streamer) Err() error { return s.err }

// Len implements beep.StreamSeeker.
func (s *mp3Streamer) Len() int {
	return max(0, int(s.dec.SampleCount()))
}

// Position implements beep.StreamSeeker.
func (s *mp3Streamer) Position() int {
	return int(s.dec.SamplePosition())
}

// Seek implements beep.StreamSeeker. Out-of-range positions are clamped.
func (s *mp3Streamer) Seek(p int) error {
	p = max(0, min(p, s.Len()))
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

// Close closes the underlying media.
func (s *mp3Streamer) Close() error {
	return s.closer.Close()
}
