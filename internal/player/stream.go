package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/spf13/afero"

	"github.com/llehouerou/soundpool/internal/sound"
)

// Supported container formats.
const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// DefaultUserAgent is sent when a stream request sets no user agent.
const DefaultUserAgent = "Audioplayer"

// ErrUnsupportedFormat is returned for media the backend cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported format")

// media is an opened source ready for decoding.
type media interface {
	io.ReadSeeker
	io.Closer
}

type memoryMedia struct {
	*bytes.Reader
}

func (memoryMedia) Close() error { return nil }

// loader opens sources for the backend.
type loader struct {
	fs        afero.Fs
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func (l *loader) open(ctx context.Context, src sound.Source) (media, error) {
	if src.IsStream() {
		return l.fetch(ctx, src)
	}
	f, err := l.fs.Open(src.Locator)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src.Locator, err)
	}
	return f, nil
}

// fetch downloads a stream into memory so it can be decoded and seeked.
func (l *loader) fetch(ctx context.Context, src sound.Source) (media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Locator, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	ua := src.UserAgent
	if ua == "" {
		ua = l.userAgent
	}
	req.Header.Set("User-Agent", ua)
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", src.Locator, resp.Status)
	}

	body := io.Reader(resp.Body)
	if l.maxBytes > 0 {
		body = io.LimitReader(resp.Body, l.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src.Locator, err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("stream %s exceeds %d bytes", src.Locator, l.maxBytes)
	}
	return memoryMedia{bytes.NewReader(data)}, nil
}

// detectFormat picks a decoder from the locator extension, falling back to
// the leading magic bytes.
func detectFormat(locator string, r io.ReadSeeker) (string, error) {
	ext := strings.ToLower(filepath.Ext(locator))
	if strings.Contains(locator, "://") {
		ext = strings.ToLower(path.Ext(strings.SplitN(locator, "?", 2)[0]))
	}
	switch ext {
	case extMP3, extFLAC, extWAV, extOGG:
		return ext, nil
	}
	return sniffFormat(r)
}

func sniffFormat(r io.ReadSeeker) (string, error) {
	header := make([]byte, 12)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, []byte("fLaC")):
		return extFLAC, nil
	case bytes.HasPrefix(header, []byte("OggS")):
		return extOGG, nil
	case len(header) >= 12 && string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return extWAV, nil
	case bytes.HasPrefix(header, []byte("ID3")):
		return extMP3, nil
	case len(header) >= 2 && header[0] == 0xff && header[1]&0xe0 == 0xe0:
		return extMP3, nil
	}
	return "", ErrUnsupportedFormat
}

// decode opens the decoder for format. The decoder owns m afterwards.
func decode(format string, m media) (beep.StreamSeekCloser, beep.Format, error) {
	switch format {
	case extMP3:
		return decodeGoMP3(m)
	case extFLAC:
		// Some taggers prepend ID3v2 to FLAC files.
		if err := skipID3v2(m); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(m)
	case extWAV:
		return wav.Decode(m)
	case extOGG:
		return vorbis.Decode(m)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of r.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := r.Read(header)
	if err != nil {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe size: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
