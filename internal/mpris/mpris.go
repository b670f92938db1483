//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Adapter exposes the active player over MPRIS on D-Bus.
type Adapter struct {
	server *server.Server
	log    logrus.FieldLogger
}

// New creates and starts a new MPRIS adapter.
func New(ctl Controller, log logrus.FieldLogger) (*Adapter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	a := &Adapter{log: log.WithField("component", "mpris")}

	r := remote{ctl: ctl}
	a.server = server.NewServer("soundpool", &rootAdapter{}, &playerAdapter{r: r, fs: afero.NewOsFs()})

	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.WithError(err).Warn("media controls unavailable")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

// The daemon has no window and outlives its media controls.
func (*rootAdapter) Raise() error                { return nil }
func (*rootAdapter) Quit() error                 { return nil }
func (*rootAdapter) CanQuit() (bool, error)      { return false, nil }
func (*rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (*rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) {
	return "Soundpool", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/wav", "audio/ogg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the loop
// status extension.
type playerAdapter struct {
	r  remote
	fs afero.Fs
}

func (p *playerAdapter) Next() error {
	return nil // Players are independent; there is no queue
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	return p.r.pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.r.playPause()
}

func (p *playerAdapter) Stop() error {
	return p.r.stop()
}

func (p *playerAdapter) Play() error {
	return p.r.play()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.r.seek(time.Duration(offset) * time.Microsecond)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.r.setPosition(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Players are prepared by the host
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.r.status() {
	case statusPlaying:
		return types.PlaybackStatusPlaying, nil
	case statusPaused:
		return types.PlaybackStatusPaused, nil
	case statusStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.r.rate(), nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	return p.r.setRate(rate)
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	info, ok := p.r.active()
	if !ok {
		return types.Metadata{}, nil
	}

	title := info.Title
	if title == "" {
		title = filepath.Base(info.Source)
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(info.Key, info.Source)),
		Length:  types.Microseconds(int64(info.Duration * 1e6)),
		Title:   title,
		Album:   info.Album,
	}
	if info.Artist != "" {
		meta.Artist = []string{info.Artist}
	}
	if art := findCover(p.fs, info.Source); art != "" {
		meta.ArtUrl = "file://" + art
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.r.volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	return p.r.setVolume(v)
}

func (p *playerAdapter) Position() (int64, error) {
	return p.r.position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return minRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return maxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, ok := p.r.active()
	return ok, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	_, ok := p.r.active()
	return ok, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	_, ok := p.r.active()
	return ok, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	if p.r.looping() {
		return types.LoopStatusTrack, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
// Playlist looping has no meaning for a single player and maps to track.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		return p.r.setLooping(false)
	case types.LoopStatusTrack, types.LoopStatusPlaylist:
		return p.r.setLooping(true)
	}
	return nil
}

func formatTrackID(key int, source string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", key, source)
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
