package player

import (
	"io"
	"path"
	"strings"

	"github.com/dhowden/tag"

	"github.com/llehouerou/soundpool/internal/sound"
)

// readInfo reads tags from r and rewinds it. Media without readable tags
// is titled after its locator.
func readInfo(locator string, r io.ReadSeeker) sound.TrackInfo {
	info := sound.TrackInfo{Title: baseName(locator)}
	m, err := tag.ReadFrom(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return info
	}
	if err != nil {
		return info
	}
	if t := m.Title(); t != "" {
		info.Title = t
	}
	info.Artist = m.Artist()
	if info.Artist == "" {
		info.Artist = m.AlbumArtist()
	}
	info.Album = m.Album()
	return info
}

func baseName(locator string) string {
	locator = strings.SplitN(locator, "?", 2)[0]
	return path.Base(strings.ReplaceAll(locator, "\\", "/"))
}
