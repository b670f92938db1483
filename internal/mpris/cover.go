package mpris

import (
	"path"
	"strings"

	"github.com/spf13/afero"
)

// coverNames are looked up next to the source, first match wins.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// findCover returns the art file beside a local source, or "" for streams
// and directories without one.
func findCover(fs afero.Fs, source string) string {
	if source == "" || strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return ""
	}
	source = strings.TrimPrefix(source, "file://")
	dir := path.Dir(source)
	for _, name := range coverNames {
		p := path.Join(dir, name)
		if ok, err := afero.Exists(fs, p); err == nil && ok {
			return p
		}
	}
	return ""
}
