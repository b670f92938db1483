package mpris

import (
	"testing"

	"github.com/spf13/afero"
)

func TestFindCover(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		source string
		want   string
	}{
		{name: "cover next to track", files: []string{"/sfx/cover.jpg"}, source: "/sfx/chime.wav", want: "/sfx/cover.jpg"},
		{name: "no art", source: "/sfx/chime.wav", want: ""},
		{name: "cover beats folder", files: []string{"/sfx/folder.jpg", "/sfx/cover.jpg"}, source: "/sfx/chime.wav", want: "/sfx/cover.jpg"},
		{name: "front as last resort", files: []string{"/sfx/front.png"}, source: "/sfx/chime.wav", want: "/sfx/front.png"},
		{name: "file url", files: []string{"/sfx/cover.png"}, source: "file:///sfx/chime.wav", want: "/sfx/cover.png"},
		{name: "other directory", files: []string{"/other/cover.jpg"}, source: "/sfx/chime.wav", want: ""},
		{name: "stream", files: []string{"/cover.jpg"}, source: "https://radio.example/stream.mp3", want: ""},
		{name: "empty source", files: []string{"/cover.jpg"}, source: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, f := range tt.files {
				if err := afero.WriteFile(fs, f, []byte("fake"), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			if got := findCover(fs, tt.source); got != tt.want {
				t.Errorf("findCover(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}
