package sound

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestResolver_Resolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/sounds/ding.wav", []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.MkdirAll("/sounds/dir", 0o755); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(fs)

	tests := []struct {
		name    string
		locator string
		kind    SourceKind
		path    string
		missing bool
	}{
		{"http stream", "http://host/a.mp3", SourceStream, "http://host/a.mp3", false},
		{"https stream", "https://host/live", SourceStream, "https://host/live", false},
		{"local file", "/sounds/ding.wav", SourceFile, "/sounds/ding.wav", false},
		{"file url", "file:///sounds/ding.wav", SourceFile, "/sounds/ding.wav", false},
		{"unclean path", "/sounds/../sounds/ding.wav", SourceFile, "/sounds/ding.wav", false},
		{"missing", "/sounds/none.wav", 0, "", true},
		{"directory", "/sounds/dir", 0, "", true},
		{"empty", "", 0, "", true},
		{"other scheme", "ftp://host/a.mp3", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := r.Resolve(tt.locator, PrepareOptions{UserAgent: "ua"})
			if tt.missing {
				var rerr *ResourceError
				if !errors.As(err, &rerr) {
					t.Fatalf("Resolve(%q) error = %v, want *ResourceError", tt.locator, err)
				}
				if rerr.Code != -1 || rerr.Message != "resource not found" {
					t.Errorf("ResourceError = %+v", rerr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) = %v", tt.locator, err)
			}
			if src.Kind != tt.kind || src.Locator != tt.path {
				t.Errorf("Resolve(%q) = %+v, want kind %v path %q", tt.locator, src, tt.kind, tt.path)
			}
			if src.UserAgent != "ua" {
				t.Errorf("UserAgent = %q, want ua", src.UserAgent)
			}
		})
	}
}
