package sound

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PrepareOptions tune how a source is loaded.
type PrepareOptions struct {
	UserAgent string            // overrides the backend default for streams
	Headers   map[string]string // extra HTTP request headers for streams
}

// Resolver turns host locators into sources.
type Resolver struct {
	fs afero.Fs
}

// NewResolver creates a resolver that checks local files on fs.
// A nil fs means the OS filesystem.
func NewResolver(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{fs: fs}
}

// Resolve classifies locator. HTTP(S) URLs are streams; anything else must
// be an existing regular file. Unresolvable locators yield a ResourceError.
func (r *Resolver) Resolve(locator string, opts PrepareOptions) (Source, error) {
	src := Source{UserAgent: opts.UserAgent, Headers: opts.Headers}

	if isHTTP(locator) {
		src.Kind = SourceStream
		src.Locator = locator
		return src, nil
	}

	path := strings.TrimPrefix(locator, "file://")
	if path == "" {
		return Source{}, newResourceNotFound(locator)
	}
	info, err := r.fs.Stat(path)
	if err != nil || info.IsDir() {
		return Source{}, newResourceNotFound(locator)
	}
	src.Kind = SourceFile
	src.Locator = filepath.Clean(path)
	return src, nil
}

func isHTTP(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
