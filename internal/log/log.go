// Package log builds the process logger from the log config.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/llehouerou/soundpool/internal/config"
)

const (
	fileStderr = "stderr"
	fileAuto   = "auto"
)

// Dir returns the directory used for "auto" log files.
func Dir() string {
	return filepath.Join(xdg.StateHome, "soundpool")
}

// Setup creates a logger writing where cfg says. The returned closer closes
// the log file, if any.
func Setup(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	return setup(afero.NewOsFs(), cfg, Dir(), time.Now())
}

func setup(fs afero.Fs, cfg config.LogConfig, dir string, now time.Time) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, levelErr := logrus.ParseLevel(cfg.Level)
	if levelErr != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	var closer io.Closer = nopCloser{}
	switch cfg.File {
	case "", fileStderr:
		logger.SetOutput(os.Stderr)
	default:
		path := cfg.File
		if path == fileAuto {
			path = filepath.Join(dir, fmt.Sprintf("%s.log", now.Format("2006-01-02")))
		}
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	}

	if levelErr != nil && cfg.Level != "" {
		logger.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
