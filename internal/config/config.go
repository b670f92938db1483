package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "soundpool"

type Config struct {
	Socket        string `koanf:"socket"`          // unix socket path; empty means the XDG runtime dir
	Category      string `koanf:"category"`        // initial category when none is saved
	MixWithOthers *bool  `koanf:"mix_with_others"` // default: true
	ProgressMs    int    `koanf:"progress_interval_ms"`

	Audio AudioConfig `koanf:"audio"`
	HTTP  HTTPConfig  `koanf:"http"`
	Log   LogConfig   `koanf:"log"`
	State StateConfig `koanf:"state"`
	MPRIS MPRISConfig `koanf:"mpris"`
}

// AudioConfig holds output device settings.
type AudioConfig struct {
	SampleRate      int `koanf:"sample_rate"`      // default: 44100
	BufferMs        int `koanf:"buffer_ms"`        // default: 100
	VolumeSteps     int `koanf:"volume_steps"`     // system volume steps (default: 15)
	ResampleQuality int `koanf:"resample_quality"` // 1-6 (default: 4)
}

// HTTPConfig holds settings for streamed sources.
type HTTPConfig struct {
	UserAgent      string `koanf:"user_agent"`      // default: "Audioplayer"
	TimeoutSeconds int    `koanf:"timeout_seconds"` // default: 30
	MaxBytes       int64  `koanf:"max_bytes"`       // default: 64 MiB
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // "stderr", "auto" for the XDG state dir, or a path
}

// StateConfig holds the persistence settings.
type StateConfig struct {
	Path string `koanf:"path"` // empty means the XDG data dir
}

// MPRISConfig toggles desktop media controls.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// Load reads the config files in priority order (last wins). explicit, when
// set, is loaded last and must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		}
	}
	if explicit != "" {
		explicit = expandPath(explicit)
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", explicit, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Socket = expandPath(cfg.Socket)
	cfg.State.Path = expandPath(cfg.State.Path)
	if cfg.Log.File != "stderr" && cfg.Log.File != "auto" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/soundpool/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// SocketPath returns the bridge socket path.
func (c *Config) SocketPath() string {
	if c.Socket != "" {
		return c.Socket
	}
	return DefaultSocketPath()
}

// DefaultSocketPath is the socket used when none is configured.
func DefaultSocketPath() string {
	return filepath.Join(xdg.RuntimeDir, appName+".sock")
}

// Mix returns whether players mix with other audio.
func (c *Config) Mix() bool {
	return c.MixWithOthers == nil || *c.MixWithOthers
}

// ProgressInterval returns the progress cadence.
func (c *Config) ProgressInterval() time.Duration {
	if c.ProgressMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ProgressMs) * time.Millisecond
}

// GetAudioConfig returns the audio configuration with defaults applied.
func (c *Config) GetAudioConfig() AudioConfig {
	cfg := c.Audio
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.BufferMs <= 0 {
		cfg.BufferMs = 100
	}
	if cfg.VolumeSteps <= 0 {
		cfg.VolumeSteps = 15
	}
	if cfg.ResampleQuality < 1 || cfg.ResampleQuality > 6 {
		cfg.ResampleQuality = 4
	}
	return cfg
}

// GetHTTPConfig returns the stream settings with defaults applied.
func (c *Config) GetHTTPConfig() HTTPConfig {
	cfg := c.HTTP
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Audioplayer"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 64 << 20
	}
	return cfg
}

// GetLogConfig returns the logging settings with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.File == "" {
		cfg.File = "stderr"
	}
	return cfg
}

// MPRISEnabled reports whether media controls are exported.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}
