package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/sockets/sp.sock",
			expected: filepath.Join(home, "sockets", "sp.sock"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/run/user/1000/sp.sock",
			expected: "/run/user/1000/sp.sock",
		},
		{
			name:     "relative path unchanged",
			input:    "state/sp.db",
			expected: "state/sp.db",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}
	if !strings.HasSuffix(paths[0], filepath.Join("soundpool", "config.toml")) {
		t.Errorf("first config path = %q, want soundpool/config.toml under XDG config", paths[0])
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Explicit(t *testing.T) {
	path := writeConfig(t, `
socket = "/tmp/sp-test.sock"
category = "Ambient"
mix_with_others = false
progress_interval_ms = 2500

[audio]
sample_rate = 48000
volume_steps = 20

[http]
user_agent = "Radio/2"

[log]
level = "debug"
format = "json"
file = "stderr"

[mpris]
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SocketPath() != "/tmp/sp-test.sock" {
		t.Errorf("SocketPath() = %q", cfg.SocketPath())
	}
	if cfg.Category != "Ambient" || cfg.Mix() {
		t.Errorf("Category = %q, Mix() = %v", cfg.Category, cfg.Mix())
	}
	if got := cfg.ProgressInterval(); got != 2500*time.Millisecond {
		t.Errorf("ProgressInterval() = %v, want 2.5s", got)
	}
	audio := cfg.GetAudioConfig()
	if audio.SampleRate != 48000 || audio.VolumeSteps != 20 || audio.BufferMs != 100 {
		t.Errorf("GetAudioConfig() = %+v", audio)
	}
	if ua := cfg.GetHTTPConfig().UserAgent; ua != "Radio/2" {
		t.Errorf("UserAgent = %q", ua)
	}
	if lc := cfg.GetLogConfig(); lc.Level != "debug" || lc.Format != "json" || lc.File != "stderr" {
		t.Errorf("GetLogConfig() = %+v", lc)
	}
	if cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() = true, want false")
	}
}

func TestLoad_MissingExplicitFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit file succeeded")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "socket = [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("Load() of invalid TOML succeeded")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config

	if !cfg.Mix() {
		t.Error("Mix() default = false, want true")
	}
	if !cfg.MPRISEnabled() {
		t.Error("MPRISEnabled() default = false, want true")
	}
	if got := cfg.ProgressInterval(); got != 10*time.Second {
		t.Errorf("ProgressInterval() default = %v, want 10s", got)
	}
	if cfg.SocketPath() != DefaultSocketPath() {
		t.Errorf("SocketPath() = %q, want default", cfg.SocketPath())
	}

	audio := cfg.GetAudioConfig()
	if audio != (AudioConfig{SampleRate: 44100, BufferMs: 100, VolumeSteps: 15, ResampleQuality: 4}) {
		t.Errorf("GetAudioConfig() = %+v", audio)
	}
	http := cfg.GetHTTPConfig()
	if http.UserAgent != "Audioplayer" || http.TimeoutSeconds != 30 || http.MaxBytes != 64<<20 {
		t.Errorf("GetHTTPConfig() = %+v", http)
	}
	if lc := cfg.GetLogConfig(); lc != (LogConfig{Level: "info", Format: "text", File: "stderr"}) {
		t.Errorf("GetLogConfig() = %+v", lc)
	}
}

func TestGetAudioConfig_ClampsQuality(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 4},
		{1, 1},
		{6, 6},
		{9, 4},
	}
	for _, tt := range tests {
		cfg := Config{Audio: AudioConfig{ResampleQuality: tt.in}}
		if got := cfg.GetAudioConfig().ResampleQuality; got != tt.want {
			t.Errorf("ResampleQuality %d -> %d, want %d", tt.in, got, tt.want)
		}
	}
}
