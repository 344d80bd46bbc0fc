// Package config loads the CLI settings file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shaderpark/internal/logging"
	"shaderpark/internal/render"
)

// Settings is the full configuration surface of the shaderpark CLI.
// The watched directory and optional stem prefix are the only knobs the
// reload core itself needs; the rest configures the ambient services.
type Settings struct {
	Dir            string   `yaml:"dir"`
	Prefix         string   `yaml:"prefix"`
	DebounceMS     int      `yaml:"debounce-ms"`
	DrawMode       string   `yaml:"draw-mode"`
	Backend        string   `yaml:"backend"`
	Listen         string   `yaml:"listen"`
	LogLevel       string   `yaml:"log-level"`
	AllowedOrigins []string `yaml:"allowed-origins"`
}

const (
	BackendWGPU = "wgpu"
	BackendNull = "null"
)

func Defaults() Settings {
	return Settings{
		Dir:        "./shaders",
		DebounceMS: 500,
		DrawMode:   "triangles",
		Backend:    BackendWGPU,
		Listen:     "127.0.0.1:7474",
		LogLevel:   string(logging.LevelInfo),
	}
}

// Load reads a YAML settings file over the defaults. An empty path or
// a missing file yields the defaults; a malformed or unknown key fails.
func Load(path string) (Settings, error) {
	settings := Defaults()
	if strings.TrimSpace(path) == "" {
		return settings, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("config: read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(payload))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil {
		return Defaults(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return settings, nil
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Dir) == "" {
		return fmt.Errorf("config: dir is required")
	}
	if _, ok := render.ParseDrawMode(s.DrawMode); !ok {
		return fmt.Errorf("config: unknown draw-mode %q", s.DrawMode)
	}
	switch s.Backend {
	case BackendWGPU, BackendNull:
	default:
		return fmt.Errorf("config: unknown backend %q", s.Backend)
	}
	if _, ok := logging.ParseLevel(s.LogLevel); !ok {
		return fmt.Errorf("config: unknown log-level %q", s.LogLevel)
	}
	if s.DebounceMS < 0 {
		return fmt.Errorf("config: debounce-ms must not be negative")
	}
	return nil
}

func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s Settings) Mode() render.DrawMode {
	mode, _ := render.ParseDrawMode(s.DrawMode)
	return mode
}

func (s Settings) Level() logging.Level {
	level, _ := logging.ParseLevel(s.LogLevel)
	return level
}
