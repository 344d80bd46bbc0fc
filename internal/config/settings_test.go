package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"shaderpark/internal/render"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(settings, Defaults()) {
		t.Fatalf("expected defaults, got %+v", settings)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderpark.yaml")
	payload := "dir: /srv/shaders\nprefix: unlit\ndebounce-ms: 250\ndraw-mode: lines\nbackend: \"null\"\n"
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Dir != "/srv/shaders" || settings.Prefix != "unlit" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if settings.Debounce() != 250*time.Millisecond {
		t.Fatalf("unexpected debounce: %v", settings.Debounce())
	}
	if settings.Mode() != render.DrawLines {
		t.Fatalf("unexpected draw mode: %v", settings.Mode())
	}
	// Untouched keys keep their defaults.
	if settings.Listen != Defaults().Listen {
		t.Fatalf("listen default lost: %q", settings.Listen)
	}
	if err := settings.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderpark.yaml")
	if err := os.WriteFile(path, []byte("watch-dir: /srv\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	settings := Defaults()
	if err := settings.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	bad := settings
	bad.Dir = " "
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for empty dir")
	}

	bad = settings
	bad.DrawMode = "fans"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown draw mode")
	}

	bad = settings
	bad.Backend = "vulkan"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	bad = settings
	bad.DebounceMS = -1
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for negative debounce")
	}
}
