package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PollInterval != 10*time.Millisecond {
		t.Errorf("Expected 10ms poll interval, got %v", cfg.PollInterval)
	}
	if cfg.Pointer.DeadZone != 0.1 || cfg.Pointer.Base != 1.0 || cfg.Pointer.Accel != 24.0 {
		t.Errorf("unexpected pointer curve %+v", cfg.Pointer)
	}
	if cfg.Scroll.Base != 0 || cfg.Scroll.Accel != 1.02 {
		t.Errorf("unexpected scroll curve %+v", cfg.Scroll)
	}
	if cfg.Nav.Threshold != 0.5 {
		t.Errorf("Expected nav threshold 0.5, got %v", cfg.Nav.Threshold)
	}
	if len(cfg.Buttons.Toggle) != 2 || cfg.Buttons.Toggle[0] != "start" || cfg.Buttons.Toggle[1] != "select" {
		t.Errorf("unexpected toggle combo %v", cfg.Buttons.Toggle)
	}
	if cfg.Overlay.Addr != "127.0.0.1:17321" {
		t.Errorf("unexpected overlay address %s", cfg.Overlay.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Expected missing file to be ignored, got %v", err)
	}
	if m.Get().Focus.Settle != 10*time.Millisecond {
		t.Errorf("Expected default settle, got %v", m.Get().Focus.Settle)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("poll_interval: 5ms\npointer:\n  accel: 12\nbuttons:\n  toggle: [home, start]\n  left_click: south\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PADKEY_NAV_THRESHOLD", "0.7")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := m.Get()

	if cfg.PollInterval != 5*time.Millisecond {
		t.Errorf("Expected 5ms, got %v", cfg.PollInterval)
	}
	if cfg.Pointer.Accel != 12 || cfg.Pointer.Base != 1.0 {
		t.Errorf("Expected file value merged with defaults, got %+v", cfg.Pointer)
	}
	if cfg.Buttons.LeftClick != "south" || cfg.Buttons.RightClick != "lt" {
		t.Errorf("unexpected click bindings %+v", cfg.Buttons)
	}
	if len(cfg.Buttons.Toggle) != 2 || cfg.Buttons.Toggle[0] != "home" {
		t.Errorf("unexpected toggle %v", cfg.Buttons.Toggle)
	}
	if cfg.Nav.Threshold != 0.7 {
		t.Errorf("Expected env override 0.7, got %v", cfg.Nav.Threshold)
	}
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("pointer: [not, a, map\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestFlagsOverride(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("dry-run", false, "")
	flags.String("overlay-addr", "", "")
	if err := flags.Parse([]string{"--dry-run", "--overlay-addr=127.0.0.1:9000"}); err != nil {
		t.Fatal(err)
	}
	if err := m.BindFlags(flags); err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if !cfg.DryRun {
		t.Error("Expected --dry-run to apply")
	}
	if cfg.Overlay.Addr != "127.0.0.1:9000" {
		t.Errorf("Expected flag address, got %s", cfg.Overlay.Addr)
	}
}

func TestUnsetFlagKeepsDefault(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("overlay-addr", "", "")
	if err := m.BindFlags(flags); err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.Get().Overlay.Addr != "127.0.0.1:17321" {
		t.Errorf("Expected default address, got %s", m.Get().Overlay.Addr)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	m2, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m2.Load(); err != nil {
		t.Fatal(err)
	}
	if m2.Get().Scroll.Accel != 1.02 {
		t.Errorf("Expected saved scroll accel, got %v", m2.Get().Scroll.Accel)
	}
}
