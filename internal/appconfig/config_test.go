package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Debug {
		t.Error("expected debug off by default")
	}
	if cfg.Capture.Device != "" {
		t.Errorf("expected empty device override, got %s", cfg.Capture.Device)
	}
	if cfg.IPC.SocketSuffix != "" {
		t.Errorf("expected empty socket suffix, got %s", cfg.IPC.SocketSuffix)
	}
	if cfg.Status.Theme != "synthwave" {
		t.Errorf("expected theme synthwave, got %s", cfg.Status.Theme)
	}
	if len(cfg.Extensions) != 0 {
		t.Errorf("expected no extensions by default, got %d", len(cfg.Extensions))
	}
	if !strings.HasSuffix(cfg.ConfigFile, filepath.Join(".config", "yamy", "yamy.mayu")) {
		t.Errorf("expected default config file under ~/.config/yamy, got %s", cfg.ConfigFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Status.Theme != "synthwave" {
		t.Errorf("expected default theme, got %s", cfg.Status.Theme)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
config_file = "/etc/yamy/custom.mayu"
debug = true

[[define]]
name = "LAYOUT"
value = "colemak"

[ipc]
socket_suffix = "dev"

[capture]
device = "/dev/input/event7"

[status]
theme = "gruvbox"

[[extension]]
name = "touchpad"
binary_path = "/usr/local/bin/yamy-touchpad"
args = ["--quiet"]
auto_start = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ConfigFile != "/etc/yamy/custom.mayu" {
		t.Errorf("expected custom config file, got %s", cfg.ConfigFile)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
	if len(cfg.Defines) != 1 || cfg.Defines[0].Name != "LAYOUT" || cfg.Defines[0].Value != "colemak" {
		t.Errorf("expected one define LAYOUT=colemak, got %+v", cfg.Defines)
	}
	if cfg.IPC.SocketSuffix != "dev" {
		t.Errorf("expected socket suffix dev, got %s", cfg.IPC.SocketSuffix)
	}
	if cfg.Capture.Device != "/dev/input/event7" {
		t.Errorf("expected device override, got %s", cfg.Capture.Device)
	}
	if cfg.Status.Theme != "gruvbox" {
		t.Errorf("expected theme gruvbox, got %s", cfg.Status.Theme)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0].Name != "touchpad" {
		t.Fatalf("expected one extension named touchpad, got %+v", cfg.Extensions)
	}
	if cfg.Extensions[0].BinaryPath != "/usr/local/bin/yamy-touchpad" {
		t.Errorf("expected extension binary path, got %s", cfg.Extensions[0].BinaryPath)
	}
	if !cfg.Extensions[0].AutoStart {
		t.Error("expected extension auto_start true")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Debug = true
	cfg.Status.Theme = "dracula"
	cfg.Extensions = []ExtensionConfig{{Name: "touchpad", BinaryPath: "/bin/true", AutoStart: false}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}

	if !loaded.Debug {
		t.Error("expected debug preserved")
	}
	if loaded.Status.Theme != "dracula" {
		t.Errorf("expected theme dracula, got %s", loaded.Status.Theme)
	}
	if len(loaded.Extensions) != 1 || loaded.Extensions[0].Name != "touchpad" {
		t.Errorf("expected extension preserved, got %+v", loaded.Extensions)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir", "config.toml")

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist at %s: %v", path, err)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
debug = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Debug {
		t.Error("expected debug true")
	}
	// Non-overridden values should remain defaults.
	if cfg.Status.Theme != "synthwave" {
		t.Errorf("expected default theme preserved, got %s", cfg.Status.Theme)
	}
	if cfg.IPC.SocketSuffix != "" {
		t.Errorf("expected default socket suffix preserved, got %s", cfg.IPC.SocketSuffix)
	}
}
