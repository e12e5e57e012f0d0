// Package config is the small TOML bootstrap layer: the handful of
// settings needed before the rewriting-language config (internal/lang) can
// even be located and compiled. Distinct from internal/lang's own engine
// configuration, which lives inside the compiled Setting itself.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefineSymbol is one `-D name=value` override applied before compiling the
// config file, the Go shape of the original's `.mayu0`...`.mayuN` argv
// triples.
type DefineSymbol struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

// IPCConfig holds the notifier socket's identity.
type IPCConfig struct {
	SocketSuffix string `toml:"socket_suffix"`
}

// CaptureConfig holds input-capture device selection.
type CaptureConfig struct {
	Device string `toml:"device"` // evdev path override, "" autodetects
}

// StatusConfig holds status-dashboard display settings.
type StatusConfig struct {
	Theme string `toml:"theme"`
}

// ExtensionConfig is one touchpad-helper (or other) subprocess the engine
// can load via &PlugIn.
type ExtensionConfig struct {
	Name       string   `toml:"name"`
	BinaryPath string   `toml:"binary_path"`
	Args       []string `toml:"args"`
	AutoStart  bool     `toml:"auto_start"`
}

// Config is the top-level bootstrap configuration.
type Config struct {
	ConfigFile string            `toml:"config_file"`
	Defines    []DefineSymbol    `toml:"define"`
	Debug      bool              `toml:"debug"`
	IPC        IPCConfig         `toml:"ipc"`
	Capture    CaptureConfig     `toml:"capture"`
	Status     StatusConfig      `toml:"status"`
	Extensions []ExtensionConfig `toml:"extension"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		ConfigFile: defaultConfigFilePath(),
		Debug:      false,
		IPC: IPCConfig{
			SocketSuffix: "",
		},
		Capture: CaptureConfig{
			Device: "",
		},
		Status: StatusConfig{
			Theme: "synthwave",
		},
		Extensions: nil,
	}
}

// defaultConfigFilePath returns ~/.config/yamy/yamy.mayu, the rewriting
// config internal/lang compiles at startup.
func defaultConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "yamy", "yamy.mayu")
}

// DefaultPath returns the default bootstrap config file path
// (~/.config/yamy/yamy.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "yamy", "yamy.toml")
}

// DefaultDataDir returns the default data directory (~/.local/share/yamy)
// for runtime state outside the config itself.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "yamy")
}

// Save writes the config as TOML to the given path, creating parent
// directories if needed. The write is atomic: data is written to a
// temporary file and renamed into place so a crash mid-write cannot
// corrupt the existing config.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".yamy-config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads the TOML config from path. If the file does not exist, it
// returns the default config without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	_, err = toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
