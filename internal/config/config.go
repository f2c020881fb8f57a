package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.vinylrc, $XDG_CONFIG_HOME/vinyl/config.toml, ~/.config/vinyl/config.toml
func Load() (*Config, error) {
	path := findConfigFile()
	if path == "" {
		return fromFile("")
	}
	return fromFile(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	return fromFile(path)
}

func fromFile(path string) (*Config, error) {
	// A .env next to the working directory may carry VINYL_* variables.
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	// Defaults that a zero value cannot express (mouse on) are seeded
	// before decoding so the file can still switch them off.
	cfg := &Config{}
	cfg.TUI.Mouse = Default().TUI.Mouse

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadDotEnv loads variables from path without overriding ones already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Path returns the config file in use, or the default location for a new one.
func Path() string {
	if p := findConfigFile(); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vinylrc"
	}
	return filepath.Join(home, ".vinylrc")
}

// Dir returns the directory for vinyl's state files (token, logs).
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "vinyl"), nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".vinylrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "vinyl", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := os.Getenv("VINYL_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("VINYL_SPOTIFY_REDIRECT_URI"); v != "" {
		cfg.Spotify.RedirectURI = v
	}
	if v := os.Getenv("VINYL_SPOTIFY_DEVICE"); v != "" {
		cfg.Spotify.Device = v
	}

	// Playback
	if v := os.Getenv("VINYL_PLAYBACK_MODE"); v != "" {
		cfg.Playback.Mode = v
	}
	if v := os.Getenv("VINYL_PLAYBACK_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.PollInterval = i
		}
	}

	// TUI
	if v := os.Getenv("VINYL_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("VINYL_TUI_FPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.FPS = i
		}
	}

	// Metrics
	if v := os.Getenv("VINYL_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}

	// Log
	if v := os.Getenv("VINYL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VINYL_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
