package config

// Config is the root configuration structure.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Playback PlaybackConfig `toml:"playback"`
	TUI      TUIConfig      `toml:"tui"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Log      LogConfig      `toml:"log"`
}

// SpotifyConfig holds Spotify API settings.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
	Device      string `toml:"device"`
}

// Playback modes.
const (
	ModeAuto = "auto"
	ModeLive = "live"
	ModeDemo = "demo"
)

// PlaybackConfig holds playback provider settings.
type PlaybackConfig struct {
	Mode              string `toml:"mode"`
	PollInterval      int    `toml:"poll_interval"`
	Volume            int    `toml:"volume"`
	DemoTrackDuration int    `toml:"demo_track_duration"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme string `toml:"theme"`
	FPS   int    `toml:"fps"`
	Mouse bool   `toml:"mouse"`
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DemoMode reports whether the demo provider should be used.
// In auto mode a missing client ID selects the demo.
func (c *Config) DemoMode() bool {
	switch c.Playback.Mode {
	case ModeDemo:
		return true
	case ModeLive:
		return false
	default:
		return c.Spotify.ClientID == ""
	}
}
