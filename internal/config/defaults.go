package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURI: "http://127.0.0.1:8888/callback",
		},
		Playback: PlaybackConfig{
			Mode:              ModeAuto,
			PollInterval:      1000,
			Volume:            50,
			DemoTrackDuration: 15000,
		},
		TUI: TUIConfig{
			Theme: "auto",
			FPS:   30,
			Mouse: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Spotify
	if c.Spotify.RedirectURI == "" {
		c.Spotify.RedirectURI = d.Spotify.RedirectURI
	}

	// Playback
	if c.Playback.Mode == "" {
		c.Playback.Mode = d.Playback.Mode
	}
	if c.Playback.PollInterval == 0 {
		c.Playback.PollInterval = d.Playback.PollInterval
	}
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.DemoTrackDuration == 0 {
		c.Playback.DemoTrackDuration = d.Playback.DemoTrackDuration
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.FPS == 0 {
		c.TUI.FPS = d.TUI.FPS
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
