package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/demo"
	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/metrics"
	"github.com/tessro/vinyl/internal/spotify/auth"
	"github.com/tessro/vinyl/internal/spotify/client"
	spotifylib "github.com/tessro/vinyl/internal/spotify/library"
	"github.com/tessro/vinyl/internal/spotify/player"
)

// authConfig builds the OAuth settings from the loaded config.
func authConfig() *auth.Config {
	c := auth.NewConfig(cfg.Spotify.ClientID)
	if cfg.Spotify.RedirectURI != "" {
		c.RedirectURI = cfg.Spotify.RedirectURI
	}
	return c
}

// newSpotifyClient returns a client with the stored token loaded.
func newSpotifyClient() (*client.Client, error) {
	if cfg.Spotify.ClientID == "" {
		return nil, verrors.ErrNoClientID
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token storage: %w", err)
	}

	c := client.New(authConfig(), storage)
	c.SetLogger(logger)
	if err := c.LoadToken(); err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if !c.HasToken() {
		return nil, verrors.ErrNotAuthenticated
	}
	return c, nil
}

// backend is a playback provider paired with the album source it plays from.
type backend struct {
	name     string
	demo     bool
	provider core.Provider
	albums   core.AlbumSource
	// player is set for Spotify so commands can force a state refresh.
	player *player.Player
}

// newBackend picks the demo provider or Spotify from config and flags.
func newBackend(forceDemo bool, m *metrics.Metrics) (*backend, error) {
	if forceDemo || cfg.DemoMode() {
		p := demo.New(demo.Options{
			TrackDuration: time.Duration(cfg.Playback.DemoTrackDuration) * time.Millisecond,
			Volume:        cfg.Playback.Volume,
			Logger:        logger,
			Metrics:       m,
		})
		return &backend{
			name:     "demo",
			demo:     true,
			provider: p,
			albums:   demo.NewCrate(demo.Albums...),
		}, nil
	}

	c, err := newSpotifyClient()
	if err != nil {
		return nil, err
	}
	p := player.New(c, player.Options{
		PollInterval: time.Duration(cfg.Playback.PollInterval) * time.Millisecond,
		Device:       cfg.Spotify.Device,
		Volume:       cfg.Playback.Volume,
		Logger:       logger,
		Metrics:      m,
	})
	return &backend{
		name:     "spotify",
		provider: p,
		albums:   spotifylib.New(c, logger),
		player:   p,
	}, nil
}

// errDemoPlayback is returned by one-shot playback commands in demo mode:
// demo playback only lives as long as the turntable.
var errDemoPlayback = verrors.WithSuggestion(
	errors.New("demo playback only runs inside the turntable"),
	"Run 'vinyl --demo', or set spotify.client_id to control Spotify",
)

// syncPlayer connects a Spotify player and fetches the current state once.
func syncPlayer(ctx context.Context) (*player.Player, core.PlaybackState, error) {
	if cfg.DemoMode() {
		return nil, core.PlaybackState{}, errDemoPlayback
	}

	c, err := newSpotifyClient()
	if err != nil {
		return nil, core.PlaybackState{}, err
	}
	p := player.New(c, player.Options{
		Device: cfg.Spotify.Device,
		Volume: cfg.Playback.Volume,
		Logger: logger,
	})
	state, err := p.Sync(ctx)
	if err != nil {
		return nil, state, err
	}
	return p, state, nil
}
