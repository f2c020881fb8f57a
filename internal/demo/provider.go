// Package demo provides a synthetic playback provider and album crate so
// vinyl can run without Spotify credentials.
package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/metrics"
)

const (
	// DefaultTrackDuration is short so a whole side goes by in a minute or two.
	DefaultTrackDuration = 15 * time.Second

	// DefaultTick is how often the simulated position advances.
	DefaultTick = time.Second

	// restartThreshold is how far into a track Previous restarts it instead
	// of going back.
	restartThreshold = 3 * time.Second

	providerName = "demo"
)

// Options configures a demo Provider.
type Options struct {
	TrackDuration time.Duration
	Tick          time.Duration
	Volume        int
	Logger        *logrus.Logger
	Metrics       *metrics.Metrics
}

// Provider simulates playback of mock albums with fixed-length tracks.
type Provider struct {
	trackDuration time.Duration
	tick          time.Duration
	device        core.Device
	logger        *logrus.Logger
	metrics       *metrics.Metrics

	mu       sync.RWMutex
	album    *core.Album
	index    int
	position time.Duration
	playing  bool
	volume   int
}

// New creates a demo provider.
func New(opts Options) *Provider {
	if opts.TrackDuration <= 0 {
		opts.TrackDuration = DefaultTrackDuration
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Provider{
		trackDuration: opts.TrackDuration,
		tick:          opts.Tick,
		device: core.Device{
			ID:       "demo-" + uuid.NewString(),
			Name:     "Demo Turntable",
			Type:     core.DeviceTypeVirtual,
			IsActive: true,
		},
		logger:  opts.Logger,
		metrics: opts.Metrics,
		volume:  clampVolume(opts.Volume),
	}
}

// Start advances the simulated position every tick until ctx is done.
func (p *Provider) Start(ctx context.Context) error {
	p.logger.WithField("device_id", p.device.ID).Info("Demo turntable ready")

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Idle ticks are not polls: the clock only runs while playing.
			if p.Advance(p.tick) {
				p.metrics.Poll(providerName, nil)
			}
		}
	}
}

// Advance moves the play position forward by d while playing and reports
// whether it moved. Reaching the end of a track starts the next one,
// wrapping to the first after the last.
func (p *Provider) Advance(d time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing || p.album == nil {
		return false
	}

	p.position += d
	if p.position >= p.trackDuration {
		p.index = (p.index + 1) % trackCount(p.album)
		p.position = 0
	}
	return true
}

// Ready is always true; there is no device to wait for.
func (p *Provider) Ready() bool { return true }

// LastError is always empty; nothing in the demo can fail.
func (p *Provider) LastError() string { return "" }

// DeviceID returns the synthetic device ID.
func (p *Provider) DeviceID() string { return p.device.ID }

// State returns the simulated playback snapshot.
func (p *Provider) State() core.PlaybackState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	device := p.device
	state := core.PlaybackState{
		IsPlaying: p.playing,
		Position:  p.position,
		Duration:  p.trackDuration,
		Device:    &device,
		Volume:    p.volume,
	}
	if p.album != nil {
		album := *p.album
		state.Album = &album
		state.Track = mockTrack(&album, p.index, p.trackDuration)
	}
	return state
}

// Volume returns the stored volume.
func (p *Provider) Volume() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// Play loads album and starts its first track.
func (p *Provider) Play(ctx context.Context, album core.Album) error {
	p.mu.Lock()
	p.album = &album
	p.index = 0
	p.position = 0
	p.playing = true
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"album":  album.Name,
		"artist": album.ArtistLine(),
	}).Info("Dropping the needle")
	p.metrics.Command("play", nil)
	return nil
}

// Pause stops the position from advancing.
func (p *Provider) Pause(ctx context.Context) error {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
	p.metrics.Command("pause", nil)
	return nil
}

// Resume continues playback if a track is loaded.
func (p *Provider) Resume(ctx context.Context) error {
	p.mu.Lock()
	if p.album != nil {
		p.playing = true
	}
	p.mu.Unlock()
	p.metrics.Command("resume", nil)
	return nil
}

// Next moves to the following track, wrapping after the last.
func (p *Provider) Next(ctx context.Context) error {
	p.mu.Lock()
	if p.album != nil {
		p.index = (p.index + 1) % trackCount(p.album)
		p.position = 0
	}
	p.mu.Unlock()
	p.metrics.Command("next", nil)
	return nil
}

// Previous restarts the track when more than three seconds in, otherwise
// moves back one track, wrapping from the first to the last.
func (p *Provider) Previous(ctx context.Context) error {
	p.mu.Lock()
	if p.album != nil {
		if p.position > restartThreshold {
			p.position = 0
		} else {
			n := trackCount(p.album)
			p.index = (p.index - 1 + n) % n
			p.position = 0
		}
	}
	p.mu.Unlock()
	p.metrics.Command("previous", nil)
	return nil
}

// SetVolume stores the volume.
func (p *Provider) SetVolume(ctx context.Context, percent int) error {
	p.mu.Lock()
	p.volume = clampVolume(percent)
	p.mu.Unlock()
	p.metrics.Command("volume", nil)
	return nil
}

// TogglePlayback pauses when playing and resumes otherwise.
func (p *Provider) TogglePlayback(ctx context.Context) error {
	p.mu.RLock()
	playing := p.playing
	p.mu.RUnlock()

	if playing {
		return p.Pause(ctx)
	}
	return p.Resume(ctx)
}

func trackCount(a *core.Album) int {
	if a.TotalTracks < 1 {
		return 1
	}
	return a.TotalTracks
}

func mockTrack(album *core.Album, index int, d time.Duration) *core.Track {
	artist := ""
	if len(album.Artists) > 0 {
		artist = album.Artists[0]
	}
	return &core.Track{
		ID:          fmt.Sprintf("%s-track-%d", album.ID, index),
		URI:         fmt.Sprintf("%s:track:%d", album.URI, index),
		Title:       trackTitles[index%len(trackTitles)],
		Artist:      artist,
		Artists:     album.Artists,
		Album:       album.Name,
		TrackNumber: index + 1,
		Duration:    d,
		Source:      core.SourceDemo,
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Ensure Provider implements core.Provider
var _ core.Provider = (*Provider)(nil)
