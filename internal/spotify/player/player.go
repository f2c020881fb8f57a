// Package player drives Spotify Connect playback and keeps a polled
// snapshot of what is playing.
package player

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tessro/vinyl/internal/core"
	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/metrics"
	"github.com/tessro/vinyl/internal/spotify/client"
)

const (
	// DefaultPollInterval matches how often the Web Player SDK reports state.
	DefaultPollInterval = time.Second

	providerName = "spotify"
)

// api is the slice of the Spotify client the player drives.
type api interface {
	GetPlaybackState(ctx context.Context) (*client.PlaybackState, error)
	GetDevices(ctx context.Context) ([]client.Device, error)
	Play(ctx context.Context, deviceID string, opts *client.PlayOptions) error
	Pause(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
}

// Options configures a Player.
type Options struct {
	// PollInterval is how often playback state is refreshed.
	PollInterval time.Duration
	// Device is a device name or ID to prefer over the active device.
	Device string
	// Volume is the initial volume (0-100).
	Volume  int
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// Player implements core.Provider for Spotify Connect.
type Player struct {
	api      api
	interval time.Duration
	device   string
	logger   *logrus.Logger
	metrics  *metrics.Metrics

	mu        sync.RWMutex
	state     core.PlaybackState
	ready     bool
	deviceID  string
	volume    int
	lastErr   string
	cause     error
	pollError bool
}

// New creates a Spotify provider on top of a client.
func New(c api, opts Options) *Player {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Player{
		api:      c,
		interval: opts.PollInterval,
		device:   opts.Device,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		volume:   clampVolume(opts.Volume),
	}
}

// Start connects to a device and polls playback state until ctx is done.
func (p *Player) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.connect(ctx)
	p.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !p.Ready() {
				p.connect(ctx)
			}
			p.refresh(ctx)
		}
	}
}

// connect picks the target device and transfers playback to it once.
func (p *Player) connect(ctx context.Context) {
	devices, err := p.api.GetDevices(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.setError(err, true)
		}
		return
	}

	d := selectDevice(devices, p.device)
	if d == nil {
		p.setError(verrors.ErrNoDevices, true)
		return
	}

	log := p.logger.WithFields(logrus.Fields{
		"device_id":   d.ID,
		"device_name": d.Name,
	})

	if !d.IsActive {
		// Transfer failures are not fatal; the next play command names the
		// device explicitly anyway.
		if err := p.api.TransferPlayback(ctx, d.ID, false); err != nil {
			log.WithError(err).Debug("Transfer playback failed")
		}
	}
	log.Info("Connected to Spotify device")

	p.mu.Lock()
	p.deviceID = d.ID
	p.ready = true
	if p.pollError {
		p.lastErr = ""
		p.cause = nil
		p.pollError = false
	}
	p.mu.Unlock()
}

// selectDevice prefers the configured device (by ID or name), then the
// active device, then the first one listed.
func selectDevice(devices []client.Device, want string) *client.Device {
	if want != "" {
		for i := range devices {
			if devices[i].ID == want || strings.EqualFold(devices[i].Name, want) {
				return &devices[i]
			}
		}
	}
	for i := range devices {
		if devices[i].IsActive {
			return &devices[i]
		}
	}
	if len(devices) > 0 {
		return &devices[0]
	}
	return nil
}

// Sync connects if needed and refreshes the snapshot once. One-shot
// commands use it instead of Start.
func (p *Player) Sync(ctx context.Context) (core.PlaybackState, error) {
	if !p.Ready() {
		p.connect(ctx)
		if !p.Ready() {
			p.mu.RLock()
			defer p.mu.RUnlock()
			return p.state, p.cause
		}
	}
	p.refresh(ctx)

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state, p.cause
}

// refresh overwrites the snapshot with Spotify's current state.
func (p *Player) refresh(ctx context.Context) {
	state, err := p.api.GetPlaybackState(ctx)
	p.metrics.Poll(providerName, err)
	if err != nil {
		if ctx.Err() == nil {
			p.setError(err, true)
		}
		return
	}

	next := convertState(state)

	p.mu.Lock()
	p.state = next
	if p.pollError {
		p.lastErr = ""
		p.cause = nil
		p.pollError = false
	}
	p.mu.Unlock()
}

// Ready reports whether a playback device has been found.
func (p *Player) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ready
}

// State returns the last polled playback snapshot.
func (p *Player) State() core.PlaybackState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Volume returns the locally held volume.
func (p *Player) Volume() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// LastError returns the most recent failure as a display string.
func (p *Player) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// DeviceID returns the device commands are sent to.
func (p *Player) DeviceID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.deviceID
}

// Play starts the album from its first track on the target device.
func (p *Player) Play(ctx context.Context, album core.Album) error {
	if album.URI == "" {
		return p.command(ctx, "play", errors.New("album has no URI"))
	}
	p.logger.WithFields(logrus.Fields{
		"album":  album.Name,
		"artist": album.ArtistLine(),
	}).Info("Dropping the needle")

	err := p.api.Play(ctx, p.DeviceID(), &client.PlayOptions{
		ContextURI: album.URI,
		Offset:     &client.PlayOffset{Position: 0},
	})
	return p.command(ctx, "play", err)
}

// Pause pauses playback.
func (p *Player) Pause(ctx context.Context) error {
	return p.command(ctx, "pause", p.api.Pause(ctx, p.DeviceID()))
}

// Resume continues the current context.
func (p *Player) Resume(ctx context.Context) error {
	return p.command(ctx, "resume", p.api.Play(ctx, p.DeviceID(), nil))
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	return p.command(ctx, "next", p.api.Next(ctx, p.DeviceID()))
}

// Previous goes back a track.
func (p *Player) Previous(ctx context.Context) error {
	return p.command(ctx, "previous", p.api.Previous(ctx, p.DeviceID()))
}

// TogglePlayback pauses when playing and resumes otherwise.
func (p *Player) TogglePlayback(ctx context.Context) error {
	if p.State().IsPlaying {
		return p.Pause(ctx)
	}
	return p.Resume(ctx)
}

// SetVolume stores the volume and asks Spotify to apply it. Spotify
// rejects volume changes on some devices, so API failures are only logged.
func (p *Player) SetVolume(ctx context.Context, percent int) error {
	percent = clampVolume(percent)

	p.mu.Lock()
	p.volume = percent
	p.mu.Unlock()

	if err := p.api.SetVolume(ctx, percent, p.DeviceID()); err != nil {
		p.logger.WithError(err).WithField("volume", percent).Debug("Volume change ignored")
		p.metrics.Command("volume", err)
		return nil
	}
	p.metrics.Command("volume", nil)
	return nil
}

// command records the outcome of a transport call and refreshes state on
// success so the view does not wait a full poll interval.
func (p *Player) command(ctx context.Context, name string, err error) error {
	p.metrics.Command(name, err)
	if err != nil {
		p.logger.WithError(err).WithField("command", name).Warn("Playback command failed")
		p.setError(err, false)
		return err
	}

	p.mu.Lock()
	p.lastErr = ""
	p.cause = nil
	p.pollError = false
	p.mu.Unlock()

	p.refresh(ctx)
	return nil
}

func (p *Player) setError(err error, fromPoll bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// A poll failure never hides a transport failure the user caused.
	if fromPoll && p.lastErr != "" && !p.pollError {
		return
	}
	p.lastErr = verrors.Short(err)
	p.cause = err
	p.pollError = fromPoll
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

// Ensure Player implements core.Provider
var _ core.Provider = (*Player)(nil)
