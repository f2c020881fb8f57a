package demo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/logging"
	"github.com/tessro/vinyl/internal/metrics"
)

var testAlbum = core.Album{
	ID:          "a1",
	Name:        "Test Pressing",
	URI:         "demo:album:a1",
	Artists:     []string{"The Testers"},
	TotalTracks: 3,
}

func newTestProvider() *Provider {
	return New(Options{Volume: 50, Logger: logging.Discard()})
}

func TestPlayStartsFirstTrack(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	if err := p.Play(ctx, testAlbum); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	s := p.State()
	if !s.IsPlaying {
		t.Error("IsPlaying = false after Play")
	}
	if s.Track == nil || s.Track.TrackNumber != 1 {
		t.Fatalf("Track = %+v, want track 1", s.Track)
	}
	if s.Position != 0 || s.Duration != DefaultTrackDuration {
		t.Errorf("Position/Duration = %v/%v, want 0/%v", s.Position, s.Duration, DefaultTrackDuration)
	}
	if s.Album == nil || s.Album.ID != "a1" {
		t.Errorf("Album = %+v, want a1", s.Album)
	}
	if s.Track.Source != core.SourceDemo {
		t.Errorf("Source = %q, want demo", s.Track.Source)
	}
	if s.Track.URI != "demo:album:a1:track:0" {
		t.Errorf("URI = %q", s.Track.URI)
	}
}

func TestAdvance(t *testing.T) {
	p := newTestProvider()
	_ = p.Play(context.Background(), testAlbum)

	for i := 0; i < 14; i++ {
		p.Advance(time.Second)
	}
	if s := p.State(); s.Position != 14*time.Second || s.Track.TrackNumber != 1 {
		t.Fatalf("after 14s: position %v track %d, want 14s track 1", s.Position, s.Track.TrackNumber)
	}

	p.Advance(time.Second)
	if s := p.State(); s.Position != 0 || s.Track.TrackNumber != 2 {
		t.Errorf("after 15s: position %v track %d, want 0 track 2", s.Position, s.Track.TrackNumber)
	}
}

func TestAdvanceWrapsAlbum(t *testing.T) {
	p := newTestProvider()
	_ = p.Play(context.Background(), testAlbum)

	for i := 0; i < 3; i++ {
		p.Advance(DefaultTrackDuration)
	}
	if s := p.State(); s.Track.TrackNumber != 1 || !s.IsPlaying {
		t.Errorf("after the last track: track %d playing %v, want track 1 playing", s.Track.TrackNumber, s.IsPlaying)
	}
}

func TestAdvanceWhilePausedOrEmpty(t *testing.T) {
	p := newTestProvider()
	if p.Advance(time.Second) {
		t.Error("Advance() without album reported movement")
	}
	if s := p.State(); s.Position != 0 || s.HasTrack() {
		t.Errorf("Advance() without album changed state: %+v", s)
	}

	_ = p.Play(context.Background(), testAlbum)
	_ = p.Pause(context.Background())
	if p.Advance(5 * time.Second) {
		t.Error("Advance() while paused reported movement")
	}
	if s := p.State(); s.Position != 0 {
		t.Errorf("Advance() while paused moved position to %v", s.Position)
	}
}

func TestResumeNeedsTrack(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()

	_ = p.Resume(ctx)
	if p.State().IsPlaying {
		t.Error("Resume() with nothing loaded should not play")
	}

	_ = p.Play(ctx, testAlbum)
	_ = p.Pause(ctx)
	_ = p.Resume(ctx)
	if !p.State().IsPlaying {
		t.Error("Resume() after pause should play")
	}
}

func TestNextWraps(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()
	_ = p.Play(ctx, testAlbum)
	p.Advance(5 * time.Second)

	_ = p.Next(ctx)
	if s := p.State(); s.Track.TrackNumber != 2 || s.Position != 0 {
		t.Errorf("Next(): track %d position %v, want track 2 at 0", s.Track.TrackNumber, s.Position)
	}

	_ = p.Next(ctx)
	_ = p.Next(ctx)
	if s := p.State(); s.Track.TrackNumber != 1 {
		t.Errorf("Next() past the end: track %d, want 1", s.Track.TrackNumber)
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name      string
		skip      int
		elapsed   time.Duration
		wantTrack int
	}{
		{"restart after three seconds", 1, 4 * time.Second, 2},
		{"go back within three seconds", 1, 2 * time.Second, 1},
		{"exactly three seconds goes back", 1, 3 * time.Second, 1},
		{"wrap from first to last", 0, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider()
			ctx := context.Background()
			_ = p.Play(ctx, testAlbum)
			for i := 0; i < tt.skip; i++ {
				_ = p.Next(ctx)
			}
			p.Advance(tt.elapsed)

			_ = p.Previous(ctx)
			s := p.State()
			if s.Track.TrackNumber != tt.wantTrack {
				t.Errorf("track = %d, want %d", s.Track.TrackNumber, tt.wantTrack)
			}
			if s.Position != 0 {
				t.Errorf("position = %v, want 0", s.Position)
			}
		})
	}
}

func TestTransportWithoutAlbum(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()
	_ = p.Next(ctx)
	_ = p.Previous(ctx)
	if s := p.State(); s.HasTrack() {
		t.Error("Next/Previous without an album should not load a track")
	}
}

func TestTogglePlayback(t *testing.T) {
	p := newTestProvider()
	ctx := context.Background()
	_ = p.Play(ctx, testAlbum)

	_ = p.TogglePlayback(ctx)
	if p.State().IsPlaying {
		t.Error("toggle while playing should pause")
	}
	_ = p.TogglePlayback(ctx)
	if !p.State().IsPlaying {
		t.Error("toggle while paused should resume")
	}
}

func TestSetVolume(t *testing.T) {
	p := newTestProvider()
	if p.Volume() != 50 {
		t.Errorf("Volume() = %d, want 50", p.Volume())
	}
	_ = p.SetVolume(context.Background(), 80)
	if p.Volume() != 80 || p.State().Volume != 80 {
		t.Errorf("Volume() = %d, want 80", p.Volume())
	}
	_ = p.SetVolume(context.Background(), 150)
	if p.Volume() != 100 {
		t.Errorf("Volume() = %d, want clamped to 100", p.Volume())
	}
}

func TestReadyAndDevice(t *testing.T) {
	p := newTestProvider()
	if !p.Ready() {
		t.Error("Ready() = false, want true")
	}
	if p.LastError() != "" {
		t.Errorf("LastError() = %q, want empty", p.LastError())
	}
	if !strings.HasPrefix(p.DeviceID(), "demo-") {
		t.Errorf("DeviceID() = %q, want demo- prefix", p.DeviceID())
	}
	if other := newTestProvider(); other.DeviceID() == p.DeviceID() {
		t.Error("device IDs should be unique per provider")
	}
}

func TestZeroTrackAlbum(t *testing.T) {
	p := newTestProvider()
	_ = p.Play(context.Background(), core.Album{ID: "empty"})
	_ = p.Next(context.Background())
	p.Advance(DefaultTrackDuration)
	if s := p.State(); s.Track.TrackNumber != 1 {
		t.Errorf("track = %d, want 1", s.Track.TrackNumber)
	}
}

func TestStart(t *testing.T) {
	p := New(Options{Tick: 5 * time.Millisecond, TrackDuration: time.Hour, Logger: logging.Discard()})
	_ = p.Play(context.Background(), testAlbum)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := p.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start() error = %v, want deadline exceeded", err)
	}
	if p.State().Position == 0 {
		t.Error("Start() did not advance the position")
	}
}

// polls reads the demo's poll counter from the registry.
func polls(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "vinyl_playback_polls_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "provider" && l.GetValue() == providerName {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStartCountsOnlyPlayingTicks(t *testing.T) {
	m := metrics.New()
	p := New(Options{Tick: 5 * time.Millisecond, TrackDuration: time.Hour, Logger: logging.Discard(), Metrics: m})

	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()
		_ = p.Start(ctx)
	}

	run()
	if got := polls(t, m); got != 0 {
		t.Errorf("polls with nothing loaded = %v, want 0", got)
	}

	_ = p.Play(context.Background(), testAlbum)
	_ = p.Pause(context.Background())
	run()
	if got := polls(t, m); got != 0 {
		t.Errorf("polls while paused = %v, want 0", got)
	}

	_ = p.Resume(context.Background())
	run()
	if got := polls(t, m); got == 0 {
		t.Error("no polls recorded while playing")
	}
}
