// Package tail turns successive playback snapshots into discrete events.
package tail

import (
	"context"
	"time"

	"github.com/tessro/vinyl/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventAlbumChange
	EventPause
	EventResume
	EventVolumeChange
	EventDeviceChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// StateSource is anything with a current playback snapshot.
type StateSource interface {
	State() core.PlaybackState
}

// Watcher samples a provider's state and emits events for the differences.
type Watcher struct {
	source   StateSource
	interval time.Duration
	events   chan Event
}

// NewWatcher creates a new state watcher.
func NewWatcher(source StateSource, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
	}
}

// Events returns the channel of playback events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start samples state until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *core.PlaybackState

	for {
		curr := w.source.State()
		for _, e := range Diff(prev, &curr) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = &curr

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Diff compares two snapshots and returns the events between them.
func Diff(prev, curr *core.PlaybackState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First sample - no previous state
	if prev == nil {
		if curr.HasTrack() {
			if curr.Album != nil {
				add(EventAlbumChange)
			}
			add(EventTrackChange)
		}
		return events
	}

	if albumChanged(prev, curr) && curr.Album != nil {
		add(EventAlbumChange)
	}

	if trackChanged(prev, curr) {
		eventType := EventTrackChange

		// Check if it was a completion vs skip
		if prev.HasTrack() && wasCompleted(prev) {
			eventType = EventTrackComplete
		} else if prev.HasTrack() && wasSkipped(prev) {
			eventType = EventTrackSkip
		}
		add(eventType)

		// The new track still deserves its own announcement.
		if eventType != EventTrackChange && curr.HasTrack() {
			add(EventTrackChange)
		}
	}

	if prev.IsPlaying && !curr.IsPlaying {
		add(EventPause)
	} else if !prev.IsPlaying && curr.IsPlaying {
		add(EventResume)
	}

	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}

	if deviceChanged(prev, curr) {
		add(EventDeviceChange)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.URI != curr.Track.URI
}

// albumChanged returns true if a different album is on the platter.
func albumChanged(prev, curr *core.PlaybackState) bool {
	if prev.Album == nil && curr.Album == nil {
		return false
	}
	if prev.Album == nil || curr.Album == nil {
		return true
	}
	return prev.Album.URI != curr.Album.URI
}

// wasCompleted returns true if the track likely played to the end. Demo
// tracks and short polls can miss the last second, hence the margin.
func wasCompleted(state *core.PlaybackState) bool {
	if state.Duration == 0 {
		return false
	}
	return state.Duration-state.Position <= 2*time.Second ||
		float64(state.Position) >= float64(state.Duration)*0.95
}

// wasSkipped returns true if the track was likely skipped.
func wasSkipped(state *core.PlaybackState) bool {
	return !wasCompleted(state)
}

// deviceChanged returns true if the device changed.
func deviceChanged(prev, curr *core.PlaybackState) bool {
	if prev.Device == nil && curr.Device == nil {
		return false
	}
	if prev.Device == nil || curr.Device == nil {
		return true
	}
	return prev.Device.ID != curr.Device.ID
}
