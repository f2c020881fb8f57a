package core

import "time"

// PlaybackState is the last known playback snapshot reported by a provider.
type PlaybackState struct {
	IsPlaying bool          `json:"is_playing"`
	Position  time.Duration `json:"position"`
	Duration  time.Duration `json:"duration"`
	Track     *Track        `json:"track"`
	Album     *Album        `json:"album"`
	Device    *Device       `json:"device"`
	Volume    int           `json:"volume"`
}

// HasTrack returns true if there is an active track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// TrackPercent returns progress through the current track as a percentage (0-100).
func (s *PlaybackState) TrackPercent() float64 {
	if s == nil || s.Track == nil || s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}
