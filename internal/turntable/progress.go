// Package turntable maps playback state onto the turntable's moving parts:
// album progress, tonearm angle and record rotation.
package turntable

import (
	"time"

	"github.com/tessro/vinyl/internal/core"
)

// AlbumProgress returns how far playback has advanced through the whole
// album, from 0 at the first groove to 1 at the run-out.
//
// It returns 0 when there is no track, no album, an album without tracks, or
// a track without a duration. The result is not clamped: a stale position
// past the end of the track overshoots proportionally.
func AlbumProgress(s core.PlaybackState) float64 {
	if s.Track == nil || s.Album == nil || s.Album.TotalTracks == 0 || s.Duration == 0 {
		return 0
	}

	completed := float64(s.Track.TrackNumber - 1)
	current := float64(s.Position) / float64(s.Duration)
	return (completed + current) / float64(s.Album.TotalTracks)
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RevolutionPeriod is one turn of the platter at 33⅓ RPM.
const RevolutionPeriod = 1800 * time.Millisecond

// RecordAngle returns the platter rotation in degrees [0, 360) after spinning
// for elapsed.
func RecordAngle(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	turns := elapsed % RevolutionPeriod
	return float64(turns) / float64(RevolutionPeriod) * 360
}
