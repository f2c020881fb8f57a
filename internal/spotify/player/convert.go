package player

import (
	"time"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/spotify/client"
)

// convertState maps Spotify's player payload onto the core snapshot. A nil
// payload (HTTP 204) means nothing is playing.
func convertState(s *client.PlaybackState) core.PlaybackState {
	if s == nil {
		return core.PlaybackState{}
	}

	state := core.PlaybackState{
		IsPlaying: s.IsPlaying,
		Position:  time.Duration(s.ProgressMS) * time.Millisecond,
	}

	if s.Device.VolumePercent != nil {
		state.Volume = *s.Device.VolumePercent
	}
	if s.Device.ID != "" {
		state.Device = convertDevice(&s.Device)
	}

	if s.Item != nil {
		state.Track = convertTrack(s.Item)
		state.Duration = state.Track.Duration
		if s.Item.Album.ID != "" || s.Item.Album.URI != "" {
			state.Album = convertAlbum(&s.Item.Album)
		}
	}

	return state
}

// convertTrack converts a Spotify track to a core track.
func convertTrack(t *client.Track) *core.Track {
	if t == nil {
		return nil
	}

	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	artist := ""
	if len(artists) > 0 {
		artist = artists[0]
	}

	return &core.Track{
		ID:          t.ID,
		URI:         t.URI,
		Title:       t.Name,
		Artist:      artist,
		Artists:     artists,
		Album:       t.Album.Name,
		TrackNumber: t.TrackNumber,
		Duration:    time.Duration(t.DurationMS) * time.Millisecond,
		Source:      core.SourceSpotify,
	}
}

// convertAlbum converts the album embedded in a track.
func convertAlbum(a *client.Album) *core.Album {
	if a == nil {
		return nil
	}

	artists := make([]string, len(a.Artists))
	for i, ar := range a.Artists {
		artists[i] = ar.Name
	}

	var image string
	if len(a.Images) > 0 {
		image = a.Images[0].URL
	}

	return &core.Album{
		ID:          a.ID,
		Name:        a.Name,
		URI:         a.URI,
		Artists:     artists,
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		ImageURL:    image,
	}
}

// convertDevice converts a Spotify device to a core device.
func convertDevice(d *client.Device) *core.Device {
	if d == nil {
		return nil
	}

	deviceType := core.DeviceType(d.Type)
	switch d.Type {
	case "Computer":
		deviceType = core.DeviceTypeComputer
	case "Smartphone":
		deviceType = core.DeviceTypePhone
	case "Speaker":
		deviceType = core.DeviceTypeSpeaker
	case "TV":
		deviceType = core.DeviceTypeTV
	}

	return &core.Device{
		ID:       d.ID,
		Name:     d.Name,
		Type:     deviceType,
		IsActive: d.IsActive,
	}
}
