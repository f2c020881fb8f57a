package core

import (
	"strings"
	"time"
)

// Source indicates the origin of a track.
type Source string

const (
	SourceSpotify Source = "spotify"
	SourceDemo    Source = "demo"
)

// Track represents a playable audio track.
type Track struct {
	ID          string        `json:"id"`
	URI         string        `json:"uri"`
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	Artists     []string      `json:"artists"`
	Album       string        `json:"album"`
	TrackNumber int           `json:"track_number"`
	Duration    time.Duration `json:"duration"`
	Source      Source        `json:"source"`
}

// Album represents an album in the user's collection.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	Artists     []string `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// ArtistLine returns the album artists joined for display.
func (a *Album) ArtistLine() string {
	if a == nil {
		return ""
	}
	return strings.Join(a.Artists, ", ")
}

// Year returns the release year, or an empty string if unknown.
func (a *Album) Year() string {
	if a == nil || len(a.ReleaseDate) < 4 {
		return ""
	}
	return a.ReleaseDate[:4]
}
