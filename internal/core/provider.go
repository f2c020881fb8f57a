package core

import "context"

// Provider is the playback capability the turntable depends on. The live
// Spotify provider and the demo provider both satisfy it.
type Provider interface {
	// Start runs the provider's periodic loop until ctx is cancelled.
	Start(ctx context.Context) error

	// State queries
	Ready() bool
	State() PlaybackState
	Volume() int
	LastError() string

	// Transport
	Play(ctx context.Context, album Album) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	SetVolume(ctx context.Context, percent int) error
	TogglePlayback(ctx context.Context) error
}

// AlbumPage is one page of the user's album collection.
type AlbumPage struct {
	Albums  []Album
	Offset  int
	Total   int
	HasMore bool
}

// AlbumSource lists the albums shown in the crate.
type AlbumSource interface {
	SavedAlbums(ctx context.Context, offset, limit int) (*AlbumPage, error)
}
