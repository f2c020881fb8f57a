// Package library reads the user's saved albums through github.com/zmb3/spotify.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"github.com/tessro/vinyl/internal/core"
)

// PageSize is the largest page Spotify serves for /me/albums.
const PageSize = 50

// albumPager is the part of *spotify.Client the library needs.
type albumPager interface {
	CurrentUsersAlbumsOpt(opt *spotify.Options) (*spotify.SavedAlbumPage, error)
}

// TokenSourcer provides the OAuth token used for library requests.
type TokenSourcer interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// Library is a core.AlbumSource backed by the Spotify Web API.
type Library struct {
	tokens TokenSourcer
	logger *logrus.Logger
	// newPager is swapped in tests.
	newPager func(ctx context.Context) albumPager
}

// New creates a Library authorised through tokens.
func New(tokens TokenSourcer, logger *logrus.Logger) *Library {
	l := &Library{tokens: tokens, logger: logger}
	l.newPager = l.spotifyPager
	return l
}

func (l *Library) spotifyPager(ctx context.Context) albumPager {
	c := spotify.NewClient(oauth2.NewClient(ctx, l.tokens.TokenSource(ctx)))
	c.AutoRetry = true
	return &c
}

// SavedAlbums returns one page of the user's saved albums.
func (l *Library) SavedAlbums(ctx context.Context, offset, limit int) (*core.AlbumPage, error) {
	if limit <= 0 || limit > PageSize {
		limit = PageSize
	}
	if offset < 0 {
		offset = 0
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := l.newPager(ctx).CurrentUsersAlbumsOpt(&spotify.Options{
		Limit:  &limit,
		Offset: &offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch saved albums: %w", err)
	}

	albums := make([]core.Album, 0, len(page.Albums))
	for _, sa := range page.Albums {
		albums = append(albums, convertAlbum(sa.FullAlbum))
	}

	if l.logger != nil {
		l.logger.WithFields(logrus.Fields{
			"offset":   offset,
			"count":    len(albums),
			"total":    page.Total,
			"duration": time.Since(start),
		}).Debug("Fetched saved albums")
	}

	return &core.AlbumPage{
		Albums:  albums,
		Offset:  offset,
		Total:   page.Total,
		HasMore: page.Next != "",
	}, nil
}

func convertAlbum(a spotify.FullAlbum) core.Album {
	artists := make([]string, 0, len(a.Artists))
	for _, ar := range a.Artists {
		artists = append(artists, ar.Name)
	}

	// Spotify lists images widest first.
	var image string
	if len(a.Images) > 0 {
		image = a.Images[0].URL
	}

	return core.Album{
		ID:          string(a.ID),
		Name:        a.Name,
		URI:         string(a.URI),
		Artists:     artists,
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.Tracks.Total,
		ImageURL:    image,
	}
}
