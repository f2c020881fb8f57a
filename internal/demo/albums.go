package demo

import (
	"context"

	"github.com/tessro/vinyl/internal/core"
)

var trackTitles = []string{
	"Side A Opener",
	"Midnight Groove",
	"Analog Dreams",
	"Needle Drop",
	"Warm Crackle",
	"Run-Out Groove",
	"Gatefold Blues",
	"Wax Poetic",
	"B-Side Ballad",
	"Last Track Shuffle",
}

// Albums is the crate shown in demo mode.
var Albums = []core.Album{
	mockAlbum("kind-of-blue", "Kind of Blue", "1959-08-17", 5, "Miles Davis"),
	mockAlbum("blue-train", "Blue Train", "1958-01-01", 5, "John Coltrane"),
	mockAlbum("a-love-supreme", "A Love Supreme", "1965-01-01", 4, "John Coltrane"),
	mockAlbum("time-out", "Time Out", "1959-12-14", 7, "The Dave Brubeck Quartet"),
	mockAlbum("moanin", "Moanin'", "1959-01-01", 6, "Art Blakey", "The Jazz Messengers"),
	mockAlbum("rumours", "Rumours", "1977-02-04", 11, "Fleetwood Mac"),
	mockAlbum("dark-side", "The Dark Side of the Moon", "1973-03-01", 10, "Pink Floyd"),
	mockAlbum("abbey-road", "Abbey Road", "1969-09-26", 17, "The Beatles"),
	mockAlbum("whats-going-on", "What's Going On", "1971-05-21", 9, "Marvin Gaye"),
	mockAlbum("songs-in-the-key", "Songs in the Key of Life", "1976-09-28", 21, "Stevie Wonder"),
	mockAlbum("blue", "Blue", "1971-06-22", 10, "Joni Mitchell"),
	mockAlbum("pet-sounds", "Pet Sounds", "1966-05-16", 13, "The Beach Boys"),
	mockAlbum("unknown-pleasures", "Unknown Pleasures", "1979-06-15", 10, "Joy Division"),
	mockAlbum("remain-in-light", "Remain in Light", "1980-10-08", 8, "Talking Heads"),
	mockAlbum("purple-rain", "Purple Rain", "1984-06-25", 9, "Prince", "The Revolution"),
	mockAlbum("dummy", "Dummy", "1994-08-22", 11, "Portishead"),
	mockAlbum("ok-computer", "OK Computer", "1997-05-21", 12, "Radiohead"),
	mockAlbum("moon-safari", "Moon Safari", "1998-01-16", 10, "Air"),
	mockAlbum("homogenic", "Homogenic", "1997-09-22", 10, "Björk"),
	mockAlbum("discovery", "Discovery", "2001-03-12", 14, "Daft Punk"),
	mockAlbum("funeral", "Funeral", "2004-09-14", 10, "Arcade Fire"),
	mockAlbum("in-rainbows", "In Rainbows", "2007-10-10", 10, "Radiohead"),
	mockAlbum("currents", "Currents", "2015-07-17", 13, "Tame Impala"),
	mockAlbum("blonde", "Blonde", "2016-08-20", 17, "Frank Ocean"),
}

func mockAlbum(id, name, released string, tracks int, artists ...string) core.Album {
	return core.Album{
		ID:          "demo-" + id,
		Name:        name,
		URI:         "demo:album:" + id,
		Artists:     artists,
		ReleaseDate: released,
		TotalTracks: tracks,
	}
}

// Crate serves the mock albums as a single page.
type Crate struct {
	albums []core.Album
}

// NewCrate returns an AlbumSource over albums, or over Albums when none are given.
func NewCrate(albums ...core.Album) *Crate {
	if len(albums) == 0 {
		albums = Albums
	}
	return &Crate{albums: albums}
}

// SavedAlbums returns every mock album on the first page and nothing after.
func (c *Crate) SavedAlbums(ctx context.Context, offset, limit int) (*core.AlbumPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := &core.AlbumPage{Offset: offset, Total: len(c.albums)}
	if offset == 0 {
		page.Albums = append([]core.Album(nil), c.albums...)
	}
	return page, nil
}

// Ensure Crate implements core.AlbumSource
var _ core.AlbumSource = (*Crate)(nil)
