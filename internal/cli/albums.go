package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/library"
)

var albumsLimit int

var albumsCmd = &cobra.Command{
	Use:     "albums",
	Aliases: []string{"crate"},
	Short:   "List the albums in your crate",
	Long: `Lists your saved albums in the order the turntable's crate shows them,
most recently saved first.`,
	RunE: runAlbums,
}

func init() {
	albumsCmd.Flags().IntVarP(&albumsLimit, "limit", "n", 0, "show at most n albums (0 for all)")
	rootCmd.AddCommand(albumsCmd)
}

func runAlbums(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	b, err := newBackend(false, nil)
	if err != nil {
		return err
	}

	collection := library.NewCollection(b.albums, logger, nil)
	if albumsLimit > 0 {
		for collection.Len() < albumsLimit && collection.HasMore() {
			if _, err := collection.LoadMore(ctx); err != nil {
				return err
			}
		}
	} else if err := collection.LoadAll(ctx); err != nil {
		return err
	}

	albums := collection.Albums()
	if albumsLimit > 0 && len(albums) > albumsLimit {
		albums = albums[:albumsLimit]
	}

	if JSONOutput() {
		return printJSON(albums)
	}

	if len(albums) == 0 {
		fmt.Println("Your crate is empty. Save some albums in Spotify first.")
		return nil
	}

	t := NewTable("#", "ALBUM", "ARTIST", "YEAR", "TRACKS")
	for i, a := range albums {
		t.Row(
			strconv.Itoa(i+1),
			TruncateString(a.Name, 40),
			TruncateString(a.ArtistLine(), 30),
			a.Year(),
			strconv.Itoa(a.TotalTracks),
		)
	}
	t.Flush()
	return nil
}
