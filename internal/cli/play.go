package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/core"
	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/library"
	spotifylib "github.com/tessro/vinyl/internal/spotify/library"
	"github.com/tessro/vinyl/internal/wizard"
)

var (
	playURI  string
	playPick bool
)

var playCmd = &cobra.Command{
	Use:   "play [album]",
	Short: "Put an album from your collection on the platter",
	Long: `Play a saved album from the start. The album is matched by name or
"artist - name" against your saved albums. Without arguments, resumes
playback.

Examples:
  vinyl play                       # Resume playback
  vinyl play "kind of blue"        # Play a saved album
  vinyl play --uri spotify:album:x # Play a specific album URI
  vinyl play --pick                # Choose from your saved albums

When a name matches several albums and a terminal is attached, a picker
opens to choose between them.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playURI, "uri", "", "Play a specific Spotify album URI")
	playCmd.Flags().BoolVarP(&playPick, "pick", "i", false, "Choose the album interactively")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, _, err := syncPlayer(ctx)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	var album core.Album

	switch {
	case playURI != "":
		if !strings.HasPrefix(playURI, "spotify:album:") {
			return verrors.WithSuggestion(fmt.Errorf("not an album URI: %s", playURI), "Album URIs look like spotify:album:<id>")
		}
		album = core.Album{URI: playURI, ID: strings.TrimPrefix(playURI, "spotify:album:"), Name: playURI}
	case query == "" && !playPick:
		if err := p.Resume(ctx); err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(map[string]string{"status": "playing"})
		}
		fmt.Println("▶ Resumed playback")
		return nil
	default:
		found, err := findSavedAlbum(ctx, query)
		if err != nil {
			return err
		}
		album = found
	}

	if err := p.Play(ctx, album); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]any{"status": "playing", "album": album})
	}
	fmt.Printf("💿 %s", album.Name)
	if artists := album.ArtistLine(); artists != "" {
		fmt.Printf(" · %s", artists)
	}
	fmt.Println()
	return nil
}

// findSavedAlbum loads the whole collection and picks the best match.
func findSavedAlbum(ctx context.Context, query string) (core.Album, error) {
	c, err := newSpotifyClient()
	if err != nil {
		return core.Album{}, err
	}

	albums := library.NewCollection(spotifylib.New(c, logger), logger, nil)
	if err := albums.LoadAll(ctx); err != nil {
		return core.Album{}, fmt.Errorf("failed to load saved albums: %w", err)
	}

	if playPick {
		return pickAlbum(albums.Albums(), query)
	}

	matches := matchAlbums(albums.Albums(), query)
	switch len(matches) {
	case 0:
		return core.Album{}, verrors.WithSuggestion(fmt.Errorf("no saved album matches %q", query), "List your albums with 'vinyl albums'")
	case 1:
		return matches[0], nil
	}

	// An exact name wins over a longer list of partial matches.
	for _, a := range matches {
		if strings.EqualFold(a.Name, query) {
			return a, nil
		}
	}
	if wizard.IsTerminal() && !JSONOutput() {
		return pickAlbum(albums.Albums(), query)
	}
	names := make([]string, 0, min(len(matches), 5))
	for _, a := range matches[:min(len(matches), 5)] {
		names = append(names, fmt.Sprintf("%s · %s", a.Name, a.ArtistLine()))
	}
	return core.Album{}, verrors.WithSuggestion(
		fmt.Errorf("%q matches %d albums", query, len(matches)),
		"Be more specific, e.g. "+strings.Join(names, "; "),
	)
}

func pickAlbum(albums []core.Album, query string) (core.Album, error) {
	picked, err := wizard.PickAlbum(albums, query, matchAlbums)
	if err != nil {
		return core.Album{}, err
	}
	if picked == nil {
		return core.Album{}, errors.New("no album picked")
	}
	return *picked, nil
}

// matchAlbums returns albums whose name, or "artist - name", contains query
// ignoring case.
func matchAlbums(albums []core.Album, query string) []core.Album {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []core.Album
	for _, a := range albums {
		name := strings.ToLower(a.Name)
		full := strings.ToLower(a.ArtistLine() + " - " + a.Name)
		if strings.Contains(name, q) || strings.Contains(full, q) {
			out = append(out, a)
		}
	}
	return out
}
