package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/tui/components"
	"github.com/tessro/vinyl/internal/turntable"
)

const progressWidth = 30

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is on the platter",
	Long: `Shows the current track, the album it belongs to and how far through the
album playback is, as the turntable's tonearm would show it.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Playing       bool         `json:"is_playing"`
	Track         *core.Track  `json:"track,omitempty"`
	Album         *core.Album  `json:"album,omitempty"`
	Device        *core.Device `json:"device,omitempty"`
	Volume        int          `json:"volume"`
	PositionMS    int64        `json:"position_ms"`
	DurationMS    int64        `json:"duration_ms"`
	AlbumProgress float64      `json:"album_progress"`
	TonearmAngle  float64      `json:"tonearm_angle"`
}

func newStatusOutput(s core.PlaybackState) statusOutput {
	progress := turntable.Clamp01(turntable.AlbumProgress(s))
	return statusOutput{
		Playing:       s.IsPlaying,
		Track:         s.Track,
		Album:         s.Album,
		Device:        s.Device,
		Volume:        s.Volume,
		PositionMS:    s.Position.Milliseconds(),
		DurationMS:    s.Duration.Milliseconds(),
		AlbumProgress: progress,
		TonearmAngle:  turntable.TonearmAngle(s.IsPlaying, progress),
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, state, err := syncPlayer(cmd.Context())
	if err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(newStatusOutput(state))
	}
	fmt.Print(formatStatus(state))
	return nil
}

func formatStatus(s core.PlaybackState) string {
	if !s.HasTrack() {
		return "Nothing on the platter\n"
	}

	var b strings.Builder
	out := newStatusOutput(s)

	icon := "▶"
	if !s.IsPlaying {
		icon = "⏸"
	}
	fmt.Fprintf(&b, "%s %s\n", icon, s.Track.Title)

	if s.Album != nil {
		line := fmt.Sprintf("  %s · %s", s.Album.Name, s.Album.ArtistLine())
		if year := s.Album.Year(); year != "" {
			line += " (" + year + ")"
		}
		b.WriteString(line + "\n")
	} else {
		fmt.Fprintf(&b, "  %s · %s\n", s.Track.Album, s.Track.Artist)
	}

	var track float64
	if s.Duration > 0 {
		track = float64(s.Position) / float64(s.Duration)
	}
	fmt.Fprintf(&b, "  track %s %s / %s\n",
		FormatProgress(track, progressWidth),
		components.FormatDuration(s.Position),
		components.FormatDuration(s.Duration))

	if s.Album != nil && s.Album.TotalTracks > 0 {
		fmt.Fprintf(&b, "  album %s %d/%d (%.0f%%)\n",
			FormatProgress(out.AlbumProgress, progressWidth),
			s.Track.TrackNumber, s.Album.TotalTracks, out.AlbumProgress*100)
	}

	if s.Device != nil {
		fmt.Fprintf(&b, "  on %s (vol %d%%)\n", s.Device.Name, s.Volume)
	}
	return b.String()
}
