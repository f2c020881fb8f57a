package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/tui/styles"
)

// Action is a transport button in the controls bar.
type Action int

const (
	ActionNone Action = iota
	ActionPrevious
	ActionToggle
	ActionNext
)

const buttonGap = " "

// Controls renders the transport bar under the turntable.
type Controls struct{}

// NewControls creates a new Controls component
func NewControls() *Controls {
	return &Controls{}
}

func buttons(playing bool) []string {
	play := " ▶ "
	if playing {
		play = " ⏸ "
	}
	return []string{" ⏮ ", play, " ⏭ "}
}

// HitTest returns the button under column x of the first controls line.
func (c *Controls) HitTest(x int, playing bool) Action {
	col := 0
	for i, b := range buttons(playing) {
		w := lipgloss.Width(b)
		if x >= col && x < col+w {
			return Action(i + 1)
		}
		col += w + lipgloss.Width(buttonGap)
	}
	return ActionNone
}

// ControlsView is the data the controls bar shows.
type ControlsView struct {
	State         core.PlaybackState
	Volume        int
	AlbumProgress float64 // clamped to [0, 1]
}

// Render draws the two-line controls bar.
func (c *Controls) Render(v ControlsView, width int) string {
	s := v.State
	bs := buttons(s.IsPlaying)
	playStyle := styles.Paused
	if s.IsPlaying {
		playStyle = styles.Playing
	}
	transport := styles.Dim.Render(bs[0]) + buttonGap +
		playStyle.Render(bs[1]) + buttonGap +
		styles.Dim.Render(bs[2])

	volume := styles.Muted.Render(fmt.Sprintf("vol %s %3d%%", styles.ProgressBar(float64(v.Volume)/100, 10), v.Volume))

	nowPlaying := styles.Muted.Render("Nothing playing")
	if s.Track != nil {
		text := s.Track.Title
		if s.Track.Artist != "" {
			text += " · " + s.Track.Artist
		}
		if s.Album != nil && s.Album.TotalTracks > 0 && s.Track.TrackNumber > 0 {
			text += fmt.Sprintf("  [%d/%d]", s.Track.TrackNumber, s.Album.TotalTracks)
		}
		room := width - lipgloss.Width(transport) - lipgloss.Width(volume) - 6
		nowPlaying = styles.Title.Render(styles.Truncate(text, room))
	}

	top := transport + "   " + volume + "   " + nowPlaying

	times := fmt.Sprintf("%s / %s", FormatDuration(s.Position), FormatDuration(s.Duration))
	label := fmt.Sprintf("album %3.0f%%", v.AlbumProgress*100)
	barWidth := width - lipgloss.Width(times) - lipgloss.Width(label) - 4
	bottom := styles.Dim.Render(label) + " " + styles.ProgressBar(v.AlbumProgress, barWidth) + " " + styles.Dim.Render(times)

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}
