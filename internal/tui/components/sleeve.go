package components

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/turntable"
	"github.com/tessro/vinyl/internal/tui/styles"
)

// Sleeve draws the cover of the album on the platter.
type Sleeve struct{}

// NewSleeve creates a new Sleeve component
func NewSleeve() *Sleeve {
	return &Sleeve{}
}

// CoverColor derives a stable cover color from the album identity.
func CoverColor(album *core.Album) lipgloss.Color {
	if album == nil {
		return lipgloss.Color("#374151")
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(album.ID + album.Name))
	sum := h.Sum32()
	// Keep the channels mid-range so white text stays readable.
	r := 48 + sum&0x7f
	g := 48 + (sum>>8)&0x7f
	b := 48 + (sum>>16)&0x7f
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, b))
}

// Render draws the sleeve in a width x height box. slide runs from 0 (still
// in the crate, below the box) to 1 (fully out).
func (s *Sleeve) Render(album *core.Album, width, height int, slide float64) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if album == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.Muted.Render("Pick a record from the crate"))
	}

	size := height
	if size*2 > width {
		size = width / 2
	}
	coverWidth := size * 2

	inner := coverWidth - 4
	lines := []string{
		"",
		lipgloss.NewStyle().Bold(true).Render(styles.Truncate(album.Name, inner)),
		styles.Truncate(album.ArtistLine(), inner),
	}
	meta := fmt.Sprintf("%d tracks", album.TotalTracks)
	if year := album.Year(); year != "" {
		meta = year + " · " + meta
	}
	lines = append(lines, "", styles.Truncate(meta, inner))

	cover := lipgloss.NewStyle().
		Width(coverWidth).
		Height(size).
		Padding(0, 2).
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(CoverColor(album)).
		Render(strings.Join(lines, "\n"))

	drop := int(math.Round((1 - turntable.Clamp01(slide)) * float64(size)))
	coverLines := strings.Split(cover, "\n")
	if drop > 0 {
		visible := len(coverLines) - drop
		if visible < 0 {
			visible = 0
		}
		pad := make([]string, drop)
		coverLines = append(pad, coverLines[:visible]...)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Bottom,
		strings.Join(coverLines, "\n"))
}
