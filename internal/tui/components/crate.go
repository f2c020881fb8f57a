package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/crate"
	"github.com/tessro/vinyl/internal/turntable"
	"github.com/tessro/vinyl/internal/tui/styles"
)

// pixelsPerColumn converts rack offsets into indentation.
const (
	pixelsPerColumn = 8.0
	maxIndent       = 9
)

// restFrequency is the spring speed of sleeves settling back into the rack.
const restFrequency = 6.0

// Crate draws the rack of sleeves, easing each toward its layout target.
type Crate struct {
	fps    int
	tilt   []*turntable.Spring
	offset []*turntable.Spring
	scroll int
}

// NewCrate creates a new Crate component
func NewCrate(fps int) *Crate {
	return &Crate{fps: fps}
}

func (c *Crate) grow(n int) {
	for len(c.tilt) < n {
		c.tilt = append(c.tilt, turntable.NewSpring(c.fps, restFrequency, 0.8, crate.BaseTilt))
		c.offset = append(c.offset, turntable.NewSpring(c.fps, restFrequency, 0.8, 0))
	}
}

// Retune gives the sleeve at index springs matching the jitter of a new
// focus session, so no two pulls move at quite the same speed.
func (c *Crate) Retune(index int, j crate.Jitter) {
	if index < 0 {
		return
	}
	c.grow(index + 1)
	c.tilt[index] = turntable.NewSpring(c.fps, 1.5/j.TiltDuration, 0.7, c.tilt[index].Position())
	c.offset[index] = turntable.NewSpring(c.fps, 1.5/j.LiftDuration, 0.6, c.offset[index].Position())
}

// Step advances every sleeve one frame toward targets.
func (c *Crate) Step(targets []crate.Params) {
	c.grow(len(targets))
	for i, p := range targets {
		c.tilt[i].Step(p.Tilt)
		c.offset[i].Step(p.Offset())
	}
}

// Current returns the eased tilt and offset of the sleeve at index.
func (c *Crate) Current(index int) (tilt, offset float64) {
	if index < 0 || index >= len(c.tilt) {
		return crate.BaseTilt, 0
	}
	return c.tilt[index].Position(), c.offset[index].Position()
}

// Follow scrolls so index stays within the visible rows.
func (c *Crate) Follow(index, rows, count int) {
	if rows <= 0 {
		return
	}
	if index >= 0 {
		if index < c.scroll {
			c.scroll = index
		}
		if index >= c.scroll+rows {
			c.scroll = index - rows + 1
		}
	}
	if c.scroll > count-rows {
		c.scroll = count - rows
	}
	if c.scroll < 0 {
		c.scroll = 0
	}
}

// Scroll is the index of the first visible sleeve.
func (c *Crate) Scroll() int {
	return c.scroll
}

// RowAt maps a row inside the list to an album index.
func (c *Crate) RowAt(row, rows, count int) (int, bool) {
	if row < 0 || row >= rows {
		return 0, false
	}
	i := c.scroll + row
	return i, i < count
}

// SpineGlyph picks the character of a sleeve spine leaning by tilt.
func SpineGlyph(tilt float64) string {
	lean := tilt - crate.BaseTilt
	switch {
	case lean > 20:
		return "╱"
	case lean > 4:
		return "/"
	case lean < -4:
		return "╲"
	default:
		return "│"
	}
}

// Indent converts a sleeve offset into leading columns.
func Indent(offset float64) int {
	n := int(math.Round(offset / pixelsPerColumn))
	return max(0, min(maxIndent, n))
}

// CrateView is the data the crate panel shows.
type CrateView struct {
	Albums     []core.Album
	Focused    int
	Selected   int
	PlayingURI string
	Loading    bool
	HasMore    bool
	Err        string
}

// CrateListTop is the row of the first sleeve below the panel's top edge.
const CrateListTop = 3

// CrateRows returns how many sleeves fit in a panel of the given height.
func CrateRows(height int) int {
	return max(0, height-4)
}

// Render draws the crate panel in a width x height box, border included.
// It shows rows from the current scroll position; call Follow first.
func (c *Crate) Render(v CrateView, width, height int) string {
	focused := v.Focused != crate.NoFocus
	title := styles.PanelTitle(fmt.Sprintf("Crate (%d)", len(v.Albums)), focused)

	rows := CrateRows(height)
	lines := []string{title, ""}

	switch {
	case len(v.Albums) == 0 && v.Err != "":
		lines = append(lines, styles.Error.Render(styles.Truncate(v.Err, width-4)))
	case len(v.Albums) == 0 && v.Loading:
		lines = append(lines, styles.Muted.Render("Loading albums..."))
	case len(v.Albums) == 0:
		lines = append(lines, styles.Muted.Render("No saved albums"))
	default:
		top := c.scroll
		end := min(top+rows, len(v.Albums))
		for i := top; i < end; i++ {
			lines = append(lines, c.renderRow(v, i, width-4))
		}
		if end == len(v.Albums) && v.Loading && end-top < rows {
			lines = append(lines, styles.Dim.Render("Loading more..."))
		}
	}

	return styles.Panel(focused).
		Width(width - 2).
		Height(height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (c *Crate) renderRow(v CrateView, i, width int) string {
	album := v.Albums[i]
	tilt, offset := c.Current(i)

	marker := " "
	switch {
	case album.URI != "" && album.URI == v.PlayingURI:
		marker = styles.Playing.Render("♪")
	case i == v.Selected:
		marker = styles.Paused.Render("•")
	}

	indent := Indent(offset)
	text := album.Name
	if artists := album.ArtistLine(); artists != "" {
		text += " · " + artists
	}
	text = styles.Truncate(text, width-indent-4)

	style := styles.Muted
	if i == v.Focused {
		style = styles.Highlight
	}

	return marker + " " + strings.Repeat(" ", indent) +
		styles.Dim.Render(SpineGlyph(tilt)) + " " + style.Render(text)
}
