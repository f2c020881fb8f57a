package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/tui/styles"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

// Record proportions relative to its radius.
const (
	labelRadius   = 0.35
	spindleRadius = 0.07
	sheenWidth    = 14.0 // degrees either side of the sheen line
)

// Tonearm geometry relative to the record radius, in a frame centred on
// the spindle with y pointing down. At StartAngle the stylus sits on the
// outer groove and at EndAngle it has reached the label.
const (
	pivotX    = 0.9
	pivotY    = -0.9
	armLength = 1.0
	armBase   = 85.0 // arm direction in degrees at StartAngle
)

// CellKind classifies one rasterised cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellVinyl
	CellGroove
	CellSheen
	CellLabel
	CellSpindle
	CellArm
	CellPivot
	CellStylus
)

// Deck rasterises the record and tonearm into a grid of terminal cells.
type Deck struct{}

// NewDeck creates a new Deck component
func NewDeck() *Deck {
	return &Deck{}
}

// ArmTip returns the stylus position for armAngle, in record radii
// relative to the spindle.
func ArmTip(armAngle float64) (x, y float64) {
	a := (armBase + armAngle) * math.Pi / 180
	return pivotX + armLength*math.Cos(a), pivotY + armLength*math.Sin(a)
}

// Raster computes the cell kinds of a width x height deck. recordAngle
// rotates the sheen; armAngle is the tonearm rotation in degrees.
func (d *Deck) Raster(width, height int, recordAngle, armAngle float64) [][]CellKind {
	if width <= 0 || height <= 0 {
		return nil
	}
	grid := make([][]CellKind, height)
	for i := range grid {
		grid[i] = make([]CellKind, width)
	}

	// Leave room on the right and top for the pivot.
	radius := math.Min(float64(height)/2.4, float64(width)/cellAspect/2.4)
	if radius < 1 {
		return grid
	}
	cx := float64(width)/2 - radius*0.2*cellAspect
	cy := float64(height)/2 + radius*0.15

	for row := range grid {
		for col := range grid[row] {
			u := (float64(col) + 0.5 - cx) / cellAspect / radius
			v := (float64(row) + 0.5 - cy) / radius
			grid[row][col] = recordCell(u, v, recordAngle)
		}
	}

	plot := func(x, y float64, kind CellKind) {
		col := int(math.Floor(cx + x*radius*cellAspect))
		row := int(math.Floor(cy + y*radius))
		if row < 0 || row >= height || col < 0 || col >= width {
			return
		}
		grid[row][col] = kind
	}

	tipX, tipY := ArmTip(armAngle)
	steps := int(armLength * radius * cellAspect * 2)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		plot(pivotX+(tipX-pivotX)*t, pivotY+(tipY-pivotY)*t, CellArm)
	}
	plot(pivotX, pivotY, CellPivot)
	plot(tipX, tipY, CellStylus)

	return grid
}

func recordCell(u, v, recordAngle float64) CellKind {
	r := math.Hypot(u, v)
	switch {
	case r > 1:
		return CellEmpty
	case r <= spindleRadius:
		return CellSpindle
	case r <= labelRadius:
		return CellLabel
	}

	theta := math.Atan2(v, u) * 180 / math.Pi
	if angleDiff(theta, recordAngle) <= sheenWidth || angleDiff(theta, recordAngle+180) <= sheenWidth {
		return CellSheen
	}
	if int(r*12)%2 == 0 {
		return CellGroove
	}
	return CellVinyl
}

// angleDiff returns the absolute difference between two angles in degrees.
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

var cellGlyphs = map[CellKind]string{
	CellEmpty:   " ",
	CellVinyl:   "█",
	CellGroove:  "▓",
	CellSheen:   "▒",
	CellLabel:   "█",
	CellSpindle: "●",
	CellArm:     "█",
	CellPivot:   "◉",
	CellStylus:  "▼",
}

func cellStyle(kind CellKind) lipgloss.Style {
	p := styles.Current
	s := lipgloss.NewStyle()
	switch kind {
	case CellVinyl:
		return s.Foreground(p.Vinyl)
	case CellGroove:
		return s.Foreground(p.Groove)
	case CellSheen:
		return s.Foreground(p.Sheen)
	case CellLabel:
		return s.Foreground(p.Label)
	case CellSpindle:
		return s.Foreground(p.Text).Background(p.Label)
	case CellArm, CellPivot, CellStylus:
		return s.Foreground(p.Tonearm)
	}
	return s
}

// Render draws the deck, one styled run per stretch of equal cells.
func (d *Deck) Render(width, height int, recordAngle, armAngle float64) string {
	grid := d.Raster(width, height, recordAngle, armAngle)
	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for start := 0; start < len(row); {
			end := start
			for end < len(row) && row[end] == row[start] {
				end++
			}
			run := strings.Repeat(cellGlyphs[row[start]], end-start)
			if row[start] == CellEmpty {
				b.WriteString(run)
			} else {
				b.WriteString(cellStyle(row[start]).Render(run))
			}
			start = end
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
