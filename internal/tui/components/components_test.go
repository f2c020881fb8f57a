package components

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/crate"
	"github.com/tessro/vinyl/internal/turntable"
)

func TestArmTip(t *testing.T) {
	tests := []struct {
		name    string
		angle   float64
		minR    float64
		maxR    float64
	}{
		{"rest is off the record", turntable.RestAngle, 1.05, math.Inf(1)},
		{"start is on the outer groove", turntable.StartAngle, 0.85, 1.0},
		{"end reaches the label edge", turntable.EndAngle, 0.2, 0.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ArmTip(tt.angle)
			r := math.Hypot(x, y)
			if r < tt.minR || r > tt.maxR {
				t.Errorf("tip radius = %.3f, want in [%.2f, %.2f]", r, tt.minR, tt.maxR)
			}
		})
	}
}

func TestArmTipMovesInward(t *testing.T) {
	prev := math.Inf(1)
	for a := turntable.StartAngle; a <= turntable.EndAngle; a += 5 {
		x, y := ArmTip(a)
		r := math.Hypot(x, y)
		if r >= prev {
			t.Fatalf("radius at %.0f° = %.3f, not inside %.3f", a, r, prev)
		}
		prev = r
	}
}

func count(grid [][]CellKind, kind CellKind) int {
	n := 0
	for _, row := range grid {
		for _, c := range row {
			if c == kind {
				n++
			}
		}
	}
	return n
}

func TestDeckRaster(t *testing.T) {
	d := NewDeck()
	grid := d.Raster(60, 24, 0, turntable.StartAngle)

	if len(grid) != 24 || len(grid[0]) != 60 {
		t.Fatalf("grid = %dx%d, want 60x24", len(grid[0]), len(grid))
	}
	for _, kind := range []CellKind{CellVinyl, CellGroove, CellSheen, CellLabel, CellSpindle, CellArm, CellPivot, CellStylus} {
		if count(grid, kind) == 0 {
			t.Errorf("no cells of kind %d", kind)
		}
	}

	// The sheen turns with the record.
	a := d.Raster(60, 24, 0, turntable.RestAngle)
	b := d.Raster(60, 24, 90, turntable.RestAngle)
	same := true
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Error("rotating the record should move the sheen")
	}

	if d.Raster(0, 10, 0, 0) != nil {
		t.Error("empty deck should rasterise to nil")
	}
}

func TestDeckRenderSize(t *testing.T) {
	out := NewDeck().Render(40, 16, 10, turntable.EndAngle)
	lines := strings.Split(out, "\n")
	if len(lines) != 16 {
		t.Fatalf("lines = %d, want 16", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("line %d width = %d, want 40", i, w)
		}
	}
}

func TestSpineGlyph(t *testing.T) {
	tests := []struct {
		tilt float64
		want string
	}{
		{crate.BaseTilt, "│"},
		{crate.HoverTilt, "╱"},
		{crate.BaseTilt + 10, "/"},
		{crate.BaseTilt - 10, "╲"},
	}
	for _, tt := range tests {
		if got := SpineGlyph(tt.tilt); got != tt.want {
			t.Errorf("SpineGlyph(%v) = %q, want %q", tt.tilt, got, tt.want)
		}
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		offset float64
		want   int
	}{
		{0, 0},
		{-12, 0},
		{24, 3},
		{crate.HoverLift, 8},
		{500, maxIndent},
	}
	for _, tt := range tests {
		if got := Indent(tt.offset); got != tt.want {
			t.Errorf("Indent(%v) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestCrateStepSettles(t *testing.T) {
	c := NewCrate(30)
	c.Retune(2, crate.Steady)
	targets := crate.Layout(5, 2, crate.Steady)

	for range 120 {
		c.Step(targets)
	}
	for i, p := range targets {
		tilt, offset := c.Current(i)
		if math.Abs(tilt-p.Tilt) > 0.5 || math.Abs(offset-p.Offset()) > 0.5 {
			t.Errorf("sleeve %d = (%.1f, %.1f), want (%.1f, %.1f)", i, tilt, offset, p.Tilt, p.Offset())
		}
	}

	if tilt, offset := c.Current(99); tilt != crate.BaseTilt || offset != 0 {
		t.Errorf("unknown sleeve = (%v, %v), want resting", tilt, offset)
	}
}

func TestCrateFollowAndRowAt(t *testing.T) {
	c := NewCrate(30)

	c.Follow(12, 5, 20)
	if i, ok := c.RowAt(4, 5, 20); !ok || i != 12 {
		t.Errorf("RowAt(4) = %d, %v; want 12", i, ok)
	}

	c.Follow(3, 5, 20)
	if i, ok := c.RowAt(0, 5, 20); !ok || i != 3 {
		t.Errorf("RowAt(0) = %d, %v; want 3", i, ok)
	}

	if _, ok := c.RowAt(5, 5, 20); ok {
		t.Error("row past the panel should miss")
	}

	c.Follow(crate.NoFocus, 5, 4)
	if i, ok := c.RowAt(3, 5, 4); !ok || i != 3 {
		t.Errorf("short crate RowAt(3) = %d, %v; want 3", i, ok)
	}
	if _, ok := c.RowAt(4, 5, 4); ok {
		t.Error("row past the last album should miss")
	}
}

func TestCrateRender(t *testing.T) {
	c := NewCrate(30)
	albums := []core.Album{
		{ID: "1", URI: "spotify:album:1", Name: "Kind of Blue", Artists: []string{"Miles Davis"}},
		{ID: "2", URI: "spotify:album:2", Name: "Blue Train", Artists: []string{"John Coltrane"}},
	}
	out := c.Render(CrateView{Albums: albums, Focused: 1, Selected: crate.NoFocus, PlayingURI: "spotify:album:1"}, 50, 12)
	for _, want := range []string{"Crate (2)", "Kind of Blue · Miles Davis", "Blue Train", "♪"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}

	empty := c.Render(CrateView{Focused: crate.NoFocus, Selected: crate.NoFocus, Loading: true}, 50, 12)
	if !strings.Contains(empty, "Loading albums...") {
		t.Error("empty loading crate should say so")
	}
}

func TestControlsHitTest(t *testing.T) {
	c := NewControls()
	w := lipgloss.Width(" ⏮ ")
	gap := lipgloss.Width(buttonGap)

	tests := []struct {
		x    int
		want Action
	}{
		{0, ActionPrevious},
		{w - 1, ActionPrevious},
		{w, ActionNone},
		{w + gap, ActionToggle},
		{2*(w+gap) + 1, ActionNext},
		{200, ActionNone},
	}
	for _, tt := range tests {
		if got := c.HitTest(tt.x, false); got != tt.want {
			t.Errorf("HitTest(%d) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestControlsRender(t *testing.T) {
	out := NewControls().Render(ControlsView{
		State: core.PlaybackState{
			IsPlaying: true,
			Position:  65 * time.Second,
			Duration:  3 * time.Minute,
			Track:     &core.Track{Title: "So What", Artist: "Miles Davis", TrackNumber: 1},
			Album:     &core.Album{TotalTracks: 5},
		},
		Volume:        40,
		AlbumProgress: 0.1,
	}, 120)

	for _, want := range []string{"So What · Miles Davis", "[1/5]", "1:05 / 3:00", "40%", "album  10%"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59*time.Second + 600*time.Millisecond, "1:00"},
		{754 * time.Second, "12:34"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSleeve(t *testing.T) {
	album := &core.Album{ID: "x", Name: "A Love Supreme", Artists: []string{"John Coltrane"}, ReleaseDate: "1965-01-01", TotalTracks: 4}

	if CoverColor(album) != CoverColor(album) {
		t.Error("cover color should be stable")
	}
	if CoverColor(album) == CoverColor(&core.Album{ID: "y", Name: "Ascension"}) {
		t.Error("different albums should usually get different covers")
	}

	out := NewSleeve().Render(album, 40, 14, 1)
	for _, want := range []string{"A Love Supreme", "John Coltrane", "1965 · 4 tracks"} {
		if !strings.Contains(out, want) {
			t.Errorf("sleeve missing %q", want)
		}
	}

	if out := NewSleeve().Render(nil, 40, 14, 1); !strings.Contains(out, "Pick a record") {
		t.Error("empty sleeve should prompt for a record")
	}

	hidden := NewSleeve().Render(album, 40, 14, 0)
	if strings.Contains(hidden, "A Love Supreme") {
		t.Error("a sleeve still in the crate should not show its title")
	}
}

func TestHistoryAdd(t *testing.T) {
	h := NewHistory()
	h.Add(HistoryEntry{})
	if len(h.Entries()) != 0 {
		t.Fatal("entries without a track are ignored")
	}

	for i := range MaxHistory + 5 {
		h.Add(HistoryEntry{Track: &core.Track{Title: string(rune('a' + i%26))}, PlayedAt: time.Now()})
	}
	if got := len(h.Entries()); got != MaxHistory {
		t.Errorf("len = %d, want %d", got, MaxHistory)
	}

	out := h.Render(60, 10)
	if !strings.Contains(out, "Played") || !strings.Contains(out, "now") {
		t.Errorf("render = %q", out)
	}
}
