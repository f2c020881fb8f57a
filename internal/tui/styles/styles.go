package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors a theme provides.
type Palette struct {
	Primary lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Muted   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor

	// Record and deck
	Vinyl   lipgloss.TerminalColor
	Groove  lipgloss.TerminalColor
	Sheen   lipgloss.TerminalColor
	Label   lipgloss.TerminalColor
	Tonearm lipgloss.TerminalColor
}

// Dark is the palette for dark terminals.
var Dark = Palette{
	Primary: lipgloss.Color("#1DB954"), // Spotify green
	Accent:  lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#EF4444"),
	Border:  lipgloss.Color("#4B5563"),
	Text:    lipgloss.Color("#F9FAFB"),
	Muted:   lipgloss.Color("#9CA3AF"),
	Dim:     lipgloss.Color("#6B7280"),
	Vinyl:   lipgloss.Color("#111827"),
	Groove:  lipgloss.Color("#374151"),
	Sheen:   lipgloss.Color("#9CA3AF"),
	Label:   lipgloss.Color("#DC2626"),
	Tonearm: lipgloss.Color("#E5E7EB"),
}

// Light is the palette for light terminals.
var Light = Palette{
	Primary: lipgloss.Color("#15803D"),
	Accent:  lipgloss.Color("#B45309"),
	Error:   lipgloss.Color("#B91C1C"),
	Border:  lipgloss.Color("#D1D5DB"),
	Text:    lipgloss.Color("#111827"),
	Muted:   lipgloss.Color("#4B5563"),
	Dim:     lipgloss.Color("#9CA3AF"),
	Vinyl:   lipgloss.Color("#1F2937"),
	Groove:  lipgloss.Color("#4B5563"),
	Sheen:   lipgloss.Color("#D1D5DB"),
	Label:   lipgloss.Color("#DC2626"),
	Tonearm: lipgloss.Color("#6B7280"),
}

// Auto adapts to the terminal background.
var Auto = Palette{
	Primary: lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#1DB954"},
	Accent:  lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"},
	Error:   lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"},
	Border:  lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
	Text:    lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"},
	Muted:   lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"},
	Dim:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"},
	Vinyl:   lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#111827"},
	Groove:  lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#374151"},
	Sheen:   lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#9CA3AF"},
	Label:   lipgloss.Color("#DC2626"),
	Tonearm: lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#E5E7EB"},
}

// mix picks the same swatch from Latte on light terminals and Mocha on dark.
func mix(swatch func(catppuccin.Flavor) catppuccin.Color) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Light: swatch(catppuccin.Latte).Hex,
		Dark:  swatch(catppuccin.Mocha).Hex,
	}
}

// Catppuccin follows the Catppuccin Latte and Mocha flavours.
var Catppuccin = Palette{
	Primary: mix(catppuccin.Flavor.Green),
	Accent:  mix(catppuccin.Flavor.Peach),
	Error:   mix(catppuccin.Flavor.Red),
	Border:  mix(catppuccin.Flavor.Surface1),
	Text:    mix(catppuccin.Flavor.Text),
	Muted:   mix(catppuccin.Flavor.Subtext0),
	Dim:     mix(catppuccin.Flavor.Overlay0),
	Vinyl:   lipgloss.Color(catppuccin.Mocha.Crust().Hex),
	Groove:  lipgloss.Color(catppuccin.Mocha.Surface0().Hex),
	Sheen:   lipgloss.Color(catppuccin.Mocha.Overlay1().Hex),
	Label:   mix(catppuccin.Flavor.Mauve),
	Tonearm: mix(catppuccin.Flavor.Lavender),
}

// Current is the palette in use.
var Current = Auto

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	Error     lipgloss.Style
	Badge     lipgloss.Style

	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	build()
}

// UseTheme switches the palette to the named theme. Unknown names fall back to auto.
func UseTheme(name string) {
	switch name {
	case "dark":
		Current = Dark
	case "light":
		Current = Light
	case "catppuccin":
		Current = Catppuccin
	default:
		Current = Auto
	}
	build()
}

func build() {
	p := Current

	Title = lipgloss.NewStyle().Bold(true).Foreground(p.Text)
	Subtitle = lipgloss.NewStyle().Foreground(p.Muted)
	Label = lipgloss.NewStyle().Foreground(p.Dim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	Muted = lipgloss.NewStyle().Foreground(p.Muted)
	Dim = lipgloss.NewStyle().Foreground(p.Dim)
	Playing = lipgloss.NewStyle().Foreground(p.Primary)
	Paused = lipgloss.NewStyle().Foreground(p.Accent)
	Error = lipgloss.NewStyle().Foreground(p.Error)
	Badge = lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("#000000")).
		Background(p.Accent)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar renders fraction (0-1) of width cells as filled.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Current.Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Current.Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// Truncate shortens s to at most width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
