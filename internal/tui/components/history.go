package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/tui/styles"
)

// MaxHistory is how many played tracks the history keeps.
const MaxHistory = 50

// HistoryEntry represents a track that left the platter
type HistoryEntry struct {
	Track    *core.Track
	PlayedAt time.Time
	Skipped  bool
}

// History lists recently played tracks, newest first
type History struct {
	entries []HistoryEntry
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Add records a track at the top of the history.
func (h *History) Add(e HistoryEntry) {
	if e.Track == nil {
		return
	}
	h.entries = append([]HistoryEntry{e}, h.entries...)
	if len(h.entries) > MaxHistory {
		h.entries = h.entries[:MaxHistory]
	}
}

// Entries returns the recorded entries, newest first.
func (h *History) Entries() []HistoryEntry {
	return h.entries
}

// Render renders the history panel in a width x height box, border included.
func (h *History) Render(width, height int) string {
	title := styles.PanelTitle("Played", false)

	var content string
	if len(h.entries) == 0 {
		content = styles.Muted.Render("Nothing played yet")
	} else {
		content = h.renderHistory(width-4, height-4)
	}

	return styles.Panel(false).
		Width(width - 2).
		Height(height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (h *History) renderHistory(width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range h.entries {
		if i >= maxLines {
			break
		}

		timeAgo := formatTimeAgo(entry.PlayedAt)

		icon := "✓"
		if entry.Skipped {
			icon = "⏭"
		}

		// icon, spaces either side of the time
		available := width - 4 - lipgloss.Width(timeAgo)
		info := styles.Truncate(fmt.Sprintf("%s — %s", entry.Track.Title, entry.Track.Artist), available)

		padding := max(1, width-2-lipgloss.Width(info)-lipgloss.Width(timeAgo))

		lines = append(lines, fmt.Sprintf("%s %s%*s%s",
			styles.Dim.Render(icon),
			info,
			padding, "",
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
