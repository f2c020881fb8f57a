// Package wizard holds the small interactive pickers used by one-shot
// commands when a terminal is attached.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/vinyl/internal/core"
)

// FilterFunc narrows albums to those matching query.
type FilterFunc func(albums []core.Album, query string) []core.Album

// AlbumModel is the bubbletea model for the album picker.
type AlbumModel struct {
	input    textinput.Model
	albums   []core.Album
	results  []core.Album
	filter   FilterFunc
	cursor   int
	selected *core.Album
	width    int
	height   int
}

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewAlbumModel creates a picker over albums, pre-filtered by query.
func NewAlbumModel(albums []core.Album, query string, filter FilterFunc) AlbumModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by album or artist..."
	ti.SetValue(query)
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	m := AlbumModel{
		input:  ti,
		albums: albums,
		filter: filter,
		width:  80,
		height: 20,
	}
	m.applyFilter()
	return m
}

func (m *AlbumModel) applyFilter() {
	q := strings.TrimSpace(m.input.Value())
	if q == "" || m.filter == nil {
		m.results = m.albums
	} else {
		m.results = m.filter(m.albums, q)
	}
	m.cursor = min(m.cursor, max(len(m.results)-1, 0))
}

// Init initializes the model.
func (m AlbumModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m AlbumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.results) {
				album := m.results[m.cursor]
				m.selected = &album
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.applyFilter()
	}
	return m, cmd
}

// View renders the model.
func (m AlbumModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render("💿 Pick a record"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		b.WriteString(pickerMutedStyle.Render("No albums match"))
		b.WriteString("\n")
	}

	// Keep the cursor in view.
	visible := max(m.height-8, 5)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.results))

	for i := start; i < end; i++ {
		a := m.results[i]
		line := a.Name + " " + pickerMutedStyle.Render(a.ArtistLine())
		if year := a.Year(); year != "" {
			line += pickerMutedStyle.Render(" (" + year + ")")
		}
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(pickerItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if end < len(m.results) {
		b.WriteString(pickerMutedStyle.Render(fmt.Sprintf("  ...and %d more", len(m.results)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerMutedStyle.Render("↑/↓ navigate • type to filter • enter play • esc cancel"))
	return b.String()
}

// Selected returns the chosen album, or nil if the picker was cancelled.
func (m AlbumModel) Selected() *core.Album {
	return m.selected
}

// PickAlbum runs the picker and returns the chosen album, or nil if cancelled.
func PickAlbum(albums []core.Album, query string, filter FilterFunc) (*core.Album, error) {
	p := tea.NewProgram(NewAlbumModel(albums, query, filter), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(AlbumModel).Selected(), nil
}
