package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/crate"
	"github.com/tessro/vinyl/internal/library"
	"github.com/tessro/vinyl/internal/metrics"
	"github.com/tessro/vinyl/internal/tail"
	"github.com/tessro/vinyl/internal/tui/components"
	"github.com/tessro/vinyl/internal/tui/styles"
	"github.com/tessro/vinyl/internal/turntable"
)

const (
	// loadAhead is how close to the last loaded sleeve focus has to come
	// before the next page is requested.
	loadAhead = 5

	volumeStep     = 5
	commandTimeout = 10 * time.Second
	errorLifetime  = 5 * time.Second
)

// Options configures the turntable UI.
type Options struct {
	Provider     core.Provider
	ProviderName string
	Albums       *library.Collection
	Demo         bool
	FPS          int
	Mouse        bool
	Theme        string
	PollInterval time.Duration
	Logger       *logrus.Logger
	Metrics      *metrics.Metrics
	// Rand seeds focus jitter; nil draws from an unseeded source.
	Rand *rand.Rand
}

// Model is the main TUI model
type Model struct {
	ctx     context.Context
	opts    Options
	player  core.Provider
	albums  *library.Collection
	logger  *logrus.Logger
	metrics *metrics.Metrics
	events  <-chan tail.Event

	width  int
	height int
	frame  time.Duration

	// Snapshot taken on every frame
	state  core.PlaybackState
	ready  bool
	volume int

	focus    *crate.Focus
	selected int

	arm    *turntable.Spring
	sleeve *turntable.Spring
	spin   time.Duration
	shown  string // ID of the album on the sleeve

	// Components
	deck     *components.Deck
	sleeveUI *components.Sleeve
	crateUI  *components.Crate
	controls *components.Controls
	history  *components.History
	help     help.Model
	spinner  spinner.Model

	lastError   string
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, opts Options, events <-chan tail.Event) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	styles.UseTheme(opts.Theme)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Playing

	sleeve := turntable.NewPlatterSpring(opts.FPS)
	sleeve.Set(1)

	return Model{
		ctx:      ctx,
		opts:     opts,
		player:   opts.Provider,
		albums:   opts.Albums,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		events:   events,
		ready:    opts.Provider.Ready(),
		frame:    time.Second / time.Duration(opts.FPS),
		focus:    crate.NewFocus(opts.Rand),
		selected: crate.NoFocus,
		arm:      turntable.NewArmSpring(opts.FPS),
		sleeve:   sleeve,
		deck:     components.NewDeck(),
		sleeveUI: components.NewSleeve(),
		crateUI:  components.NewCrate(opts.FPS),
		controls: components.NewControls(),
		history:  components.NewHistory(),
		help:     help.New(),
		spinner:  sp,
	}
}

// Messages
type frameMsg time.Time
type eventMsg tail.Event
type eventsClosedMsg struct{}
type albumsMsg struct{ err error }
type commandMsg struct {
	name string
	err  error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) loadMore() tea.Cmd {
	albums := m.albums
	ctx := m.ctx
	return func() tea.Msg {
		_, err := albums.LoadMore(ctx)
		return albumsMsg{err: err}
	}
}

func (m Model) reload() tea.Cmd {
	albums := m.albums
	ctx := m.ctx
	return func() tea.Msg {
		return albumsMsg{err: albums.Refresh(ctx)}
	}
}

// run executes a transport command off the UI goroutine.
func (m Model) run(name string, fn func(ctx context.Context) error) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, commandTimeout)
		defer cancel()
		return commandMsg{name: name, err: fn(ctx)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.loadMore(),
		m.waitForEvent(),
		m.spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.step()
		return m, m.tick()

	case eventMsg:
		m.record(tail.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		m.events = nil
		return m, nil

	case albumsMsg:
		if msg.err != nil {
			m.setError(msg.err.Error())
		}
		// A page that still leaves focus near the end asks for the next.
		if i, ok := m.focus.Index(); ok && msg.err == nil && m.albums.NearEnd(i, loadAhead) {
			return m, m.loadMore()
		}
		return m, nil

	case commandMsg:
		if msg.err != nil {
			m.logger.WithError(msg.err).WithField("command", msg.name).Warn("Command failed")
			m.setError(msg.err.Error())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// step advances the animation one frame.
func (m *Model) step() {
	m.state = m.player.State()
	m.ready = m.player.Ready()
	m.volume = m.player.Volume()

	if time.Now().After(m.errorExpiry) {
		m.lastError = ""
	}

	progress := turntable.AlbumProgress(m.state)
	m.metrics.SetProgress(turntable.Clamp01(progress))
	target := turntable.TonearmAngle(m.state.IsPlaying, turntable.Clamp01(progress))
	m.arm.Step(target)

	if m.state.IsPlaying {
		m.spin += m.frame
	}

	m.crateUI.Step(m.focus.Layout(m.albums.Len()))
	m.follow()

	if album := m.displayedAlbum(); album != nil && album.ID != m.shown {
		m.shown = album.ID
		m.sleeve.Set(0)
	}
	m.sleeve.Step(1)
}

// record logs a playback event and keeps the played list.
func (m *Model) record(e tail.Event) {
	tail.LogEvent(e, m.opts.ProviderName, m.logger, m.metrics)

	switch e.Type {
	case tail.EventTrackComplete, tail.EventTrackSkip:
		if e.Previous != nil && e.Previous.Track != nil {
			m.history.Add(components.HistoryEntry{
				Track:    e.Previous.Track,
				PlayedAt: e.Timestamp,
				Skipped:  e.Type == tail.EventTrackSkip,
			})
		}
	}
}

func (m *Model) setError(msg string) {
	m.lastError = msg
	m.errorExpiry = time.Now().Add(errorLifetime)
}

// displayedAlbum is the album on the platter, else the one last picked.
func (m Model) displayedAlbum() *core.Album {
	if m.state.Album != nil {
		return m.state.Album
	}
	albums := m.albums.Albums()
	if m.selected >= 0 && m.selected < len(albums) {
		return &albums[m.selected]
	}
	return nil
}

// focusAt pulls out the sleeve at i and asks for more albums near the end.
func (m *Model) focusAt(i int) tea.Cmd {
	if i < 0 || i >= m.albums.Len() {
		return nil
	}
	if m.focus.Enter(i) {
		m.metrics.FocusSession()
		m.crateUI.Retune(i, m.focus.Jitter())
	}
	m.follow()
	if m.albums.NearEnd(i, loadAhead) && !m.albums.Loading() {
		return m.loadMore()
	}
	return nil
}

// follow keeps the focused sleeve inside the visible crate rows.
func (m *Model) follow() {
	i, ok := m.focus.Index()
	if !ok {
		i = crate.NoFocus
	}
	m.crateUI.Follow(i, components.CrateRows(m.layout().crateHeight), m.albums.Len())
}

// playAt selects the album at i and plays it once the provider is ready.
func (m *Model) playAt(i int) tea.Cmd {
	albums := m.albums.Albums()
	if i < 0 || i >= len(albums) {
		return nil
	}
	m.selected = i
	album := albums[i]
	if !m.ready {
		m.logger.WithField("album", album.Name).Debug("Provider not ready, album selected only")
		return nil
	}
	m.logger.WithFields(logrus.Fields{"album": album.Name, "uri": album.URI}).Info("Playing album")
	return m.run("play", func(ctx context.Context) error {
		return m.player.Play(ctx, album)
	})
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Down):
		i, ok := m.focus.Index()
		switch {
		case !ok && m.selected >= 0:
			i = m.selected
		case !ok:
			i = 0
		default:
			i++
		}
		return m, m.focusAt(min(i, m.albums.Len()-1))

	case key.Matches(msg, keys.Up):
		i, ok := m.focus.Index()
		switch {
		case !ok && m.selected >= 0:
			i = m.selected
		case !ok:
			i = 0
		default:
			i--
		}
		return m, m.focusAt(max(i, 0))

	case key.Matches(msg, keys.Leave):
		m.focus.Leave()
		return m, nil

	case key.Matches(msg, keys.Play):
		if i, ok := m.focus.Index(); ok {
			cmd := m.playAt(i)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, keys.Toggle):
		cmd := m.toggle()
		return m, cmd

	case key.Matches(msg, keys.Next):
		return m, m.run("next", m.player.Next)

	case key.Matches(msg, keys.Prev):
		return m, m.run("previous", m.player.Previous)

	case key.Matches(msg, keys.VolUp):
		return m, m.setVolume(m.player.Volume() + volumeStep)

	case key.Matches(msg, keys.VolDown):
		return m, m.setVolume(m.player.Volume() - volumeStep)

	case key.Matches(msg, keys.Refresh):
		m.focus.Leave()
		m.selected = crate.NoFocus
		return m, m.reload()
	}

	return m, nil
}

// toggle pauses or resumes; with nothing loaded it plays the focused or
// selected album instead.
func (m *Model) toggle() tea.Cmd {
	if !m.state.HasTrack() {
		if i, ok := m.focus.Index(); ok {
			return m.playAt(i)
		}
		if m.selected >= 0 {
			return m.playAt(m.selected)
		}
	}
	return m.run("toggle", m.player.TogglePlayback)
}

func (m Model) setVolume(percent int) tea.Cmd {
	percent = max(0, min(100, percent))
	return m.run("volume", func(ctx context.Context) error {
		return m.player.SetVolume(ctx, percent)
	})
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	l := m.layout()

	if i, ok := l.crateIndex(m, msg.X, msg.Y); ok {
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			focus := m.focusAt(i)
			play := m.playAt(i)
			return m, tea.Batch(focus, play)
		case msg.Button == tea.MouseButtonWheelDown:
			return m, m.focusAt(min(i+1, m.albums.Len()-1))
		case msg.Button == tea.MouseButtonWheelUp:
			return m, m.focusAt(max(i-1, 0))
		default:
			return m, m.focusAt(i)
		}
	}

	// Anywhere off a sleeve puts the focused one back, including the
	// crate's title and empty rows.
	if _, ok := m.focus.Index(); ok {
		m.focus.Leave()
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == l.controlsY {
		switch m.controls.HitTest(msg.X-1, m.state.IsPlaying) {
		case components.ActionPrevious:
			return m, m.run("previous", m.player.Previous)
		case components.ActionToggle:
			cmd := m.toggle()
			return m, cmd
		case components.ActionNext:
			return m, m.run("next", m.player.Next)
		}
	}

	return m, nil
}

// layout is the screen geometry shared by View and mouse hit testing.
type layout struct {
	leftWidth    int
	rightWidth   int
	bodyHeight   int
	crateHeight  int
	historyHeight int
	controlsY    int
}

const headerHeight = 1

func (m Model) layout() layout {
	helpHeight := lipgloss.Height(m.help.View(keys))
	l := layout{
		leftWidth:  m.width * 55 / 100,
		bodyHeight: m.height - headerHeight - 2 - helpHeight,
	}
	l.rightWidth = m.width - l.leftWidth
	l.crateHeight = l.bodyHeight * 2 / 3
	l.historyHeight = l.bodyHeight - l.crateHeight
	l.controlsY = headerHeight + l.bodyHeight
	return l
}

func (l layout) inCrate(x, y int) bool {
	return x >= l.leftWidth && y >= headerHeight && y < headerHeight+l.crateHeight
}

func (l layout) crateIndex(m Model, x, y int) (int, bool) {
	if !l.inCrate(x, y) {
		return 0, false
	}
	row := y - headerHeight - components.CrateListTop
	return m.crateUI.RowAt(row, components.CrateRows(l.crateHeight), m.albums.Len())
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	l := m.layout()
	if l.bodyHeight < 8 || l.leftWidth < 20 {
		return styles.Muted.Render("Window too small for the turntable")
	}

	focused, ok := m.focus.Index()
	if !ok {
		focused = crate.NoFocus
	}
	playingURI := ""
	if m.state.Album != nil {
		playingURI = m.state.Album.URI
	}
	errText := ""
	if err := m.albums.Err(); err != nil {
		errText = err.Error()
	}

	crateView := m.crateUI.Render(components.CrateView{
		Albums:     m.albums.Albums(),
		Focused:    focused,
		Selected:   m.selected,
		PlayingURI: playingURI,
		Loading:    m.albums.Loading(),
		HasMore:    m.albums.HasMore(),
		Err:        errText,
	}, l.rightWidth, l.crateHeight)
	historyView := m.history.Render(l.rightWidth, l.historyHeight)

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderTurntable(l.leftWidth, l.bodyHeight),
		lipgloss.JoinVertical(lipgloss.Left, crateView, historyView),
	)

	controls := lipgloss.NewStyle().Padding(0, 1).Render(
		m.controls.Render(components.ControlsView{
			State:         m.state,
			Volume:        m.volume,
			AlbumProgress: turntable.Clamp01(turntable.AlbumProgress(m.state)),
		}, m.width-2))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		main,
		controls,
		lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(keys)),
	)
}

func (m Model) renderHeader() string {
	parts := []string{styles.Title.Render("vinyl")}

	if m.opts.Demo {
		parts = append(parts, styles.Badge.Render("DEMO"))
	}

	if !m.ready {
		parts = append(parts, m.spinner.View()+styles.Muted.Render("Connecting to Spotify..."))
	} else if m.state.Device != nil {
		parts = append(parts, styles.Dim.Render("on "+m.state.Device.Name))
	}

	errText := m.player.LastError()
	if errText == "" {
		errText = m.lastError
	}
	if errText != "" {
		parts = append(parts, styles.Error.Render(styles.Truncate(errText, m.width/2)))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, "  "))
}

func (m Model) renderTurntable(width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 2

	sleeveWidth := innerWidth * 2 / 5
	deckWidth := innerWidth - sleeveWidth

	sleeve := m.sleeveUI.Render(m.displayedAlbum(), sleeveWidth, innerHeight, m.sleeve.Position())
	deck := m.deck.Render(deckWidth, innerHeight, turntable.RecordAngle(m.spin), m.arm.Position())

	return styles.Panel(false).
		Width(width - 2).
		Height(height - 2).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, sleeve, deck))
}

// Run starts the provider, the playback watcher and the UI, and blocks
// until the UI exits.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
		opts.Logger = logger
	}

	go func() {
		if err := opts.Provider.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Playback provider stopped")
		}
	}()

	watcher := tail.NewWatcher(opts.Provider, opts.PollInterval)
	go func() { _ = watcher.Start(ctx) }()

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.Mouse {
		programOpts = append(programOpts, tea.WithMouseAllMotion())
	}

	p := tea.NewProgram(NewModel(ctx, opts, watcher.Events()), programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
