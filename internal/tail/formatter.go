package tail

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/vinyl/internal/core"
)

// kind holds the printable forms of an EventType.
type kind struct {
	name  string
	emoji string
}

var kinds = map[EventType]kind{
	EventTrackChange:   {"track_change", "🎵"},
	EventAlbumChange:   {"album_change", "💿"},
	EventTrackComplete: {"track_complete", "✅"},
	EventTrackSkip:     {"track_skip", "⏭️"},
	EventPause:         {"pause", "⏸️"},
	EventResume:        {"resume", "▶️"},
	EventVolumeChange:  {"volume_change", "🔊"},
	EventDeviceChange:  {"device_change", "📱"},
}

func kindOf(t EventType) kind {
	if k, ok := kinds[t]; ok {
		return k
	}
	return kind{"unknown", "❓"}
}

// String returns the snake_case name of the event type.
func (t EventType) String() string {
	return kindOf(t).name
}

// Formatter renders events as single lines for `vinyl tail`.
type Formatter struct {
	emoji     bool
	timestamp bool
	tmpl      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji prefixes lines with the event's emoji.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) { f.emoji = enabled }
}

// WithTimestamp prefixes lines with the wall clock time.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) { f.timestamp = enabled }
}

// WithTemplate replaces the default line with a text/template. A template
// that fails to parse is ignored.
func WithTemplate(text string) FormatterOption {
	return func(f *Formatter) {
		if text == "" {
			return
		}
		if t, err := template.New("event").Parse(text); err == nil {
			f.tmpl = t
		}
	}
}

// NewFormatter returns a Formatter. Emoji are on by default.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{emoji: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders e.
func (f *Formatter) Format(e Event) string {
	if f.tmpl != nil {
		var sb strings.Builder
		if err := f.tmpl.Execute(&sb, newLineData(e)); err == nil {
			return sb.String()
		}
	}

	var parts []string
	if f.timestamp {
		parts = append(parts, e.Timestamp.Format(time.TimeOnly))
	}
	if f.emoji {
		parts = append(parts, kindOf(e.Type).emoji)
	}
	parts = append(parts, Describe(e))
	return strings.Join(parts, " ")
}

// lineData is the value templates execute against.
type lineData struct {
	Type        string
	Emoji       string
	Timestamp   time.Time
	Time        string
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	TotalTracks int
	Device      string
	Volume      int
}

func newLineData(e Event) lineData {
	k := kindOf(e.Type)
	d := lineData{
		Type:      k.name,
		Emoji:     k.emoji,
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format(time.TimeOnly),
	}
	s := e.Current
	if s == nil {
		return d
	}
	d.Volume = s.Volume
	if s.Track != nil {
		d.Title, d.Artist, d.Album = s.Track.Title, s.Track.Artist, s.Track.Album
		d.TrackNumber = s.Track.TrackNumber
	}
	if s.Album != nil {
		d.Album, d.TotalTracks = s.Album.Name, s.Album.TotalTracks
	}
	if s.Device != nil {
		d.Device = s.Device.Name
	}
	return d
}

// Describe returns the plain-text description of e, without emoji or time.
func Describe(e Event) string {
	cur, prev := e.Current, e.Previous
	switch e.Type {
	case EventTrackChange:
		if !hasTrack(cur) {
			return "Track changed"
		}
		line := "Now playing: " + trackLine(cur.Track)
		if cur.Album != nil && cur.Album.TotalTracks > 0 && cur.Track.TrackNumber > 0 {
			line += fmt.Sprintf(" [%d/%d]", cur.Track.TrackNumber, cur.Album.TotalTracks)
		}
		return line
	case EventAlbumChange:
		if cur == nil || cur.Album == nil {
			return "Album changed"
		}
		a := cur.Album
		line := "On the platter: " + a.ArtistLine() + " - " + a.Name
		if year := a.Year(); year != "" {
			line += " (" + year + ")"
		}
		return line
	case EventTrackComplete:
		if !hasTrack(prev) {
			return "Track completed"
		}
		return "Finished: " + trackLine(prev.Track)
	case EventTrackSkip:
		if !hasTrack(prev) {
			return "Track skipped"
		}
		return "Skipped: " + trackLine(prev.Track)
	case EventPause:
		return "Paused"
	case EventResume:
		return "Resumed"
	case EventVolumeChange:
		if cur == nil {
			return "Volume changed"
		}
		return fmt.Sprintf("Volume: %d%%", cur.Volume)
	case EventDeviceChange:
		if cur == nil || cur.Device == nil {
			return "Device changed"
		}
		return "Device: " + cur.Device.Name
	}
	return "Unknown event"
}

func hasTrack(s *core.PlaybackState) bool {
	return s != nil && s.Track != nil
}

func trackLine(t *core.Track) string {
	return t.Artist + " - " + t.Title
}
