package tail

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tessro/vinyl/internal/metrics"
)

// Record logs every event from w until the watcher's channel closes or ctx
// is done.
func Record(ctx context.Context, w *Watcher, provider string, logger *logrus.Logger, m *metrics.Metrics) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.Events():
			if !ok {
				return
			}
			LogEvent(e, provider, logger, m)
		}
	}
}

// LogEvent logs one event and counts it if it is a track change.
func LogEvent(e Event, provider string, logger *logrus.Logger, m *metrics.Metrics) {
	entry := logger.WithFields(fields(e)).WithField("provider", provider)
	switch e.Type {
	case EventTrackChange:
		m.TrackChanged(provider)
		entry.Info("Track changed")
	case EventAlbumChange:
		entry.Info("Album changed")
	default:
		entry.Debug("Playback event")
	}
}

func fields(e Event) logrus.Fields {
	f := logrus.Fields{"event": e.Type.String()}
	if c := e.Current; c != nil {
		if c.Track != nil {
			f["track"] = c.Track.Title
			f["artist"] = c.Track.Artist
			f["track_number"] = c.Track.TrackNumber
		}
		if c.Album != nil {
			f["album"] = c.Album.Name
		}
		if e.Type == EventVolumeChange {
			f["volume"] = c.Volume
		}
		if e.Type == EventDeviceChange && c.Device != nil {
			f["device"] = c.Device.Name
		}
	}
	return f
}
