// Package metrics exposes vinyl's playback and browsing counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds the collectors vinyl updates while running.
type Metrics struct {
	registry *prometheus.Registry

	Polls         *prometheus.CounterVec
	PollErrors    *prometheus.CounterVec
	Commands      *prometheus.CounterVec
	TrackChanges  *prometheus.CounterVec
	FocusSessions prometheus.Counter
	AlbumPages    prometheus.Counter
	AlbumProgress prometheus.Gauge
}

// New creates a Metrics instance on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "playback_polls_total",
			Help:      "Playback state refreshes, by provider.",
		}, []string{"provider"}),
		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "playback_poll_errors_total",
			Help:      "Failed playback state refreshes, by provider.",
		}, []string{"provider"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "transport_commands_total",
			Help:      "Transport commands issued, by command and result.",
		}, []string{"command", "result"}),
		TrackChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "track_changes_total",
			Help:      "Track changes observed between polls, by provider.",
		}, []string{"provider"}),
		FocusSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "crate_focus_sessions_total",
			Help:      "Crate focus sessions started.",
		}),
		AlbumPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vinyl",
			Name:      "album_pages_loaded_total",
			Help:      "Saved-album pages fetched.",
		}),
		AlbumProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vinyl",
			Name:      "album_progress_ratio",
			Help:      "Progress through the playing album, 0 to 1.",
		}),
	}

	m.registry.MustRegister(
		m.Polls,
		m.PollErrors,
		m.Commands,
		m.TrackChanges,
		m.FocusSessions,
		m.AlbumPages,
		m.AlbumProgress,
	)
	return m
}

// Command records the outcome of a transport command.
func (m *Metrics) Command(name string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Commands.WithLabelValues(name, result).Inc()
}

// Poll records a playback refresh for provider.
func (m *Metrics) Poll(provider string, err error) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(provider).Inc()
	if err != nil {
		m.PollErrors.WithLabelValues(provider).Inc()
	}
}

// TrackChanged records a track change seen by provider.
func (m *Metrics) TrackChanged(provider string) {
	if m == nil {
		return
	}
	m.TrackChanges.WithLabelValues(provider).Inc()
}

// FocusSession records a new crate focus session.
func (m *Metrics) FocusSession() {
	if m == nil {
		return
	}
	m.FocusSessions.Inc()
}

// AlbumPage records a fetched page of saved albums.
func (m *Metrics) AlbumPage() {
	if m == nil {
		return
	}
	m.AlbumPages.Inc()
}

// SetProgress records album progress.
func (m *Metrics) SetProgress(p float64) {
	if m == nil {
		return
	}
	m.AlbumProgress.Set(p)
}

// Handler returns the HTTP handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Serve runs a /metrics listener on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *logrus.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
