package cli

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/library"
	"github.com/tessro/vinyl/internal/logging"
	"github.com/tessro/vinyl/internal/metrics"
	"github.com/tessro/vinyl/internal/tui"
)

var uiDemo bool

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Open the turntable",
	Long: `Open the interactive turntable.

The screen shows:
  • The turntable - a spinning record with a tonearm that tracks album progress
  • The sleeve of the album on the platter
  • The crate - your saved albums, lifted as you flip through them
  • Played - tracks finished or skipped this session

Keyboard shortcuts:
  j/k, ↓/↑     Flip through the crate
  Esc          Put the sleeve back
  Enter        Play the focused album
  Space        Play/Pause
  n / p        Next / previous track
  +/-          Volume up/down
  r            Reload the crate
  ?            Help
  q, Ctrl+C    Quit

The mouse works too: hover the crate to flip, click to play, click the
transport buttons to control playback.`,
	RunE: runUI,
}

func init() {
	uiCmd.Flags().BoolVar(&uiDemo, "demo", false, "play mock records instead of Spotify")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// The UI owns the terminal; only a log file may receive output.
	if cfg.Log.File == "" {
		logger = logging.Discard()
	}

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	b, err := newBackend(uiDemo, m)
	if err != nil {
		return err
	}

	logger.WithField("provider", b.name).Info("Opening turntable")

	return tui.Run(ctx, tui.Options{
		Provider:     b.provider,
		ProviderName: b.name,
		Albums:       library.NewCollection(b.albums, logger, m),
		Demo:         b.demo,
		FPS:          cfg.TUI.FPS,
		Mouse:        cfg.TUI.Mouse,
		Theme:        cfg.TUI.Theme,
		PollInterval: time.Duration(cfg.Playback.PollInterval) * time.Millisecond,
		Logger:       logger,
		Metrics:      m,
	})
}
