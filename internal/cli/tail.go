package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/demo"
	"github.com/tessro/vinyl/internal/metrics"
	"github.com/tessro/vinyl/internal/tail"
)

var (
	tailDemo      bool
	tailNoEmoji   bool
	tailTimestamp bool
	tailQuiet     bool
	tailFormat    string
	tailInterval  time.Duration
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow playback changes in real-time",
	Long: `Watch for playback state changes and print them as they happen.

Events tracked:
  - Track changes (new song started)
  - Track completions (song finished)
  - Track skips (song skipped before completion)
  - Album changes (a new record on the platter)
  - Pause/Resume
  - Volume changes
  - Device changes

With --quiet nothing is printed; events only go to the log and, when
metrics.addr is set, to the Prometheus counters.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().BoolVar(&tailDemo, "demo", false, "follow a demo record instead of Spotify")
	tailCmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	tailCmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	tailCmd.Flags().BoolVarP(&tailQuiet, "quiet", "q", false, "only log and count events")
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	tailCmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default: playback.poll_interval)")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	b, err := newBackend(tailDemo, m)
	if err != nil {
		return err
	}

	go func() {
		if err := b.provider.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("Playback provider stopped")
		}
	}()

	// Nothing plays in demo mode until a record goes on.
	if b.demo && len(demo.Albums) > 0 {
		if err := b.provider.Play(ctx, demo.Albums[0]); err != nil {
			return err
		}
	}

	interval := tailInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Playback.PollInterval) * time.Millisecond
	}
	watcher := tail.NewWatcher(b.provider, interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	if tailQuiet {
		tail.Record(ctx, watcher, b.name, logger, m)
		return waitWatcher(errCh)
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)

	for event := range watcher.Events() {
		tail.LogEvent(event, b.name, logger, m)
		fmt.Println(formatter.Format(event))
	}
	return waitWatcher(errCh)
}

// waitWatcher treats cancellation as a clean exit.
func waitWatcher(errCh <-chan error) error {
	err := <-errCh
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
