package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/spotify/player"
)

const volumeStep = 10

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Pause the current playback. The tonearm returns to its rest.`,
	RunE: transport("paused", "⏸ Paused", func(ctx context.Context, p *player.Player) error {
		return p.Pause(ctx)
	}),
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Long:  `Resume paused playback.`,
	RunE: transport("playing", "▶ Resumed", func(ctx context.Context, p *player.Player) error {
		return p.Resume(ctx)
	}),
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	Long:  `Skip to the next track on the album.`,
	RunE: transport("next", "⏭ Next track", func(ctx context.Context, p *player.Player) error {
		return p.Next(ctx)
	}),
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	Long:  `Go back to the previous track on the album.`,
	RunE: transport("previous", "⏮ Previous track", func(ctx context.Context, p *player.Player) error {
		return p.Previous(ctx)
	}),
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  vinyl volume 50      # Set volume to 50%
  vinyl volume --up    # Increase volume by 10%
  vinyl volume --down  # Decrease volume by 10%`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

func init() {
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 10%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 10%")

	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
	rootCmd.AddCommand(volumeCmd)
}

// transport builds a RunE that syncs the player and applies fn.
func transport(status, message string, fn func(ctx context.Context, p *player.Player) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, _, err := syncPlayer(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, p); err != nil {
			return err
		}

		if JSONOutput() {
			return printJSON(map[string]string{"status": status})
		}
		fmt.Println(message)
		return nil
	}
}

// targetVolume works out the requested level from args and flags.
func targetVolume(current int, args []string, up, down bool) (int, error) {
	switch {
	case len(args) == 1:
		level, err := strconv.Atoi(args[0])
		if err != nil || level < 0 || level > 100 {
			return 0, verrors.WithSuggestion(fmt.Errorf("invalid volume %q", args[0]), "Use a number between 0 and 100")
		}
		return level, nil
	case up && down:
		return 0, fmt.Errorf("--up and --down cannot be combined")
	case up:
		return min(current+volumeStep, 100), nil
	case down:
		return max(current-volumeStep, 0), nil
	default:
		return current, nil
	}
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	p, state, err := syncPlayer(ctx)
	if err != nil {
		return err
	}

	level, err := targetVolume(state.Volume, args, volumeUp, volumeDown)
	if err != nil {
		return err
	}

	// With no change requested, report the current level.
	if len(args) == 0 && !volumeUp && !volumeDown {
		if JSONOutput() {
			return printJSON(map[string]int{"volume": level})
		}
		fmt.Printf("🔊 %d%%\n", level)
		return nil
	}

	if err := p.SetVolume(ctx, level); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]int{"volume": level})
	}
	fmt.Printf("🔊 Volume set to %d%%\n", level)
	return nil
}
