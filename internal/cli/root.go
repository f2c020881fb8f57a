package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/config"
	verrors "github.com/tessro/vinyl/internal/errors"
	"github.com/tessro/vinyl/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg      *config.Config
	logger   *logrus.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "vinyl",
	Short: "A turntable for your Spotify albums",
	Long: `Vinyl draws a spinning record, a tonearm that tracks your progress through
the album and a crate of your saved albums to flip through.

Run without a Spotify client ID (or with --demo) to play mock records.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	// With no subcommand the turntable opens.
	RunE:          runUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.vinylrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&uiDemo, "demo", false, "play mock records instead of Spotify")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return verrors.WithSuggestion(fmt.Errorf("failed to load config: %w", err), "Check the file with 'vinyl config show' or recreate it with 'vinyl config init'")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}

	return initLogger()
}

// initLogger sets up logging for plain commands: stderr, or the configured
// log file. The turntable replaces it with its own logger.
func initLogger() error {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	l, closer, err := logging.New(logging.Options{Level: level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	logger = l
	closeLog = closer
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, verrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
