package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/config"
	verrors "github.com/tessro/vinyl/internal/errors"
)

const configHeader = "# Vinyl Configuration\n# https://github.com/tessro/vinyl\n\n"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

// settableKeys lists the keys 'config set' accepts and how to parse them.
var settableKeys = map[string]keyKind{
	"spotify.client_id":            kindString,
	"spotify.redirect_uri":         kindString,
	"spotify.device":               kindString,
	"playback.mode":                kindString,
	"playback.poll_interval":       kindInt,
	"playback.volume":              kindInt,
	"playback.demo_track_duration": kindInt,
	"tui.theme":                    kindString,
	"tui.fps":                      kindInt,
	"tui.mouse":                    kindBool,
	"metrics.addr":                 kindString,
	"log.level":                    kindString,
	"log.file":                     kindString,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing vinyl configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  spotify.client_id             Spotify client ID
  spotify.redirect_uri          OAuth redirect URI (loopback)
  spotify.device                Preferred playback device name or ID
  playback.mode                 auto, live or demo
  playback.poll_interval        Playback poll interval in milliseconds
  playback.volume               Initial volume (0-100)
  playback.demo_track_duration  Demo track length in milliseconds
  tui.theme                     auto, dark, light or catppuccin
  tui.fps                       Animation frame rate
  tui.mouse                     Mouse support (true/false)
  metrics.addr                  Prometheus listen address, empty to disable
  log.level                     debug, info, warn or error
  log.file                      Log file path

Examples:
  vinyl config set spotify.device "Kitchen"
  vinyl config set playback.mode demo`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetDeviceCmd = &cobra.Command{
	Use:   "set-device",
	Short: "Interactively select the preferred device",
	Long:  `Shows a picker to select the Spotify Connect device vinyl plays on.`,
	RunE:  runConfigSetDevice,
}

var configSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure vinyl",
	Long:  `Walks through the Spotify client ID, playback mode and theme, then writes the config file.`,
	RunE:  runConfigSetup,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetDeviceCmd)
	configCmd.AddCommand(configSetupCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return verrors.WithSuggestion(fmt.Errorf("config file not found at %s", configPath), "Run 'vinyl config init' first")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "created", "path": configPath})
	}
	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set your Spotify client ID with 'vinyl config setup' or VINYL_SPOTIFY_CLIENT_ID")
	fmt.Println("  2. Run 'vinyl auth login' to authenticate with Spotify")
	fmt.Println("  3. Run 'vinyl' to open the turntable (or 'vinyl --demo' right away)")
	return nil
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.Path()
}

// writeConfigFile encodes v as TOML under the standard header.
func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// readRawConfig decodes path into a generic table, or an empty one when
// the file does not exist yet.
func readRawConfig(path string) (map[string]any, error) {
	raw := make(map[string]any)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return raw, nil
}

// setRawValue parses value for key and stores it in raw. The result must
// still decode into a valid Config.
func setRawValue(raw map[string]any, key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		known := make([]string, 0, len(settableKeys))
		for k := range settableKeys {
			known = append(known, k)
		}
		sort.Strings(known)
		return fmt.Errorf("%w: unknown key %q (known: %s)", verrors.ErrInvalidConfig, key, strings.Join(known, ", "))
	}

	var typed any
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", verrors.ErrInvalidConfig, key)
		}
		typed = int64(i)
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", verrors.ErrInvalidConfig, key)
		}
		typed = b
	default:
		typed = value
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		raw[section] = sectionMap
	}
	previous, had := sectionMap[field]
	sectionMap[field] = typed

	if err := validateRaw(raw); err != nil {
		if had {
			sectionMap[field] = previous
		} else {
			delete(sectionMap, field)
		}
		return err
	}
	return nil
}

// validateRaw round-trips raw through Config so bad values never reach disk.
func validateRaw(raw map[string]any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return err
	}
	c := config.Default()
	if _, err := toml.Decode(buf.String(), c); err != nil {
		return fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", verrors.ErrInvalidConfig, err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	raw, err := readRawConfig(configPath)
	if err != nil {
		return err
	}
	if err := setRawValue(raw, key, value); err != nil {
		return err
	}
	if err := writeConfigFile(configPath, raw); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"key": key, "path": configPath}).Debug("Config updated")

	if JSONOutput() {
		return printJSON(map[string]string{"status": "updated", "key": key, "value": value})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetDevice(cmd *cobra.Command, args []string) error {
	c, err := newSpotifyClient()
	if err != nil {
		return err
	}

	devices, err := c.GetDevices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}
	if len(devices) == 0 {
		return verrors.ErrNoDevices
	}

	var options []huh.Option[string]
	for _, d := range devices {
		label := d.Name
		if d.Type != "" {
			label = fmt.Sprintf("%s (%s)", d.Name, d.Type)
		}
		if d.IsActive {
			label += " [active]"
		}
		options = append(options, huh.NewOption(label, d.Name))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select playback device").
				Description("Vinyl plays here when no device is active").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	return runConfigSet(cmd, []string{"spotify.device", selected})
}

// setupAnswers holds the values collected by the setup form.
type setupAnswers struct {
	ClientID string
	Mode     string
	Theme    string
	Mouse    bool
}

func setupForm(a *setupAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Vinyl setup").
				Description("Create an app at https://developer.spotify.com/dashboard and\nadd the redirect URI "+cfg.Spotify.RedirectURI+".\nLeave the client ID empty to play mock records."),
			huh.NewInput().
				Title("Spotify client ID").
				Value(&a.ClientID).
				Validate(func(s string) error {
					if strings.ContainsAny(s, " \t") {
						return errors.New("client ID cannot contain spaces")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Playback").
				Options(
					huh.NewOption("Auto (Spotify when configured, otherwise demo)", config.ModeAuto),
					huh.NewOption("Spotify", config.ModeLive),
					huh.NewOption("Demo records", config.ModeDemo),
				).
				Value(&a.Mode),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Match terminal", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
					huh.NewOption("Catppuccin", "catppuccin"),
				).
				Value(&a.Theme),
			huh.NewConfirm().
				Title("Enable mouse?").
				Value(&a.Mouse),
		),
	)
}

func runConfigSetup(cmd *cobra.Command, args []string) error {
	answers := setupAnswers{
		ClientID: cfg.Spotify.ClientID,
		Mode:     cfg.Playback.Mode,
		Theme:    cfg.TUI.Theme,
		Mouse:    cfg.TUI.Mouse,
	}
	if err := setupForm(&answers).Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	configPath := getConfigPath()
	raw, err := readRawConfig(configPath)
	if err != nil {
		return err
	}
	for key, value := range map[string]string{
		"spotify.client_id": strings.TrimSpace(answers.ClientID),
		"playback.mode":     answers.Mode,
		"tui.theme":         answers.Theme,
		"tui.mouse":         strconv.FormatBool(answers.Mouse),
	} {
		if err := setRawValue(raw, key, value); err != nil {
			return err
		}
	}
	if err := writeConfigFile(configPath, raw); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "saved", "path": configPath})
	}
	printSetupSummary(os.Stdout, configPath, answers)
	return nil
}

func printSetupSummary(w io.Writer, path string, a setupAnswers) {
	fmt.Fprintf(w, "Saved %s\n", path)
	if a.ClientID == "" || a.Mode == config.ModeDemo {
		fmt.Fprintln(w, "Run 'vinyl' to spin the demo records.")
		return
	}
	fmt.Fprintln(w, "Run 'vinyl auth login', then 'vinyl' to open the turntable.")
}
