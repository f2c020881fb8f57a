package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tessro/vinyl/internal/core"
	"github.com/tessro/vinyl/internal/demo"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List Spotify Connect devices",
	Long: `Lists the Spotify Connect devices vinyl can play on. The active device is
marked with ●. Set a preferred one with 'vinyl config set-device'.`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

type deviceInfo struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      core.DeviceType `json:"type"`
	IsActive  bool            `json:"is_active"`
	Preferred bool            `json:"preferred"`
	Volume    *int            `json:"volume,omitempty"`
}

func runDevices(cmd *cobra.Command, args []string) error {
	var devices []deviceInfo

	if cfg.DemoMode() {
		d := demo.New(demo.Options{Logger: logger}).State().Device
		if d != nil {
			devices = append(devices, deviceInfo{ID: d.ID, Name: d.Name, Type: d.Type, IsActive: true})
		}
	} else {
		c, err := newSpotifyClient()
		if err != nil {
			return err
		}
		list, err := c.GetDevices(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get devices: %w", err)
		}
		for _, d := range list {
			devices = append(devices, deviceInfo{
				ID:        d.ID,
				Name:      d.Name,
				Type:      core.DeviceType(d.Type),
				IsActive:  d.IsActive,
				Preferred: cfg.Spotify.Device != "" && (d.Name == cfg.Spotify.Device || d.ID == cfg.Spotify.Device),
				Volume:    d.VolumePercent,
			})
		}
	}

	if JSONOutput() {
		if devices == nil {
			devices = []deviceInfo{}
		}
		return printJSON(devices)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found. Open Spotify on a phone, computer or speaker.")
		return nil
	}

	headers := []string{"", "NAME", "TYPE", "VOLUME"}
	if Verbose() {
		headers = append(headers, "ID")
	}
	t := NewTable(headers...)
	for _, d := range devices {
		name := d.Name
		if d.Preferred {
			name += " (preferred)"
		}
		volume := "-"
		if d.Volume != nil {
			volume = strconv.Itoa(*d.Volume) + "%"
		}
		row := []string{StatusIcon(d.IsActive), name, string(d.Type), volume}
		if Verbose() {
			row = append(row, d.ID)
		}
		t.Row(row...)
	}
	t.Flush()
	return nil
}
