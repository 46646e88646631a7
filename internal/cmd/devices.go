package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/theclicker/theclicker/internal/device"
)

// Devices lists the input devices a query can match.
type Devices struct{}

// Run is called by Kong when the devices command is executed.
func (d *Devices) Run(logger *slog.Logger) error {
	devices, err := device.List()
	if err != nil {
		return fmt.Errorf("cannot list input devices: %w", err)
	}
	logger.Debug("Listed input devices", "count", len(devices))
	return printDevices(os.Stdout, devices)
}

func printDevices(w io.Writer, devices []device.Info) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tNAME\tINTERFACE")
	for _, d := range devices {
		iface := "evdev (run)"
		if d.Legacy() {
			iface = "legacy (run-legacy)"
			if d.Mice() {
				iface = "legacy, all mice"
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Path, d.Name, iface)
	}
	return tw.Flush()
}
