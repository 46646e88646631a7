package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/theclicker/theclicker/internal/clicker"
	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/device"
	"github.com/theclicker/theclicker/internal/log"
)

// RunLegacy drives the autoclicker from a PS/2 byte stream. Left and right
// buttons toggle clicking, the middle button toggles the lock.
type RunLegacy struct {
	Device               string `short:"d" required:"" help:"Legacy device name, or a path when it starts with '/' (e.g. /dev/input/mouse0)" env:"THECLICKER_DEVICE"`
	Cooldown             Millis `short:"c" default:"25" help:"Delay between clicks in milliseconds or as a duration (25, 40ms)"`
	CooldownPressRelease Millis `short:"C" default:"0" help:"Delay between press and release in milliseconds or as a duration"`
}

// Run is called by Kong when the run-legacy command is executed.
func (r *RunLegacy) Run(logger *slog.Logger, rawLogger log.RawLogger, globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger, globals, os.Stdout)
}

// Start opens the legacy device and clicks until ctx ends or the device fails.
func (r *RunLegacy) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, globals *Globals, stdout io.Writer) error {
	_, _ = fmt.Fprintf(stdout, "Using args: `%s`\n", usingArgs(globals, r.Args()))

	info, err := device.Resolve(r.Device)
	if err != nil {
		return err
	}
	input, err := device.OpenLegacy(info)
	if err != nil {
		return err
	}
	logger.Debug("Legacy device", "path", input.Path, "name", input.Name)

	output := device.NewOutput(device.OutputName)
	output.AddMouseAttributes()
	if err := output.Create(); err != nil {
		_ = input.Close()
		return err
	}
	defer output.Close()

	stopClose := context.AfterFunc(ctx, func() { _ = input.Close() })
	defer func() {
		if stopClose() {
			_ = input.Close()
		}
	}()

	cfg := clicker.Config{
		Timing: clicker.Timing{
			Cooldown:     r.Cooldown.Duration(),
			PressRelease: r.CooldownPressRelease.Duration(),
		},
	}
	c := clicker.New(cfg, output, clicker.NewStatusLine(stdout, globals.Beep), logger, rawLogger)
	return c.RunLegacy(ctx, input)
}

// Args renders the command line equivalent to r.
func (r *RunLegacy) Args() string {
	return fmt.Sprintf("run-legacy -d %s -c %s -C %s", strconv.Quote(r.Device), r.Cooldown, r.CooldownPressRelease)
}

// ToConfig converts r to its persisted form.
func (r *RunLegacy) ToConfig(globals *Globals) config.Legacy {
	return config.Legacy{
		Common:               config.Common{Command: config.CommandRunLegacy, Beep: globals.Beep, Debug: globals.Debug},
		Device:               r.Device,
		Cooldown:             r.Cooldown.Milliseconds(),
		CooldownPressRelease: r.CooldownPressRelease.Milliseconds(),
	}
}

// LegacyFromConfig is the inverse of ToConfig.
func LegacyFromConfig(c config.Legacy) RunLegacy {
	return RunLegacy{
		Device:               c.Device,
		Cooldown:             millis(c.Cooldown),
		CooldownPressRelease: millis(c.CooldownPressRelease),
	}
}
