package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/theclicker/theclicker/internal/clicker"
	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/device"
	"github.com/theclicker/theclicker/internal/log"
)

type Run struct {
	Device               string    `short:"d" required:"" help:"Device name, or a path when it starts with '/'. An exact name match wins, otherwise the first name containing it is used" env:"THECLICKER_DEVICE"`
	OverrideDevice       string    `short:"o" help:"Device whose override keys pause clicking while held (keyboard recommended)" env:"THECLICKER_OVERRIDE_DEVICE"`
	OverrideKey          []KeyCode `short:"k" help:"Override key code or name, repeatable (e.g. 1 KEY_ESC, 88 KEY_F12)"`
	LeftBind             KeyCode   `short:"l" required:"" help:"Bind the left autoclicker to a key (mouse: 275 BTN_SIDE, keyboard: 26 KEY_LEFTBRACE)"`
	RightBind            KeyCode   `short:"r" required:"" help:"Bind the right autoclicker to a key (mouse: 276 BTN_EXTRA, keyboard: 27 KEY_RIGHTBRACE)"`
	LockUnlockBind       *KeyCode  `short:"T" help:"Bind lock/unlock to a key (mouse: 274 BTN_MIDDLE). Left and right binds only work while unlocked, useful for mice without side buttons"`
	Hold                 bool      `short:"H" help:"Hold mode: clicking lasts while the bind is held instead of toggling on press"`
	Grab                 bool      `help:"Grab the device and re-emit its input through the virtual device, hiding bind presses from other programs"`
	Cooldown             Millis    `short:"c" default:"25" help:"Delay between clicks in milliseconds or as a duration (25, 40ms)"`
	CooldownPressRelease Millis    `short:"C" default:"0" help:"Delay between press and release in milliseconds or as a duration"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger, globals *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Start(ctx, logger, rawLogger, globals, os.Stdout)
}

// Start opens the devices and clicks until ctx ends or the main device fails.
func (r *Run) Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, globals *Globals, stdout io.Writer) error {
	_, _ = fmt.Fprintf(stdout, "Using args: `%s`\n", usingArgs(globals, r.Args()))

	info, err := device.Resolve(r.Device)
	if err != nil {
		return err
	}
	input, err := device.OpenInput(info)
	if err != nil {
		return err
	}
	closers := []io.Closer{input}
	logger.Debug("Main device", "path", input.Path, "name", input.Name)

	var override clicker.EventSource
	if r.OverrideDevice != "" {
		od, err := r.openOverride(logger)
		if err != nil {
			_ = input.Close()
			return err
		}
		closers = append(closers, od)
		override = od
	}

	output := device.NewOutput(device.OutputName)
	output.AddMouseAttributes()
	if r.Grab {
		output.CopyAttributes(input)
	}
	if err := output.Create(); err != nil {
		closeAll(closers)
		return err
	}
	defer output.Close()

	if r.Grab {
		if err := input.Grab(true); err != nil {
			closeAll(closers)
			return fmt.Errorf("cannot grab input device %s: %w", input.Path, err)
		}
	}

	// Closing the devices unblocks the readers once ctx ends.
	stopClose := context.AfterFunc(ctx, func() { closeAll(closers) })
	defer func() {
		if stopClose() {
			closeAll(closers)
		}
	}()

	c := clicker.New(r.clickerConfig(), output, clicker.NewStatusLine(stdout, globals.Beep), logger, rawLogger)
	return c.Run(ctx, input, override)
}

func (r *Run) openOverride(logger *slog.Logger) (*device.Input, error) {
	info, err := device.Resolve(r.OverrideDevice)
	if err != nil {
		return nil, err
	}
	od, err := device.OpenInput(info)
	if err != nil {
		return nil, err
	}
	logger.Debug("Override device",
		"path", od.Path,
		"name", od.Name,
		"key_codes", od.KeyCount(),
		"override_keys", keyCodes(r.OverrideKey),
	)
	if len(r.OverrideKey) == 0 {
		logger.Warn("Override device configured without override keys", "device", od.Path)
	}
	return od, nil
}

func (r *Run) clickerConfig() clicker.Config {
	b := clicker.Bindings{
		Left:         uint16(r.LeftBind),
		Right:        uint16(r.RightBind),
		OverrideKeys: keyCodes(r.OverrideKey),
		Hold:         r.Hold,
		Grab:         r.Grab,
	}
	if r.LockUnlockBind != nil {
		code := uint16(*r.LockUnlockBind)
		b.LockUnlock = &code
	}
	return clicker.Config{
		Bindings: b,
		Timing: clicker.Timing{
			Cooldown:     r.Cooldown.Duration(),
			PressRelease: r.CooldownPressRelease.Duration(),
		},
	}
}

// Args renders the command line equivalent to r.
func (r *Run) Args() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run -d %s -l %s -r %s -c %s -C %s",
		strconv.Quote(r.Device), r.LeftBind, r.RightBind, r.Cooldown, r.CooldownPressRelease)
	if r.OverrideDevice != "" {
		fmt.Fprintf(&sb, " -o %s", strconv.Quote(r.OverrideDevice))
	}
	for _, k := range r.OverrideKey {
		fmt.Fprintf(&sb, " -k %s", k)
	}
	if r.LockUnlockBind != nil {
		fmt.Fprintf(&sb, " -T %s", *r.LockUnlockBind)
	}
	if r.Hold {
		sb.WriteString(" -H")
	}
	if r.Grab {
		sb.WriteString(" --grab")
	}
	return sb.String()
}

// ToConfig converts r to its persisted form.
func (r *Run) ToConfig(globals *Globals) config.Run {
	c := config.Run{
		Common:               config.Common{Command: config.CommandRun, Beep: globals.Beep, Debug: globals.Debug},
		Device:               r.Device,
		OverrideDevice:       r.OverrideDevice,
		OverrideKey:          keyCodes(r.OverrideKey),
		LeftBind:             uint16(r.LeftBind),
		RightBind:            uint16(r.RightBind),
		Hold:                 r.Hold,
		Grab:                 r.Grab,
		Cooldown:             r.Cooldown.Milliseconds(),
		CooldownPressRelease: r.CooldownPressRelease.Milliseconds(),
	}
	if r.LockUnlockBind != nil {
		code := uint16(*r.LockUnlockBind)
		c.LockUnlockBind = &code
	}
	return c
}

// RunFromConfig is the inverse of ToConfig.
func RunFromConfig(c config.Run) Run {
	r := Run{
		Device:               c.Device,
		OverrideDevice:       c.OverrideDevice,
		LeftBind:             KeyCode(c.LeftBind),
		RightBind:            KeyCode(c.RightBind),
		Hold:                 c.Hold,
		Grab:                 c.Grab,
		Cooldown:             millis(c.Cooldown),
		CooldownPressRelease: millis(c.CooldownPressRelease),
	}
	for _, k := range c.OverrideKey {
		r.OverrideKey = append(r.OverrideKey, KeyCode(k))
	}
	if c.LockUnlockBind != nil {
		code := KeyCode(*c.LockUnlockBind)
		r.LockUnlockBind = &code
	}
	return r
}

func usingArgs(globals *Globals, args string) string {
	var prefix string
	if globals.Debug {
		prefix += "--debug "
	}
	if globals.Beep {
		prefix += "--beep "
	}
	return prefix + args
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
