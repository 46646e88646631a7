// Package cmd holds the kong command structs of theclicker.
package cmd

import (
	"github.com/theclicker/theclicker/internal/log"
)

// Globals are the flags shared by every command. They are bound into the
// kong context so commands can ask for them in Run.
type Globals struct {
	ConfigFile string     `name:"config" help:"Load configuration from this JSON, YAML or TOML file" type:"path" env:"THECLICKER_CONFIG"`
	Beep       bool       `help:"Beep when the autoclicker state changes" env:"THECLICKER_BEEP"`
	Debug      bool       `help:"Verbose output, same as --log.level=debug" env:"THECLICKER_DEBUG"`
	Log        log.Config `embed:"" prefix:"log."`
}

// LogLevel is the effective log level; --debug raises info and above to debug.
func (g *Globals) LogLevel() string {
	if g.Debug && g.Log.Level != "trace" {
		return "debug"
	}
	return g.Log.Level
}

// CLI is the root of the command line.
type CLI struct {
	Globals

	Run       Run              `cmd:"" help:"Run the autoclicker on an evdev device"`
	RunLegacy RunLegacy        `cmd:"" name:"run-legacy" help:"Run the autoclicker on a legacy PS/2 device (/dev/input/mouseN)"`
	Wizard    Wizard           `cmd:"" default:"withargs" help:"Interactively choose a device and bindings, then run"`
	Devices   Devices          `cmd:"" help:"List input devices"`
	Config    ConfigCommand    `cmd:"" help:"Configuration helpers"`
	Install   InstallCommand   `cmd:"" help:"Install a systemd service running a saved configuration"`
	Uninstall UninstallCommand `cmd:"" help:"Remove the systemd service"`
}
