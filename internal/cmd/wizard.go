package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/log"
	"github.com/theclicker/theclicker/internal/wizard"
)

// Wizard asks for the device and bindings, then runs with the answers.
type Wizard struct {
	SaveConfig string `help:"Save the chosen configuration to this file, format by extension (json, yaml, toml)" type:"path"`
}

// Run is called by Kong when the wizard command is executed, which is also
// the default when no command is given.
func (w *Wizard) Run(logger *slog.Logger, rawLogger log.RawLogger, globals *Globals) error {
	res, err := wizard.New(os.Stdin, os.Stdout, wizard.System{}).Configure()
	if err != nil {
		return err
	}

	starter, saved := w.resolve(res, globals)
	if w.SaveConfig != "" {
		if err := config.Save(w.SaveConfig, saved); err != nil {
			logger.Error("Failed to save config", "path", w.SaveConfig, "error", err)
		} else {
			fmt.Printf("Configuration saved to %s\n", w.SaveConfig)
		}
	}

	// Signals are only caught once clicking starts; during prompts they end the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return starter.Start(ctx, logger, rawLogger, globals, os.Stdout)
}

type starter interface {
	Start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, globals *Globals, stdout io.Writer) error
}

// resolve turns a wizard result into the command to run and the value to
// persist.
func (w *Wizard) resolve(res wizard.Result, globals *Globals) (starter, any) {
	if res.Legacy != nil {
		cmd := LegacyFromConfig(*res.Legacy)
		return &cmd, cmd.ToConfig(globals)
	}
	cmd := RunFromConfig(*res.Run)
	return &cmd, cmd.ToConfig(globals)
}
