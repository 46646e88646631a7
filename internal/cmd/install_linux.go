//go:build linux

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/theclicker/theclicker/internal/config"
)

const (
	serviceName = "theclicker.service"
	servicePath = "/etc/systemd/system/theclicker.service"
)

// InstallCommand installs a systemd service running a saved configuration.
type InstallCommand struct {
	File string `arg:"" name:"file" help:"Configuration file saved by the wizard or written by 'config init'" type:"existingfile"`
}

// Run is called by Kong when the install command is executed.
func (c *InstallCommand) Run(logger *slog.Logger) error {
	return install(logger, c.File)
}

// UninstallCommand stops and removes the systemd service.
type UninstallCommand struct{}

// Run is called by Kong when the uninstall command is executed.
func (c *UninstallCommand) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func install(logger *slog.Logger, configFile string) error {
	exePath, err := currentExecutable()
	if err != nil {
		return err
	}
	configFile, err = filepath.Abs(configFile)
	if err != nil {
		return err
	}
	command, err := config.CommandOf(configFile)
	if err != nil {
		return err
	}
	if command == "" {
		return fmt.Errorf("%s does not name a command; set \"command\" to %q or %q", configFile, config.CommandRun, config.CommandRunLegacy)
	}

	unit := systemdUnitContent(exePath, configFile, command)
	if err := os.WriteFile(servicePath, []byte(unit), 0o644); err != nil {
		return err
	}

	steps := [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"restart", serviceName},
	}

	for _, args := range steps {
		if err := runSystemctl(args...); err != nil {
			return err
		}
	}

	logger.Info("theclicker systemd service installed", "path", servicePath, "exe", exePath, "config", configFile)
	return nil
}

func uninstall(logger *slog.Logger) error {
	var errs []error

	if err := runSystemctl("stop", serviceName); err != nil {
		errs = append(errs, err)
	}
	if err := runSystemctl("disable", serviceName); err != nil {
		errs = append(errs, err)
	}

	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}

	if err := runSystemctl("daemon-reload"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logger.Info("theclicker systemd service removed", "path", servicePath)
	return nil
}

func systemdUnitContent(exePath, configFile, command string) string {
	workingDir := filepath.Dir(configFile)
	return fmt.Sprintf(`[Unit]
Description=TheClicker autoclicker
After=systemd-udevd.service

[Service]
Type=simple
ExecStart=%q --config %q %s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, exePath, configFile, command, workingDir)
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

func runSystemctl(args ...string) error {
	cmd := exec.Command("systemctl", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
