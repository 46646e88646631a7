package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/theclicker/theclicker/internal/cmd"
	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/configpaths"
	"github.com/theclicker/theclicker/internal/device"
	"github.com/theclicker/theclicker/internal/log"

	"github.com/alecthomas/kong"
)

func main() {
	args := os.Args[1:]
	userCfg := findUserConfig(args)
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli cmd.CLI
	parser, err := kong.New(&cli,
		kong.Name("theclicker"),
		kong.Description("Autoclicker for Linux input devices"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(config.YAMLLoader, yamlPaths...),
		kong.Configuration(config.TOMLLoader, tomlPaths...),
	)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	// Without an explicit command a saved configuration names the one to run.
	if ctx.Command() == "wizard" && !slices.Contains(args, "wizard") && cli.Wizard.SaveConfig == "" {
		if path := configpaths.FirstExisting(jsonPaths, yamlPaths, tomlPaths); path != "" {
			command, err := config.CommandOf(path)
			parser.FatalIfErrorf(err)
			if command != "" {
				ctx, err = parser.Parse(append([]string{command}, args...))
				parser.FatalIfErrorf(err)
			}
		}
	}

	logger, closeFiles, err := log.SetupLogger(cli.LogLevel(), cli.Log.File, os.Stderr)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}

	rawLogger, rawFile, err := log.SetupRawLogger(cli.Log)
	if err != nil {
		logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
	}
	if rawFile != nil {
		closeFiles = append(closeFiles, rawFile)
	}

	ctx.Bind(logger, &cli.Globals)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	err = ctx.Run()
	closeAll(closeFiles)

	var exitErr *device.ExitError
	if errors.As(err, &exitErr) {
		_, _ = fmt.Fprintf(os.Stderr, "%s: error: %s\n", ctx.Model.Name, exitErr.Error())
		os.Exit(exitErr.Code)
	}
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("THECLICKER_CONFIG"); v != "" {
		return v
	}
	return ""
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
