// Package config persists autoclicker settings and loads them back as kong
// configuration. JSON, YAML and TOML files share one flat key layout named
// after the command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/theclicker/theclicker/internal/configpaths"
)

// Command names stored in the "command" key.
const (
	CommandRun       = "run"
	CommandRunLegacy = "run-legacy"
)

// Common holds the keys shared by every saved configuration. Command selects
// the subcommand used when none is given on the command line.
type Common struct {
	Command string `json:"command"`
	Beep    bool   `json:"beep,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// Run holds the settings of the run command. Durations are milliseconds.
type Run struct {
	Common
	Device               string   `json:"device"`
	OverrideDevice       string   `json:"override_device,omitempty"`
	OverrideKey          []uint16 `json:"override_key,omitempty"`
	LeftBind             uint16   `json:"left_bind"`
	RightBind            uint16   `json:"right_bind"`
	LockUnlockBind       *uint16  `json:"lock_unlock_bind,omitempty"`
	Hold                 bool     `json:"hold"`
	Grab                 bool     `json:"grab"`
	Cooldown             uint64   `json:"cooldown"`
	CooldownPressRelease uint64   `json:"cooldown_press_release"`
}

// Legacy holds the settings of the run-legacy command. Durations are milliseconds.
type Legacy struct {
	Common
	Device               string `json:"device"`
	Cooldown             uint64 `json:"cooldown"`
	CooldownPressRelease uint64 `json:"cooldown_press_release"`
}

// Marshal encodes v in format ("json", "yaml" or "toml"). v is first reduced
// to its JSON object form so all formats carry the same keys.
func Marshal(format string, v any) ([]byte, error) {
	tree, err := toTree(v)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return json.MarshalIndent(tree, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(tree)
	case "toml":
		t, err := toml.TreeFromMap(tree)
		if err != nil {
			return nil, err
		}
		return t.Marshal()
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Save writes v to path in the format implied by its extension.
func Save(path string, v any) error {
	data, err := Marshal(configpaths.FormatOf(path), v)
	if err != nil {
		return err
	}
	if err := configpaths.EnsureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Load decodes the file at path into v, picking the format by extension.
func Load(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tree, err := decodeTree(configpaths.FormatOf(path), f)
	if err != nil {
		return fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// CommandOf returns the command stored in the config file at path, or "" when
// the file has none.
func CommandOf(path string) (string, error) {
	var c Common
	if err := Load(path, &c); err != nil {
		return "", err
	}
	switch c.Command {
	case "", CommandRun, CommandRunLegacy:
		return c.Command, nil
	default:
		return "", fmt.Errorf("unknown command %q in %s", c.Command, path)
	}
}

func toTree(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		normalize(m)
		return m, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	normalize(tree)
	return tree, nil
}

// normalize turns integral float64 values back into integers so YAML and
// TOML do not print them as 25.0.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
