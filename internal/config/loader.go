package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// YAMLLoader is a kong configuration loader for YAML files using the same
// key lookup as kong.JSON.
func YAMLLoader(r io.Reader) (kong.Resolver, error) {
	return treeLoader("yaml", r)
}

// TOMLLoader is a kong configuration loader for TOML files using the same
// key lookup as kong.JSON.
func TOMLLoader(r io.Reader) (kong.Resolver, error) {
	return treeLoader("toml", r)
}

func treeLoader(format string, r io.Reader) (kong.Resolver, error) {
	tree, err := decodeTree(format, r)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	return kong.JSON(bytes.NewReader(data))
}

func decodeTree(format string, r io.Reader) (map[string]any, error) {
	tree := map[string]any{}
	switch format {
	case "json":
		if err := json.NewDecoder(r).Decode(&tree); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.NewDecoder(r).Decode(&tree); err != nil && err != io.EOF {
			return nil, err
		}
	case "toml":
		t, err := toml.LoadReader(r)
		if err != nil {
			return nil, err
		}
		tree = t.ToMap()
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return tree, nil
}
