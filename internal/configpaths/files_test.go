package configpaths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theclicker/theclicker/internal/configpaths"
)

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := configpaths.DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/theclicker", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/me")
	dir, err = configpaths.DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/me/.config/theclicker", dir)
}

func TestDefaultNamedConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	tests := []struct {
		format   string
		expected string
	}{
		{format: "json", expected: "/tmp/xdg/theclicker/run.json"},
		{format: "yml", expected: "/tmp/xdg/theclicker/run.yaml"},
		{format: "toml", expected: "/tmp/xdg/theclicker/run.toml"},
		{format: "", expected: "/tmp/xdg/theclicker/run.json"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := configpaths.DefaultNamedConfigPath("run", tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "yaml", configpaths.FormatOf("a/b.yml"))
	assert.Equal(t, "yaml", configpaths.FormatOf("b.yaml"))
	assert.Equal(t, "toml", configpaths.FormatOf("b.toml"))
	assert.Equal(t, "json", configpaths.FormatOf("b.json"))
	assert.Equal(t, "json", configpaths.FormatOf("noext"))
}

func TestConfigCandidatePathsUserPath(t *testing.T) {
	j, y, tm := configpaths.ConfigCandidatePaths("/x/run.toml")
	assert.Empty(t, j)
	assert.Empty(t, y)
	assert.Equal(t, []string{"/x/run.toml"}, tm)

	j, y, tm = configpaths.ConfigCandidatePaths("/x/run.conf")
	assert.Equal(t, []string{"/x/run.conf"}, j)
	assert.Empty(t, y)
	assert.Empty(t, tm)
}

func TestConfigCandidatePathsSearchOrder(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	wd, err := os.Getwd()
	require.NoError(t, err)

	j, y, tm := configpaths.ConfigCandidatePaths("")
	require.NotEmpty(t, j)
	assert.Equal(t, filepath.Join(wd, "config.json"), j[0])
	assert.Contains(t, j, "/tmp/xdg/theclicker/run.json")
	assert.Contains(t, y, "/etc/theclicker/run-legacy.yml")
	assert.Equal(t, "/etc/theclicker/run-legacy.toml", tm[len(tm)-1])
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	assert.Equal(t, file, configpaths.FirstExisting([]string{filepath.Join(dir, "missing.json")}, []string{dir, file}))
	assert.Empty(t, configpaths.FirstExisting([]string{filepath.Join(dir, "missing.json")}, []string{dir}))
	assert.Empty(t, configpaths.FirstExisting())
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "run.json")
	require.NoError(t, configpaths.EnsureDir(target))
	st, err := os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}
