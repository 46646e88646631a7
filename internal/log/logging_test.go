package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{in: "trace", expected: LevelTrace},
		{in: "debug", expected: slog.LevelDebug},
		{in: "info", expected: slog.LevelInfo},
		{in: "", expected: slog.LevelInfo},
		{in: "warn", expected: slog.LevelWarn},
		{in: "error", expected: slog.LevelError},
		{in: "loud", expected: slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.in), tt.in)
	}
}

func TestSetupLoggerConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "theclicker.log")

	logger, closers, err := SetupLogger("warn", file, &console)
	require.NoError(t, err)
	require.Len(t, closers, 1)

	logger.Info("hidden")
	logger.Warn("device gone", "path", "/dev/input/event3")
	require.NoError(t, closers[0].Close())

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "device gone")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "path=/dev/input/event3")
}

func TestSetupLoggerBadFile(t *testing.T) {
	_, _, err := SetupLogger("info", filepath.Join(t.TempDir(), "missing", "x.log"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	h := MultiHandler{hs: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("device", "mouse")

	logger.Debug("click")
	assert.Contains(t, a.String(), "device=mouse")
	assert.Empty(t, b.String())
	assert.True(t, h.Enabled(t.Context(), slog.LevelDebug))
}

func TestSetupRawLogger(t *testing.T) {
	raw, closer, err := SetupRawLogger(Config{Level: "info"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	raw.Log("main", []byte{1})

	file := filepath.Join(t.TempDir(), "raw.log")
	raw, closer, err = SetupRawLogger(Config{RawFile: file})
	require.NoError(t, err)
	require.NotNil(t, closer)
	raw.Log("legacy", []byte{0x09, 0x00, 0x00})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "legacy")
	assert.Contains(t, string(data), "3 bytes: 09 00 00")
}

func TestRawLoggerLine(t *testing.T) {
	var buf bytes.Buffer
	r := &rawLogger{w: &buf, now: func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	}}

	r.Log("override", []byte{0x01, 0x00, 0x1e, 0x00})
	r.Log("override", nil)

	assert.Equal(t, "03:04:05.000006 override  4 bytes: 01 00 1e 00\n", buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
