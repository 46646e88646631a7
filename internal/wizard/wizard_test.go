package wizard

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/device"
)

type fakeKeyDevice struct {
	codes  []uint16
	grabs  []bool
	since  []time.Time
	closed bool
}

func (f *fakeKeyDevice) Grab(grab bool) error {
	f.grabs = append(f.grabs, grab)
	return nil
}

func (f *fakeKeyDevice) WaitKeyPress(since time.Time) (uint16, error) {
	f.since = append(f.since, since)
	if len(f.codes) == 0 {
		return 0, io.EOF
	}
	code := f.codes[0]
	f.codes = f.codes[1:]
	return code, nil
}

func (f *fakeKeyDevice) Close() error {
	f.closed = true
	return nil
}

type fakeDevices struct {
	infos   []device.Info
	devices map[string]*fakeKeyDevice
	listErr error
}

func (f *fakeDevices) List() ([]device.Info, error) {
	return f.infos, f.listErr
}

func (f *fakeDevices) Open(info device.Info) (KeyDevice, error) {
	dev, ok := f.devices[info.Path]
	if !ok {
		return nil, errors.New("cannot open " + info.Path)
	}
	return dev, nil
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestWizard(input string, devices Devices) (*Wizard, *bytes.Buffer, *[]time.Duration) {
	out := &bytes.Buffer{}
	var sleeps []time.Duration
	w := New(strings.NewReader(input), out, devices)
	w.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	w.now = func() time.Time { return epoch }
	return w, out, &sleeps
}

func u16(v uint16) *uint16 { return &v }

func TestConfigureRunDefaults(t *testing.T) {
	mouse := &fakeKeyDevice{codes: []uint16{275, 276}}
	devices := &fakeDevices{
		infos:   []device.Info{{Path: "/dev/input/event3", Name: "Mouse"}},
		devices: map[string]*fakeKeyDevice{"/dev/input/event3": mouse},
	}
	input := strings.Join([]string{
		"0",  // device
		"",   // lock mode
		"",   // override
		"",   // confirm left
		"",   // confirm right
		"",   // hold
		"n",  // grab
		"10", // cooldown
		"",   // press/release
	}, "\n") + "\n"

	w, out, sleeps := newTestWizard(input, devices)
	res, err := w.Configure()
	require.NoError(t, err)
	require.Nil(t, res.Legacy)
	require.NotNil(t, res.Run)

	assert.Equal(t, &config.Run{
		Common:    config.Common{Command: config.CommandRun},
		Device:    "/dev/input/event3",
		LeftBind:  275,
		RightBind: 276,
		Hold:      true,
		Grab:      false,
		Cooldown:  MinCooldown,
	}, res.Run)

	assert.Contains(t, out.String(), "Device name: Mouse")
	assert.Contains(t, out.String(), "The cooldown was set to")
	assert.Contains(t, out.String(), "KeyCode: 275, Key: BTN_SIDE")
	assert.Equal(t, []bool{true, false, true, false}, mouse.grabs)
	assert.Equal(t, []time.Time{epoch, epoch}, mouse.since)
	assert.True(t, mouse.closed)
	assert.Equal(t, []time.Duration{KeyReleaseWait, KeyReleaseWait, KeyReleaseWait}, *sleeps)
}

func TestConfigureRunWithLockAndOverride(t *testing.T) {
	mouse := &fakeKeyDevice{codes: []uint16{274, 275, 276}}
	keyboard := &fakeKeyDevice{codes: []uint16{1, 59, 88}}
	devices := &fakeDevices{
		infos: []device.Info{
			{Path: "/dev/input/event3", Name: "Mouse"},
			{Path: "/dev/input/event5", Name: "Keyboard"},
		},
		devices: map[string]*fakeKeyDevice{
			"/dev/input/event3": mouse,
			"/dev/input/event5": keyboard,
		},
	}
	input := strings.Join([]string{
		"0",  // device
		"y",  // lock mode
		"",   // confirm lock key 274
		"y",  // override
		"1",  // override device
		"",   // confirm override key 1
		"y",  // add another
		"n",  // reject 59
		"",   // confirm 88
		"",   // no more override keys
		"",   // confirm left
		"",   // confirm right
		"n",  // hold
		"",   // grab
		"40", // cooldown
		"5",  // press/release
	}, "\n") + "\n"

	w, out, _ := newTestWizard(input, devices)
	res, err := w.Configure()
	require.NoError(t, err)
	require.NotNil(t, res.Run)

	assert.Equal(t, &config.Run{
		Common:               config.Common{Command: config.CommandRun},
		Device:               "/dev/input/event3",
		OverrideDevice:       "/dev/input/event5",
		OverrideKey:          []uint16{1, 88},
		LeftBind:             275,
		RightBind:            276,
		LockUnlockBind:       u16(274),
		Hold:                 false,
		Grab:                 true,
		Cooldown:             40,
		CooldownPressRelease: 5,
	}, res.Run)

	assert.Contains(t, out.String(), "Override device selected: Keyboard")
	assert.Contains(t, out.String(), "Override keys configured: [1 88]")
	assert.NotContains(t, out.String(), "The cooldown was set to")
	assert.True(t, keyboard.closed)
	assert.Empty(t, keyboard.codes)
}

func TestConfigureLegacy(t *testing.T) {
	devices := &fakeDevices{
		infos: []device.Info{{Path: "/dev/input/mouse0", Name: "PS/2 Generic Mouse"}},
	}
	w, out, _ := newTestWizard("0\n30\n\n", devices)

	res, err := w.Configure()
	require.NoError(t, err)
	require.Nil(t, res.Run)
	assert.Equal(t, &config.Legacy{
		Common:   config.Common{Command: config.CommandRunLegacy},
		Device:   "/dev/input/mouse0",
		Cooldown: 30,
	}, res.Legacy)
	assert.Contains(t, out.String(), "Using legacy interface")
}

func TestBlacklistedKeyEndsWizard(t *testing.T) {
	mouse := &fakeKeyDevice{codes: []uint16{29}}
	devices := &fakeDevices{
		infos:   []device.Info{{Path: "/dev/input/event3", Name: "Mouse"}},
		devices: map[string]*fakeKeyDevice{"/dev/input/event3": mouse},
	}
	w, out, _ := newTestWizard("0\n\n\n", devices)

	_, err := w.Configure()
	var exitErr *device.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, device.ExitBlacklistedCode, exitErr.Code)
	assert.Contains(t, out.String(), "KEY_LEFTCTRL")
	assert.Equal(t, []bool{true, false}, mouse.grabs)
}

func TestConfigureErrors(t *testing.T) {
	tests := []struct {
		name    string
		devices *fakeDevices
		input   string
	}{
		{
			name:    "list fails",
			devices: &fakeDevices{listErr: errors.New("permission denied")},
		},
		{
			name:    "no devices",
			devices: &fakeDevices{},
		},
		{
			name:    "input ends",
			devices: &fakeDevices{infos: []device.Info{{Path: "/dev/input/event3", Name: "Mouse"}}},
			input:   "",
		},
		{
			name:    "open fails",
			devices: &fakeDevices{infos: []device.Info{{Path: "/dev/input/event3", Name: "Mouse"}}},
			input:   "0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := newTestWizard(tt.input, tt.devices)
			_, err := w.Configure()
			assert.Error(t, err)
		})
	}
}
