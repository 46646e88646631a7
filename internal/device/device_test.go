package device

import (
	"errors"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theclicker/theclicker/internal/clicker"
)

func TestInfoKinds(t *testing.T) {
	tests := []struct {
		path   string
		legacy bool
		mice   bool
	}{
		{path: "/dev/input/event3", legacy: false, mice: false},
		{path: "/dev/input/mouse0", legacy: true, mice: false},
		{path: "/dev/input/mouse12", legacy: true, mice: false},
		{path: "/dev/input/mice", legacy: true, mice: true},
		{path: "/dev/input/by-id/usb-Logitech-event-mouse", legacy: false, mice: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			info := Info{Path: tt.path}
			assert.Equal(t, tt.legacy, info.Legacy())
			assert.Equal(t, tt.mice, info.Mice())
		})
	}
}

func TestMatch(t *testing.T) {
	devices := []Info{
		{Path: "/dev/input/event1", Name: "Logitech G Pro Keyboard"},
		{Path: "/dev/input/event2", Name: "Logitech G Pro"},
		{Path: "/dev/input/event3", Name: "Razer Viper"},
	}

	tests := []struct {
		query    string
		expected string
		found    bool
	}{
		{query: "Logitech G Pro", expected: "/dev/input/event2", found: true},
		{query: "Logitech", expected: "/dev/input/event1", found: true},
		{query: "Viper", expected: "/dev/input/event3", found: true},
		{query: "viper", found: false},
		{query: "Corsair", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			info, ok := match(devices, tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, info.Path)
			}
		})
	}
}

func TestResolveExitCodes(t *testing.T) {
	_, err := Resolve("")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitEmptyQuery, exitErr.Code)

	_, err = Resolve("/dev/input/does-not-exist-42")
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitOpenFailed, exitErr.Code)
}

func TestOpenRejectsWrongInterface(t *testing.T) {
	var exitErr *ExitError

	_, err := OpenInput(Info{Path: "/dev/input/mouse0"})
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitLegacyForRun, exitErr.Code)

	_, err = OpenLegacy(Info{Path: "/dev/input/mice"})
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitMiceForLegacy, exitErr.Code)
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ExitError{Code: ExitNotFound, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "boom", err.Error())
}

type fakeAttributes struct {
	caps map[evdev.EvType][]evdev.EvCode
	id   evdev.InputID
}

func (f fakeAttributes) CapableTypes() []evdev.EvType {
	types := make([]evdev.EvType, 0, len(f.caps))
	for t := range f.caps {
		types = append(types, t)
	}
	return types
}

func (f fakeAttributes) CapableEvents(t evdev.EvType) []evdev.EvCode {
	return f.caps[t]
}

func (f fakeAttributes) InputID() (evdev.InputID, error) {
	return f.id, nil
}

func TestOutputMouseAttributes(t *testing.T) {
	out := NewOutput(OutputName)
	out.AddMouseAttributes()

	caps := out.Capabilities()
	assert.Equal(t, []evdev.EvCode{
		evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE, evdev.BTN_SIDE, evdev.BTN_EXTRA,
	}, caps[evdev.EV_KEY])
	assert.Equal(t, []evdev.EvCode{
		evdev.REL_X, evdev.REL_Y, evdev.REL_HWHEEL, evdev.REL_WHEEL,
	}, caps[evdev.EV_REL])
}

func TestOutputCopyAttributes(t *testing.T) {
	out := NewOutput(OutputName)
	out.AddMouseAttributes()
	out.CopyAttributes(fakeAttributes{
		caps: map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: {evdev.KEY_A, evdev.BTN_LEFT},
			evdev.EV_MSC: {evdev.MSC_SCAN},
			evdev.EV_ABS: {evdev.ABS_X},
		},
		id: evdev.InputID{BusType: 0x03, Vendor: 0x046d, Product: 0xc08b, Version: 0x111},
	})

	caps := out.Capabilities()
	assert.Contains(t, caps[evdev.EV_KEY], evdev.EvCode(evdev.KEY_A))
	assert.Contains(t, caps[evdev.EV_KEY], evdev.EvCode(evdev.BTN_RIGHT))
	assert.Equal(t, []evdev.EvCode{evdev.MSC_SCAN}, caps[evdev.EV_MSC])
	assert.NotContains(t, caps, evdev.EvType(evdev.EV_ABS))

	assert.Equal(t, uint16(evdev.BUS_VIRTUAL), out.id.BusType)
	assert.Equal(t, uint16(0x046d), out.id.Vendor)
	assert.Equal(t, uint16(0xc08b), out.id.Product)
}

func TestOutputRequiresCreate(t *testing.T) {
	out := NewOutput(OutputName)
	assert.Error(t, out.Press(clicker.ButtonLeft))
	assert.Error(t, out.Forward(clicker.Event{Type: clicker.EventTypeKey, Code: 30, Value: 1}))
	assert.NoError(t, out.Close())
}

func TestButtonCode(t *testing.T) {
	code, err := buttonCode(clicker.ButtonLeft)
	require.NoError(t, err)
	assert.Equal(t, evdev.EvCode(evdev.BTN_LEFT), code)

	code, err = buttonCode(clicker.ButtonRight)
	require.NoError(t, err)
	assert.Equal(t, evdev.EvCode(evdev.BTN_RIGHT), code)

	_, err = buttonCode(clicker.Button(9))
	assert.Error(t, err)
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in       string
		expected uint16
		wantErr  bool
	}{
		{in: "275", expected: 275},
		{in: "0x113", expected: 275},
		{in: "BTN_SIDE", expected: 275},
		{in: " key_f8 ", expected: 66},
		{in: "", wantErr: true},
		{in: "KEY_NOPE", wantErr: true},
		{in: "70000", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			code, err := ParseCode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "KeyCode: 275, Key: BTN_SIDE", FormatCode(275))
	assert.Equal(t, "KeyCode: 66, Key: KEY_F8", FormatCode(66))
}

func TestBlacklisted(t *testing.T) {
	assert.True(t, Blacklisted(uint16(evdev.KEY_LEFTCTRL)))
	assert.True(t, Blacklisted(uint16(evdev.KEY_C)))
	assert.False(t, Blacklisted(uint16(evdev.BTN_SIDE)))
}
