package device

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// ParseCode accepts an evdev key name (KEY_F8, BTN_SIDE) or a numeric code.
func ParseCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("key code is empty")
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return uint16(code), nil
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown key %q: use names like KEY_F8/BTN_SIDE or a numeric code", value)
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("key code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

// CodeName returns the evdev name of a key code, or "" when unknown.
func CodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if strings.EqualFold(name, "unknown") {
		return ""
	}
	return name
}

// FormatCode describes a key code for humans.
func FormatCode(code uint16) string {
	if name := CodeName(code); name != "" {
		return fmt.Sprintf("KeyCode: %d, Key: %s", code, name)
	}
	return fmt.Sprintf("KeyCode: %d", code)
}

// Blacklisted reports whether code may not be bound because it is needed to
// interrupt the program.
func Blacklisted(code uint16) bool {
	switch evdev.EvCode(code) {
	case evdev.KEY_LEFTCTRL, evdev.KEY_C:
		return true
	default:
		return false
	}
}
