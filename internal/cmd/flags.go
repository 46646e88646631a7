package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/theclicker/theclicker/internal/device"
)

// KeyCode is a device key code given as a number or an evdev name such as
// BTN_SIDE or KEY_F8.
type KeyCode uint16

// Decode implements kong.MapperValue. Config files deliver numbers as
// float64 (JSON), int (YAML) or int64 (TOML).
func (k *KeyCode) Decode(ctx *kong.DecodeContext) error {
	t, err := ctx.Scan.PopValue("key code")
	if err != nil {
		return err
	}
	code, err := keyCodeFrom(t.Value)
	if err != nil {
		return err
	}
	*k = KeyCode(code)
	return nil
}

// UnmarshalJSON accepts the same forms as Decode; kong uses it for lists
// read from config files.
func (k *KeyCode) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	code, err := keyCodeFrom(v)
	if err != nil {
		return err
	}
	*k = KeyCode(code)
	return nil
}

func (k KeyCode) String() string {
	return strconv.Itoa(int(k))
}

func keyCodeFrom(v any) (uint16, error) {
	switch x := v.(type) {
	case string:
		return device.ParseCode(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("key code must be an integer, got %v", x)
		}
		return keyCodeFromInt(int64(x))
	case int:
		return keyCodeFromInt(int64(x))
	case int64:
		return keyCodeFromInt(x)
	case uint64:
		if x > math.MaxUint16 {
			return 0, fmt.Errorf("key code out of range: %d", x)
		}
		return uint16(x), nil
	default:
		return 0, fmt.Errorf("expected a key code but got %v (%T)", v, v)
	}
}

func keyCodeFromInt(n int64) (uint16, error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, fmt.Errorf("key code out of range: %d", n)
	}
	return uint16(n), nil
}

func keyCodes(codes []KeyCode) []uint16 {
	out := make([]uint16, len(codes))
	for i, c := range codes {
		out[i] = uint16(c)
	}
	return out
}

// Millis is a duration given as plain milliseconds ("25") or a Go duration
// string ("25ms", "1.5s").
type Millis time.Duration

// Decode implements kong.MapperValue.
func (m *Millis) Decode(ctx *kong.DecodeContext) error {
	t, err := ctx.Scan.PopValue("duration")
	if err != nil {
		return err
	}
	d, err := millisFrom(t.Value)
	if err != nil {
		return err
	}
	*m = Millis(d)
	return nil
}

// Duration converts m to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m)
}

// Milliseconds is m in whole milliseconds, the unit config files store.
func (m Millis) Milliseconds() uint64 {
	return uint64(time.Duration(m) / time.Millisecond)
}

func (m Millis) String() string {
	d := time.Duration(m)
	if d%time.Millisecond == 0 {
		return strconv.FormatInt(d.Milliseconds(), 10)
	}
	return d.String()
}

func millisFrom(v any) (time.Duration, error) {
	var ms float64
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			ms = n
			break
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("expected milliseconds or a duration but got %q", x)
		}
		if d < 0 {
			return 0, fmt.Errorf("duration must not be negative: %s", x)
		}
		return d, nil
	case float64:
		ms = x
	case int:
		ms = float64(x)
	case int64:
		ms = float64(x)
	case uint64:
		ms = float64(x)
	default:
		return 0, fmt.Errorf("expected milliseconds but got %v (%T)", v, v)
	}
	if ms < 0 {
		return 0, fmt.Errorf("duration must not be negative: %v", ms)
	}
	if math.IsNaN(ms) || ms > float64(math.MaxInt64/int64(time.Millisecond)) {
		return 0, fmt.Errorf("duration out of range: %v", v)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

func millis(ms uint64) Millis {
	return Millis(time.Duration(ms) * time.Millisecond)
}
