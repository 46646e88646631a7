package device

import (
	"errors"
	"fmt"
	"sort"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/theclicker/theclicker/internal/clicker"
)

// OutputName is the name of the virtual device.
const OutputName = "TheClicker"

// AttributeSource is a device whose capabilities can be copied.
type AttributeSource interface {
	CapableTypes() []evdev.EvType
	CapableEvents(t evdev.EvType) []evdev.EvCode
	InputID() (evdev.InputID, error)
}

// Output is the uinput device clicks and pass-through records are written
// to. Each write is a single kernel call, so the emitter and a grabbing
// reader share it without locking.
type Output struct {
	name string
	id   evdev.InputID
	caps map[evdev.EvType]map[evdev.EvCode]struct{}
	dev  *evdev.InputDevice
}

// NewOutput prepares a virtual device. Nothing is created until Create.
func NewOutput(name string) *Output {
	return &Output{
		name: name,
		id: evdev.InputID{
			BusType: uint16(evdev.BUS_VIRTUAL),
			Vendor:  0x1,
			Product: 0x1,
			Version: 1,
		},
		caps: make(map[evdev.EvType]map[evdev.EvCode]struct{}),
	}
}

// AddMouseAttributes enables the buttons and axes of a wheel mouse.
func (o *Output) AddMouseAttributes() {
	o.add(evdev.EV_KEY, evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE, evdev.BTN_SIDE, evdev.BTN_EXTRA)
	o.add(evdev.EV_REL, evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL, evdev.REL_HWHEEL)
}

// CopyAttributes adds the key, relative axis and misc capabilities of src so
// grabbed input can be forwarded unchanged. Absolute axes are not copied.
func (o *Output) CopyAttributes(src AttributeSource) {
	for _, t := range src.CapableTypes() {
		switch t {
		case evdev.EV_KEY, evdev.EV_REL, evdev.EV_MSC:
			o.add(t, src.CapableEvents(t)...)
		}
	}
	if id, err := src.InputID(); err == nil {
		o.id = id
		o.id.BusType = uint16(evdev.BUS_VIRTUAL)
	}
}

func (o *Output) add(t evdev.EvType, codes ...evdev.EvCode) {
	set, ok := o.caps[t]
	if !ok {
		set = make(map[evdev.EvCode]struct{})
		o.caps[t] = set
	}
	for _, c := range codes {
		set[c] = struct{}{}
	}
}

// Capabilities returns the configured capabilities with sorted codes.
func (o *Output) Capabilities() map[evdev.EvType][]evdev.EvCode {
	out := make(map[evdev.EvType][]evdev.EvCode, len(o.caps))
	for t, set := range o.caps {
		codes := make([]evdev.EvCode, 0, len(set))
		for c := range set {
			codes = append(codes, c)
		}
		sort.Slice(codes, func(i, j int) bool {
			return codes[i] < codes[j]
		})
		out[t] = codes
	}
	return out
}

// Create registers the device with uinput.
func (o *Output) Create() error {
	if o.dev != nil {
		return errors.New("output device already created")
	}
	dev, err := evdev.CreateDevice(o.name, o.id, o.Capabilities())
	if err != nil {
		return fmt.Errorf("cannot create virtual device %q: %w", o.name, err)
	}
	o.dev = dev
	return nil
}

// Press emits a button press followed by a sync report.
func (o *Output) Press(button clicker.Button) error {
	return o.sendKey(button, clicker.ValuePress)
}

// Release emits a button release followed by a sync report.
func (o *Output) Release(button clicker.Button) error {
	return o.sendKey(button, clicker.ValueRelease)
}

func (o *Output) sendKey(button clicker.Button, value int32) error {
	code, err := buttonCode(button)
	if err != nil {
		return err
	}
	if err := o.write(evdev.EV_KEY, code, value); err != nil {
		return err
	}
	return o.write(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

// Forward writes a grabbed record unchanged.
func (o *Output) Forward(ev clicker.Event) error {
	return o.write(evdev.EvType(ev.Type), evdev.EvCode(ev.Code), ev.Value)
}

func (o *Output) write(t evdev.EvType, c evdev.EvCode, value int32) error {
	if o.dev == nil {
		return errors.New("output device not created")
	}
	return o.dev.WriteOne(&evdev.InputEvent{
		Time:  syscall.NsecToTimeval(time.Now().UnixNano()),
		Type:  t,
		Code:  c,
		Value: value,
	})
}

func (o *Output) Close() error {
	if o.dev == nil {
		return nil
	}
	return o.dev.Close()
}

func buttonCode(button clicker.Button) (evdev.EvCode, error) {
	switch button {
	case clicker.ButtonLeft:
		return evdev.BTN_LEFT, nil
	case clicker.ButtonRight:
		return evdev.BTN_RIGHT, nil
	default:
		return 0, fmt.Errorf("unknown button %d", button)
	}
}
