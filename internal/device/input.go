package device

import (
	"fmt"
	"os"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/theclicker/theclicker/internal/clicker"
)

// Input is an opened evdev input device.
type Input struct {
	Info
	dev *evdev.InputDevice
}

// OpenInput opens an evdev node for reading. Legacy nodes are rejected.
func OpenInput(info Info) (*Input, error) {
	if info.Legacy() {
		return nil, exitErrorf(ExitLegacyForRun, "%s is a legacy device, use run-legacy", info.Path)
	}
	dev, err := evdev.OpenWithFlags(info.Path, os.O_RDONLY)
	if err != nil {
		return nil, exitErrorf(ExitOpenFailed, "cannot open device %s: %w", info.Path, err)
	}
	if info.Name == "" {
		if name, err := dev.Name(); err == nil {
			info.Name = name
		}
	}
	return &Input{Info: info, dev: dev}, nil
}

// ReadEvent blocks until the next record arrives.
func (i *Input) ReadEvent() (clicker.Event, error) {
	ev, err := i.dev.ReadOne()
	if err != nil {
		return clicker.Event{}, err
	}
	return clicker.Event{
		Type:  uint16(ev.Type),
		Code:  uint16(ev.Code),
		Value: ev.Value,
	}, nil
}

// Grab toggles exclusive access to the device.
func (i *Input) Grab(grab bool) error {
	if grab {
		return i.dev.Grab()
	}
	return i.dev.Ungrab()
}

// WaitKeyPress returns the code of the first key press or repeat that
// happened after since. Records already queued before since are discarded.
func (i *Input) WaitKeyPress(since time.Time) (uint16, error) {
	for {
		ev, err := i.dev.ReadOne()
		if err != nil {
			return 0, fmt.Errorf("read key press from %s: %w", i.Path, err)
		}
		if time.Unix(ev.Time.Unix()).Before(since) {
			continue
		}
		if ev.Type == evdev.EV_KEY && (ev.Value == clicker.ValuePress || ev.Value == clicker.ValueRepeat) {
			return uint16(ev.Code), nil
		}
	}
}

// CapableTypes lists the event types the device reports.
func (i *Input) CapableTypes() []evdev.EvType {
	return i.dev.CapableTypes()
}

// CapableEvents lists the codes of type t the device reports.
func (i *Input) CapableEvents(t evdev.EvType) []evdev.EvCode {
	return i.dev.CapableEvents(t)
}

// InputID returns the bus, vendor and product of the device.
func (i *Input) InputID() (evdev.InputID, error) {
	return i.dev.InputID()
}

// KeyCount is the number of key codes the device supports.
func (i *Input) KeyCount() int {
	return len(i.dev.CapableEvents(evdev.EV_KEY))
}

func (i *Input) Close() error {
	return i.dev.Close()
}
