// Package clicker turns bound input events into a timed stream of synthetic
// mouse clicks.
//
// Readers own their State and publish full snapshots over channels; the
// Emitter is the single consumer and merges them by field. Nothing in this
// package shares mutable state between goroutines.
package clicker

import "time"

// Linux input event types and values used by the state machines.
const (
	EventTypeSyn uint16 = 0x00
	EventTypeKey uint16 = 0x01
	EventTypeRel uint16 = 0x02

	ValueRelease int32 = 0
	ValuePress   int32 = 1
	ValueRepeat  int32 = 2
)

// Event is one raw record read from a modern input device.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Pressed reports whether the record is a key press or an autorepeat.
func (e Event) Pressed() bool {
	return e.Value == ValuePress || e.Value == ValueRepeat
}

// State is the autoclicker toggle state. It is always passed by value.
type State struct {
	// Left enables the primary click.
	Left bool
	// Right enables the secondary click. It wins over Left.
	Right bool
	// Lock suspends binding driven changes of Left and Right.
	Lock bool
	// OverrideActive pauses emission. Only the override path sets it.
	OverrideActive bool
}

// Clicking reports whether any click flag is set.
func (s State) Clicking() bool {
	return s.Left || s.Right
}

// Button returns the button a click cycle should emit for s.
func (s State) Button() (Button, bool) {
	switch {
	case s.Right:
		return ButtonRight, true
	case s.Left:
		return ButtonLeft, true
	default:
		return 0, false
	}
}

// Button is a synthetic mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Timing holds the click cadence.
type Timing struct {
	// Cooldown is slept after every click cycle.
	Cooldown time.Duration
	// PressRelease is slept between press and release. Zero releases immediately.
	PressRelease time.Duration
}

// Output is the virtual device clicks and pass-through records are written to.
// Implementations must be safe for concurrent use by one reader and the emitter.
type Output interface {
	Press(button Button) error
	Release(button Button) error
	Forward(ev Event) error
}

// EventSource is a blocking reader over a modern input device.
type EventSource interface {
	ReadEvent() (Event, error)
}

// PacketSource is a blocking reader over a legacy byte stream device.
type PacketSource interface {
	ReadPacket(buf []byte) (int, error)
}
