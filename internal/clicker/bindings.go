package clicker

import "slices"

// Bindings maps device key codes to autoclicker roles. It is immutable once
// a run starts.
type Bindings struct {
	Left  uint16
	Right uint16
	// LockUnlock is optional; nil disables locking and starts unlocked.
	LockUnlock   *uint16
	OverrideKeys []uint16
	// Hold mirrors the physical key state instead of toggling on press.
	Hold bool
	// Grab forwards records that drove no click binding to the output device.
	Grab bool
}

// InitialState is the first snapshot a primary reader publishes.
func (b Bindings) InitialState() State {
	return State{Lock: b.LockUnlock != nil}
}

// Apply feeds one record through the toggle state machine.
//
// Roles are evaluated left, right, then lock. Click roles are gated by the
// lock value from before the record, so a code bound to both a click role
// and the lock role only drives the click while unlocked. consumed reports
// whether the record drove a click role; records that did not are forwarded
// when grabbing.
func (b Bindings) Apply(s State, ev Event) (next State, consumed bool) {
	next = s
	if ev.Type != EventTypeKey {
		return next, false
	}
	pressed := ev.Pressed()

	if !s.Lock {
		roles := [...]struct {
			bind uint16
			flag *bool
		}{
			{b.Left, &next.Left},
			{b.Right, &next.Right},
		}
		for _, role := range roles {
			if ev.Code != role.bind {
				continue
			}
			if b.Hold {
				*role.flag = pressed
			} else if pressed {
				*role.flag = !*role.flag
			}
			consumed = true
		}
	}

	if b.LockUnlock != nil && ev.Code == *b.LockUnlock && pressed {
		next.Lock = !next.Lock
	}
	return next, consumed
}

// Override reports whether ev is an override key and, if so, whether the
// override is now held.
func (b Bindings) Override(ev Event) (active, ok bool) {
	if ev.Type != EventTypeKey || !slices.Contains(b.OverrideKeys, ev.Code) {
		return false, false
	}
	return ev.Pressed(), true
}
