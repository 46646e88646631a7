package clicker

// LegacyPacketSize is the size of a PS/2 mouse packet as delivered by
// /dev/input/mouseN.
const LegacyPacketSize = 3

const (
	legacyLeft = iota
	legacyRight
	legacyMiddle
)

// LegacyDecoder tracks the previous button levels of a legacy device and
// applies rising edges to a State. Legacy devices have no hold mode.
//
// Byte 0 of a packet carries the button bitfield:
//
//	bit 0 = left, bit 1 = right, bit 2 = middle
//
// Left and right edges toggle the click flags while unlocked; a middle edge
// toggles Lock.
type LegacyDecoder struct {
	prev [3]uint8
}

// LegacyInitialState is the first snapshot a legacy reader publishes.
func LegacyInitialState() State {
	return State{Lock: true}
}

// Apply decodes one packet. ok is false for a short or oversized read, in
// which case neither s nor the decoder changes.
func (d *LegacyDecoder) Apply(s State, packet []byte) (next State, ok bool) {
	if len(packet) != LegacyPacketSize {
		return s, false
	}
	levels := [3]uint8{
		packet[0] & 1,
		(packet[0] >> 1) & 1,
		(packet[0] >> 2) & 1,
	}
	rising := func(i int) bool {
		return levels[i] == 1 && d.prev[i] == 0
	}

	next = s
	if !s.Lock {
		if rising(legacyLeft) {
			next.Left = !next.Left
		}
		if rising(legacyRight) {
			next.Right = !next.Right
		}
	}
	if rising(legacyMiddle) {
		next.Lock = !next.Lock
	}
	d.prev = levels
	return next, true
}
