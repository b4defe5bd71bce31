package memory

import (
	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/bit"
)

// tacClockBit maps the TAC clock select (bits 1-0) to the bit of the internal
// divider that clocks TIMA on its falling edge:
//
//	00 -> bit 9 (4096 Hz)
//	01 -> bit 3 (262144 Hz)
//	10 -> bit 5 (65536 Hz)
//	11 -> bit 7 (16384 Hz)
var tacClockBit = [4]uint8{9, 3, 5, 7}

// reloadDelay is the number of ticks TIMA reads 0 after overflowing, before
// TMA is loaded and the interrupt is requested.
const reloadDelay = 4

// Timer implements DIV, TIMA, TMA and TAC. DIV is the upper byte of a
// free-running 16-bit divider advanced once per tick.
type Timer struct {
	divider  uint16
	lastEdge bool
	reload   int

	tima, tma, tac uint8

	request func()
}

// NewTimer returns a timer calling request whenever TIMA is reloaded after an
// overflow; the caller wires it to the Timer interrupt.
func NewTimer(request func()) *Timer {
	return &Timer{request: request}
}

// SetDivider seeds the internal divider.
func (t *Timer) SetDivider(value uint16) {
	t.divider = value
	t.lastEdge = false
	t.reload = 0
}

// Reset clears TIMA, TMA and TAC, drops a pending reload and seeds the
// divider.
func (t *Timer) Reset(divider uint16) {
	t.tima, t.tma, t.tac = 0, 0, 0
	t.SetDivider(divider)
}

// Tick advances the timer by the given amount of clock ticks.
func (t *Timer) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		t.divider++

		if t.reload > 0 {
			t.reload--
			if t.reload == 0 {
				t.tima = t.tma
				if t.request != nil {
					t.request()
				}
			}
			continue
		}

		if !bit.IsSet(2, t.tac) {
			t.lastEdge = false
			continue
		}

		edge := bit.IsSet16(tacClockBit[t.tac&0x03], t.divider)
		if t.lastEdge && !edge {
			t.increment()
		}
		t.lastEdge = edge
	}
}

func (t *Timer) increment() {
	if t.tima == 0xFF {
		t.reload = reloadDelay
	}
	t.tima++
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return bit.High(t.divider)
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	}
	return 0xFF
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.divider = 0
	case addr.TIMA:
		t.tima = value
		t.reload = 0
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
