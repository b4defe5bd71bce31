// Package interrupt implements the IF/IE latch pair that peripherals raise
// requests on and the core polls between instructions.
package interrupt

// Flag is one of the five interrupt sources, as a single-bit mask.
type Flag uint8

const (
	// VBlank is fired when the video chip has completed a frame.
	VBlank Flag = 1 << iota
	// LCDStat is fired on one of the conditions selected in the STAT register.
	LCDStat
	// Timer is fired when TIMA overflows.
	Timer
	// Serial is fired when a serial transfer has completed.
	Serial
	// Joypad is fired when any of the keypad inputs goes from high to low.
	Joypad
)

// Mask covers the significant bits of IF and IE.
const Mask uint8 = 0x1F

// baseVector is the service routine address of VBlank, the others follow
// every 8 bytes.
const baseVector uint16 = 0x40

// Sources lists the interrupt sources in servicing priority order.
var Sources = [...]Flag{VBlank, LCDStat, Timer, Serial, Joypad}

// Vector returns the fixed address of the service routine for f.
func (f Flag) Vector() uint16 {
	for i, s := range Sources {
		if s == f {
			return baseVector + uint16(i)*8
		}
	}
	return baseVector
}

func (f Flag) String() string {
	switch f {
	case VBlank:
		return "VBlank"
	case LCDStat:
		return "LCDStat"
	case Timer:
		return "Timer"
	case Serial:
		return "Serial"
	case Joypad:
		return "Joypad"
	}
	return "Unknown"
}

// Controller holds the request (IF) and enable (IE) latches.
// Only the low 5 bits of either register are significant; the upper bits are
// stored as written but never considered.
type Controller struct {
	requested uint8
	enabled   uint8
}

// New returns a controller with no requests pending and all sources disabled.
func New() *Controller {
	return &Controller{}
}

// IF returns the raw request register.
func (c *Controller) IF() uint8 { return c.requested }

// SetIF overwrites the request register.
func (c *Controller) SetIF(value uint8) { c.requested = value }

// IE returns the raw enable register.
func (c *Controller) IE() uint8 { return c.enabled }

// SetIE overwrites the enable register.
func (c *Controller) SetIE(value uint8) { c.enabled = value }

// Request raises the request line of a single source.
func (c *Controller) Request(f Flag) {
	c.requested |= uint8(f)
}

// CanHandle reports whether f is both requested and enabled.
func (c *Controller) CanHandle(f Flag) bool {
	return c.requested&uint8(f) != 0 && c.enabled&uint8(f) != 0
}

// Enable sets the enable bit of f.
func (c *Controller) Enable(f Flag) {
	c.enabled |= uint8(f)
}

// Disable clears the enable bit of f. The core calls this once it starts
// servicing f; the request bit is left as is.
func (c *Controller) Disable(f Flag) {
	c.enabled &^= uint8(f)
}

// CanServiceAny reports whether any source is both requested and enabled.
// It does not depend on the master enable, so it is also the halt wake-up
// condition.
func (c *Controller) CanServiceAny() bool {
	return c.Pending() != 0
}

// Pending returns the mask of sources that are both requested and enabled.
func (c *Controller) Pending() uint8 {
	return c.requested & c.enabled & Mask
}
