package memory

import "github.com/valerio/go-sm83/sm83/bit"

// JoypadKey is one of the eight inputs.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

func (k JoypadKey) String() string {
	switch k {
	case JoypadRight:
		return "Right"
	case JoypadLeft:
		return "Left"
	case JoypadUp:
		return "Up"
	case JoypadDown:
		return "Down"
	case JoypadA:
		return "A"
	case JoypadB:
		return "B"
	case JoypadSelect:
		return "Select"
	case JoypadStart:
		return "Start"
	}
	return "Unknown"
}

// Joypad backs the P1 register. Key state is active low: a cleared bit is a
// pressed key.
type Joypad struct {
	buttons uint8
	dpad    uint8
	sel     uint8

	request func()
}

// Reset releases every key and deselects both groups.
func (j *Joypad) Reset() {
	j.buttons = 0x0F
	j.dpad = 0x0F
	j.sel = 0x30
}

// NewJoypad returns a joypad with every key released. request is called on
// every released-to-pressed transition.
func NewJoypad(request func()) *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
		sel:     0x30,
		request: request,
	}
}

// Read returns P1: bits 7-6 read as 1, bits 5-4 are the selection, bits 3-0
// the selected group (both groups ANDed when both are selected).
func (j *Joypad) Read() uint8 {
	low := uint8(0x0F)
	if !bit.IsSet(4, j.sel) {
		low &= j.dpad
	}
	if !bit.IsSet(5, j.sel) {
		low &= j.buttons
	}
	return 0xC0 | j.sel | low
}

// Write updates the selection bits; the rest of P1 is read-only.
func (j *Joypad) Write(value uint8) {
	j.sel = value & 0x30
}

// Press marks key as held.
func (j *Joypad) Press(key JoypadKey) {
	group, index := j.locate(key)
	if bit.IsSet(index, *group) && j.request != nil {
		j.request()
	}
	*group = bit.Clear(index, *group)
}

// Release marks key as released.
func (j *Joypad) Release(key JoypadKey) {
	group, index := j.locate(key)
	*group = bit.Set(index, *group)
}

func (j *Joypad) locate(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}
