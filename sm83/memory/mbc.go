package memory

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCartridge is returned when the header names a bank controller
// this machine does not implement.
var ErrUnsupportedCartridge = errors.New("unsupported cartridge type")

// ROMOnly is the cartridge type byte of images with no bank controller.
const ROMOnly uint8 = 0x00

// MBC is the cartridge side of the bus: the ROM area at 0x0000-0x7FFF and the
// external RAM area at 0xA000-0xBFFF.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// NewMBC selects the controller named by the header of cart. Only ROMOnly
// images are supported; anything else is a configuration error that must stop
// the machine before it runs.
func NewMBC(cart *Cartridge) (MBC, error) {
	switch cart.Type() {
	case ROMOnly:
		return NewNoMBC(cart.data), nil
	}
	return nil, fmt.Errorf("%w: %s (0x%02X)", ErrUnsupportedCartridge, cart.TypeName(), cart.Type())
}

// NoMBC maps up to 32KB of ROM directly at 0x0000-0x7FFF. There is no banking
// and no external RAM: writes are dropped and RAM reads return 0xFF.
type NoMBC struct {
	rom []uint8
}

// NewNoMBC creates a new NoMBC controller.
func NewNoMBC(romData []uint8) *NoMBC {
	return &NoMBC{rom: romData}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	if addr > 0x7FFF || int(addr) >= len(m.rom) {
		return 0xFF
	}
	return m.rom[addr]
}

func (m *NoMBC) Write(addr uint16, value uint8) {}

var typeNames = map[uint8]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}

func typeName(t uint8) string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}
