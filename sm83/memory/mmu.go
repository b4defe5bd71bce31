// Package memory implements the address space the core sees: the cartridge,
// internal RAM and the I/O registers of the peripherals.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/interrupt"
	"github.com/valerio/go-sm83/sm83/serial"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// Device is a peripheral mapped on the I/O page that advances with the clock.
type Device interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	Tick(cycles int)
}

// MMU allows access to all memory mapped I/O and data/registers.
type MMU struct {
	cart      *Cartridge
	mbc       MBC
	memory    []byte
	regionMap [256]memRegion

	irq    *interrupt.Controller
	timer  *Timer
	joypad *Joypad
	serial Device
}

// Option configures an MMU.
type Option func(*MMU)

// WithSerial connects port to SB/SC in place of the default log sink.
func WithSerial(port Device) Option {
	return func(m *MMU) { m.serial = port }
}

// New creates a memory unit with no cartridge: the ROM area reads 0xFF.
// IF and IE are backed by irq; the timer, joypad and serial port raise their
// requests on it.
func New(irq *interrupt.Controller, opts ...Option) *MMU {
	m := &MMU{
		memory: make([]byte, 0x10000),
		irq:    irq,
		timer:  NewTimer(func() { irq.Request(interrupt.Timer) }),
		joypad: NewJoypad(func() { irq.Request(interrupt.Joypad) }),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.serial == nil {
		m.serial = serial.NewLogSink(func() { irq.Request(interrupt.Serial) })
	}
	initRegionMap(m)
	return m
}

// NewWithCartridge creates a memory unit with cart inserted. It fails with
// ErrUnsupportedCartridge when the cartridge needs a bank controller that is
// not implemented.
func NewWithCartridge(cart *Cartridge, irq *interrupt.Controller, opts ...Option) (*MMU, error) {
	mbc, err := NewMBC(cart)
	if err != nil {
		return nil, err
	}

	m := New(irq, opts...)
	m.cart = cart
	m.mbc = mbc
	return m, nil
}

func initRegionMap(m *MMU) {
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	m.regionMap[0xFE] = regionOAM
	m.regionMap[0xFF] = regionIO
}

// Tick advances the peripherals by the given amount of clock ticks.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	m.serial.Tick(cycles)
}

// Reset clears internal RAM and the I/O page, and puts the timer and joypad
// back in their power-on state with the divider seeded to divider. The
// cartridge and the interrupt latches are left alone.
func (m *MMU) Reset(divider uint16) {
	clear(m.memory)
	m.timer.Reset(divider)
	m.joypad.Reset()
}

// Cartridge returns the inserted cartridge, nil if there is none.
func (m *MMU) Cartridge() *Cartridge { return m.cart }

// Joypad returns the joypad behind P1.
func (m *MMU) Joypad() *Joypad { return m.joypad }

// Timer returns the timer behind DIV/TIMA/TMA/TAC.
func (m *MMU) Timer() *Timer { return m.timer }

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			return 0xFF
		}
		return m.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	case regionOAM:
		if address <= addr.OAMEnd {
			return m.memory[address]
		}
		// unusable area 0xFEA0-0xFEFF
		return 0xFF
	default:
		return m.readIO(address)
	}
}

func (m *MMU) readIO(address uint16) byte {
	switch address {
	case addr.P1:
		return m.joypad.Read()
	case addr.SB, addr.SC:
		return m.serial.Read(address)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		// the upper 3 bits are not wired and read as 1
		return m.irq.IF() | 0xE0
	case addr.IE:
		return m.irq.IE()
	}
	return m.memory[address]
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.mbc == nil {
			slog.Debug("Write to cartridge area with no cartridge",
				"addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
			return
		}
		m.mbc.Write(address, value)
	case regionVRAM, regionWRAM:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			m.memory[address] = value
		}
	default:
		m.writeIO(address, value)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch address {
	case addr.P1:
		m.joypad.Write(value)
	case addr.SB, addr.SC:
		m.serial.Write(address, value)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
	case addr.IF:
		m.irq.SetIF(value)
	case addr.IE:
		m.irq.SetIE(value)
	default:
		m.memory[address] = value
	}
}
