package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/bit"
	"github.com/valerio/go-sm83/sm83/interrupt"
)

// Bus is the address space as seen by the core. Implementations resolve
// memory-mapped registers and cartridge banking; the core charges the access
// cost itself before every transfer.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// TicksPerMCycle is the number of clock ticks in one machine cycle.
const TicksPerMCycle = 4

// IME is the interrupt master enable state.
type IME uint8

const (
	IMEDisabled IME = iota
	// IMEEnabling is set by EI and becomes IMEEnabled once the following
	// instruction has completed.
	IMEEnabling
	IMEEnabled
)

func (i IME) String() string {
	switch i {
	case IMEDisabled:
		return "OFF"
	case IMEEnabling:
		return "PENDING"
	case IMEEnabled:
		return "ON"
	}
	return fmt.Sprintf("IME(%d)", uint8(i))
}

// CPU is the SM83 execution core.
type CPU struct {
	regs Registers

	ime    IME
	halted bool
	// locked is entered on an undefined opcode; nothing but a reset leaves it.
	locked bool

	// ticks elapsed in the current Step
	cycles int
	// ticks elapsed since creation
	total uint64
	// last dispatched opcode, 0xCBxx for extended ones
	opcode uint16

	bus    Bus
	irq    *interrupt.Controller
	logger *slog.Logger
}

// Option configures a CPU.
type Option func(*CPU)

// WithLogger sets the logger used to report lock-ups.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CPU) { c.logger = logger }
}

// New returns a CPU wired to bus and irq, with registers in the state the
// boot ROM leaves them in.
func New(bus Bus, irq *interrupt.Controller, opts ...Option) *CPU {
	c := &CPU{
		bus:    bus,
		irq:    irq,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset restores the post-boot register state and clears halt, lock-up and
// the master enable.
func (c *CPU) Reset() {
	c.regs = Registers{}
	c.regs.SetAF(0x01B0)
	c.regs.SetBC(0x0013)
	c.regs.SetDE(0x00D8)
	c.regs.SetHL(0x014D)
	c.regs.SP = 0xFFFE
	c.regs.PC = 0x0100

	c.ime = IMEDisabled
	c.halted = false
	c.locked = false
	c.cycles = 0
}

// Step executes a single instruction, or idles for one machine cycle when
// halted, then services at most one interrupt.
// Returns the amount of clock ticks the step has taken.
func (c *CPU) Step() int {
	c.cycles = 0

	if c.halted || c.locked {
		c.delay(1)
	} else {
		c.execute()
	}

	if !c.locked && c.irq.CanServiceAny() {
		// waking from HALT does not depend on the master enable
		c.halted = false

		if c.ime == IMEEnabled {
			c.serviceInterrupt()
		}
	}

	// EI takes effect once the instruction after it has run.
	if c.cycles >= TicksPerMCycle && c.ime == IMEEnabling {
		c.ime = IMEEnabled
	}

	c.total += uint64(c.cycles)
	return c.cycles
}

func (c *CPU) execute() {
	op := c.fetch()
	c.opcode = uint16(op)
	opcodes[op](c)
}

// serviceInterrupt jumps to the handler of the highest priority source that
// is both requested and enabled.
func (c *CPU) serviceInterrupt() {
	for _, source := range interrupt.Sources {
		if !c.irq.CanHandle(source) {
			continue
		}

		// 2 wait cycles, 2 for the push, 1 to load PC: the 5 machine cycles
		// the hardware takes, not the 3 of an RST.
		c.delay(2)
		c.push(c.regs.PC)
		c.delay(1)
		c.regs.PC = source.Vector()

		c.ime = IMEDisabled
		c.irq.Disable(source)
		return
	}
}

// delay charges m machine cycles to the current step.
func (c *CPU) delay(m int) {
	c.cycles += m * TicksPerMCycle
}

// read charges one machine cycle, then reads from the bus.
func (c *CPU) read(address uint16) uint8 {
	c.delay(1)
	return c.bus.Read(address)
}

// write charges one machine cycle, then writes to the bus.
func (c *CPU) write(address uint16, value uint8) {
	c.delay(1)
	c.bus.Write(address, value)
}

// readWord charges two machine cycles, then reads the low and high bytes.
func (c *CPU) readWord(address uint16) uint16 {
	c.delay(2)
	low := c.bus.Read(address)
	high := c.bus.Read(address + 1)
	return bit.Combine(high, low)
}

// writeWord charges two machine cycles, then writes the low and high bytes.
func (c *CPU) writeWord(address uint16, value uint16) {
	c.delay(2)
	c.bus.Write(address, bit.Low(value))
	c.bus.Write(address+1, bit.High(value))
}

// fetch reads the byte at PC and advances it. This value is known as
// immediate ('n' in mnemonics).
func (c *CPU) fetch() uint8 {
	n := c.read(c.regs.PC)
	c.regs.PC++
	return n
}

// fetchWord reads the word at PC and advances it twice ('nn' in mnemonics).
func (c *CPU) fetchWord() uint16 {
	nn := c.readWord(c.regs.PC)
	c.regs.PC += 2
	return nn
}

func (c *CPU) push(value uint16) {
	c.regs.SP -= 2
	c.writeWord(c.regs.SP, value)
}

func (c *CPU) pop() uint16 {
	value := c.readWord(c.regs.SP)
	c.regs.SP += 2
	return value
}

// get8 reads an 8-bit operand; (HL) costs a bus access.
func (c *CPU) get8(r Reg8) uint8 {
	if r == RegHLIndirect {
		return c.read(c.regs.HL())
	}
	return *c.regs.reg8(r)
}

// set8 writes an 8-bit operand; (HL) costs a bus access.
func (c *CPU) set8(r Reg8, value uint8) {
	if r == RegHLIndirect {
		c.write(c.regs.HL(), value)
		return
	}
	*c.regs.reg8(r) = value
}

// Registers gives direct access to the register file, for debuggers, save
// states and test harnesses.
func (c *CPU) Registers() *Registers { return &c.regs }

// IME returns the interrupt master enable state.
func (c *CPU) IME() IME { return c.ime }

// SetIME overrides the interrupt master enable state.
func (c *CPU) SetIME(ime IME) { c.ime = ime }

// Halted reports whether the core is waiting for an interrupt.
func (c *CPU) Halted() bool { return c.halted }

// Locked reports whether the core has hung on an undefined opcode.
func (c *CPU) Locked() bool { return c.locked }

// Cycles returns the clock ticks elapsed since the CPU was created.
func (c *CPU) Cycles() uint64 { return c.total }

// Opcode returns the last dispatched opcode; extended opcodes read 0xCBxx.
func (c *CPU) Opcode() uint16 { return c.opcode }

// State is a copy of everything the core owns.
type State struct {
	Registers Registers
	IME       IME
	Halted    bool
	Locked    bool
	Cycles    uint64
}

// State returns a snapshot of the core.
func (c *CPU) State() State {
	return State{
		Registers: c.regs,
		IME:       c.ime,
		Halted:    c.halted,
		Locked:    c.locked,
		Cycles:    c.total,
	}
}

// Restore loads a snapshot taken with State.
func (c *CPU) Restore(s State) {
	c.regs = s.Registers
	c.ime = s.IME
	c.halted = s.Halted
	c.locked = s.Locked
	c.total = s.Cycles
}
