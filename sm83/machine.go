// Package sm83 wires the SM83 core to a ROM-only cartridge, the interrupt
// controller and the timer, serial and joypad peripherals.
package sm83

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/cpu"
	"github.com/valerio/go-sm83/sm83/disasm"
	"github.com/valerio/go-sm83/sm83/interrupt"
	"github.com/valerio/go-sm83/sm83/memory"
	"github.com/valerio/go-sm83/sm83/romfile"
	"github.com/valerio/go-sm83/sm83/serial"
)

const (
	// post-boot value of the internal divider, DIV reads 0xAB
	bootDivider uint16 = 0xABCC
	// post-boot IF: VBlank requested, unused bits high
	bootIF uint8 = 0xE1
)

// Machine is a complete system around one core.
type Machine struct {
	cpu    *cpu.CPU
	mem    *memory.MMU
	irq    *interrupt.Controller
	serial *serial.LogSink

	logger     *slog.Logger
	trace      bool
	serialOpts []serial.LogSinkOption
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger shared by the machine and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(m *Machine) { m.trace = enabled }
}

// WithSerialOptions configures the serial log sink.
func WithSerialOptions(opts ...serial.LogSinkOption) Option {
	return func(m *Machine) { m.serialOpts = append(m.serialOpts, opts...) }
}

// New creates a machine running the program image rom. The cartridge type is
// checked before anything runs: images that need a bank controller fail with
// memory.ErrUnsupportedCartridge.
func New(rom []byte, opts ...Option) (*Machine, error) {
	m := &Machine{
		logger: slog.Default(),
		irq:    interrupt.New(),
	}
	for _, opt := range opts {
		opt(m)
	}

	cart, err := memory.NewCartridgeWithData(rom)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	irq := m.irq
	sinkOpts := append([]serial.LogSinkOption{serial.WithLogger(m.logger)}, m.serialOpts...)
	m.serial = serial.NewLogSink(func() { irq.Request(interrupt.Serial) }, sinkOpts...)

	m.mem, err = memory.NewWithCartridge(cart, irq, memory.WithSerial(m.serial))
	if err != nil {
		return nil, fmt.Errorf("loading cartridge %q: %w", cart.Title(), err)
	}
	m.cpu = cpu.New(m.mem, irq, cpu.WithLogger(m.logger))
	m.Reset()

	m.logger.Info("Loaded cartridge",
		"title", cart.Title(),
		"type", cart.TypeName(),
		"size", cart.Len(),
		"xxhash", fmt.Sprintf("%016x", cart.Fingerprint()),
		"header_checksum_ok", cart.HeaderChecksumValid())

	return m, nil
}

// NewWithFile creates a machine from the ROM file at path, unpacking it if
// it is compressed or archived.
func NewWithFile(path string, opts ...Option) (*Machine, error) {
	data, err := romfile.Load(path)
	if err != nil {
		return nil, err
	}
	return New(data, opts...)
}

// Reset puts the core, the interrupt latches, RAM and the peripherals back
// in their post-boot state. The cartridge stays inserted.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.irq.SetIF(bootIF)
	m.irq.SetIE(0)
	m.serial.Reset()
	m.mem.Reset(bootDivider)
}

// Step executes one instruction (or one idle slot while halted), advances
// the peripherals by the time it took and returns that time in clock ticks.
func (m *Machine) Step() int {
	tracing := m.trace && m.logger.Enabled(context.Background(), slog.LevelDebug)

	var line disasm.Line
	if tracing {
		line = disasm.At(m.cpu.Registers().PC, m.mem)
	}

	cycles := m.cpu.Step()
	m.mem.Tick(cycles)

	if tracing {
		regs := m.cpu.Registers()
		m.logger.Debug("step",
			"pc", fmt.Sprintf("0x%04X", line.Address),
			"op", line.Instruction,
			"cycles", cycles,
			"af", fmt.Sprintf("0x%04X", regs.AF()),
			"bc", fmt.Sprintf("0x%04X", regs.BC()),
			"de", fmt.Sprintf("0x%04X", regs.DE()),
			"hl", fmt.Sprintf("0x%04X", regs.HL()),
			"sp", fmt.Sprintf("0x%04X", regs.SP),
			"ime", m.cpu.IME())
	}
	return cycles
}

// RunSteps executes n steps and returns the clock ticks they took.
func (m *Machine) RunSteps(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += m.Step()
	}
	return total
}

// RunCycles steps until at least n clock ticks have elapsed and returns the
// exact amount, which overshoots n by less than one instruction.
func (m *Machine) RunCycles(n int) int {
	total := 0
	for total < n {
		total += m.Step()
	}
	return total
}

// CPU returns the core.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Interrupts returns the interrupt controller.
func (m *Machine) Interrupts() *interrupt.Controller { return m.irq }

// Memory returns the address space.
func (m *Machine) Memory() *memory.MMU { return m.mem }

// Read returns the byte at address without advancing time.
func (m *Machine) Read(address uint16) byte { return m.mem.Read(address) }

// Cartridge returns the inserted cartridge.
func (m *Machine) Cartridge() *memory.Cartridge { return m.mem.Cartridge() }

// SerialOutput returns everything the program has sent over the link port.
func (m *Machine) SerialOutput() string { return m.serial.Output() }
