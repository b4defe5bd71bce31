package cpu

import (
	"io"
	"log/slog"

	"github.com/valerio/go-sm83/sm83/interrupt"
)

// flatBus is 64KB of plain RAM.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(address uint16) byte         { return b.mem[address] }
func (b *flatBus) Write(address uint16, value byte) { b.mem[address] = value }

const programStart = 0xC000

// newTestCPU returns a CPU with program loaded at programStart and PC
// pointing at it.
func newTestCPU(program ...byte) (*CPU, *flatBus, *interrupt.Controller) {
	bus := &flatBus{}
	irq := interrupt.New()
	cpu := New(bus, irq, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	copy(bus.mem[programStart:], program)
	cpu.regs.PC = programStart
	cpu.regs.SP = 0xD000

	return cpu, bus, irq
}
