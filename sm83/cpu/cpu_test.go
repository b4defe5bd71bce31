package cpu

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-sm83/sm83/interrupt"
)

func TestCPU_postBootState(t *testing.T) {
	cpu := New(&flatBus{}, interrupt.New())
	regs := cpu.Registers()

	assert.Equal(t, uint16(0x01B0), regs.AF())
	assert.Equal(t, uint16(0x0013), regs.BC())
	assert.Equal(t, uint16(0x00D8), regs.DE())
	assert.Equal(t, uint16(0x014D), regs.HL())
	assert.Equal(t, uint16(0xFFFE), regs.SP)
	assert.Equal(t, uint16(0x0100), regs.PC)
	assert.Equal(t, IMEDisabled, cpu.IME())
	assert.False(t, cpu.Halted())
	assert.False(t, cpu.Locked())
}

func TestCPU_jumpRelativeTiming(t *testing.T) {
	t.Run("JR e", func(t *testing.T) {
		cpu, _, _ := newTestCPU(0x18, 0x05)
		assert.Equal(t, 12, cpu.Step())
		assert.Equal(t, uint16(programStart+2+5), cpu.regs.PC)
	})

	t.Run("JR NZ not taken", func(t *testing.T) {
		cpu, _, _ := newTestCPU(0x20, 0x05)
		cpu.regs.F = NewFlags(uint8(ZeroFlag))
		assert.Equal(t, 8, cpu.Step())
		assert.Equal(t, uint16(programStart+2), cpu.regs.PC)
	})

	t.Run("JR NZ taken backwards", func(t *testing.T) {
		cpu, _, _ := newTestCPU(0x20, 0xFE)
		cpu.regs.F = NewFlags(0)
		assert.Equal(t, 12, cpu.Step())
		assert.Equal(t, uint16(programStart), cpu.regs.PC)
	})
}

func TestCPU_pushPopRoundTrip(t *testing.T) {
	// PUSH BC; POP DE
	cpu, bus, _ := newTestCPU(0xC5, 0xD1)
	cpu.regs.SetBC(0x1234)

	assert.Equal(t, 16, cpu.Step())
	assert.Equal(t, uint16(0xCFFE), cpu.regs.SP)
	assert.Equal(t, uint8(0x34), bus.mem[0xCFFE])
	assert.Equal(t, uint8(0x12), bus.mem[0xCFFF])

	assert.Equal(t, 12, cpu.Step())
	assert.Equal(t, uint16(0x1234), cpu.regs.DE())
	assert.Equal(t, uint16(0xD000), cpu.regs.SP)
}

func TestCPU_popAFMasksFlags(t *testing.T) {
	cpu, bus, _ := newTestCPU(0xF1)
	cpu.regs.SP = 0xCFFE
	bus.mem[0xCFFE] = 0xFF
	bus.mem[0xCFFF] = 0x12

	cpu.Step()

	assert.Equal(t, uint16(0x12F0), cpu.regs.AF())
}

func TestCPU_callAndReturn(t *testing.T) {
	// CALL 0xC010 ... at 0xC010: RET
	cpu, bus, _ := newTestCPU(0xCD, 0x10, 0xC0)
	bus.mem[0xC010] = 0xC9

	assert.Equal(t, 24, cpu.Step())
	assert.Equal(t, uint16(0xC010), cpu.regs.PC)
	assert.Equal(t, uint16(0xCFFE), cpu.regs.SP)

	assert.Equal(t, 16, cpu.Step())
	assert.Equal(t, uint16(programStart+3), cpu.regs.PC)
	assert.Equal(t, uint16(0xD000), cpu.regs.SP)
}

func TestCPU_loadIncrementDecrement(t *testing.T) {
	// LD (HL+),A; LD (HL-),A; LD A,(HL-)
	cpu, bus, _ := newTestCPU(0x22, 0x32, 0x3A)
	cpu.regs.SetHL(0xC800)
	cpu.regs.A = 0x42

	cpu.Step()
	assert.Equal(t, uint8(0x42), bus.mem[0xC800])
	assert.Equal(t, uint16(0xC801), cpu.regs.HL())

	cpu.Step()
	assert.Equal(t, uint8(0x42), bus.mem[0xC801])
	assert.Equal(t, uint16(0xC800), cpu.regs.HL())

	cpu.regs.A = 0
	cpu.Step()
	assert.Equal(t, uint8(0x42), cpu.regs.A)
	assert.Equal(t, uint16(0xC7FF), cpu.regs.HL())
}

func TestCPU_incDecPreserveCarry(t *testing.T) {
	// INC B; DEC C
	cpu, _, _ := newTestCPU(0x04, 0x0D)
	cpu.regs.B = 0x0F
	cpu.regs.C = 0x01
	cpu.regs.F = NewFlags(uint8(CarryFlag))

	cpu.Step()
	assert.Equal(t, uint8(0x10), cpu.regs.B)
	assert.Equal(t, uint8(HalfCarryFlag|CarryFlag), cpu.regs.F.Byte())

	cpu.Step()
	assert.Equal(t, uint8(0x00), cpu.regs.C)
	assert.Equal(t, uint8(ZeroFlag|SubFlag|CarryFlag), cpu.regs.F.Byte())
}

func TestCPU_accumulatorRotateClearsZero(t *testing.T) {
	// RLCA with A=0 still clears Z
	cpu, _, _ := newTestCPU(0x07)
	cpu.regs.A = 0x00
	cpu.regs.F = NewFlags(uint8(ZeroFlag))

	cpu.Step()

	assert.Equal(t, uint8(0), cpu.regs.F.Byte())
}

func TestCPU_eiLatency(t *testing.T) {
	// EI; NOP; NOP
	cpu, _, irq := newTestCPU(0xFB, 0x00, 0x00)
	irq.SetIE(uint8(interrupt.VBlank))
	irq.Request(interrupt.VBlank)

	assert.Equal(t, 4, cpu.Step(), "EI itself never services")
	assert.Equal(t, uint16(programStart+1), cpu.regs.PC)
	assert.Equal(t, IMEEnabled, cpu.IME())

	assert.Equal(t, 24, cpu.Step(), "instruction after EI runs, then service")
	assert.Equal(t, interrupt.VBlank.Vector(), cpu.regs.PC)
	assert.Equal(t, IMEDisabled, cpu.IME())
}

func TestCPU_diAfterEI(t *testing.T) {
	// EI; DI; NOP
	cpu, _, irq := newTestCPU(0xFB, 0xF3, 0x00)
	irq.SetIE(uint8(interrupt.Timer))
	irq.Request(interrupt.Timer)

	cpu.Step()
	cpu.Step()
	assert.Equal(t, IMEDisabled, cpu.IME())

	assert.Equal(t, 4, cpu.Step())
	assert.Equal(t, uint16(programStart+3), cpu.regs.PC)
}

func TestCPU_serviceVBlank(t *testing.T) {
	cpu, bus, irq := newTestCPU(0x00)
	cpu.SetIME(IMEEnabled)
	irq.SetIE(0x1F)
	irq.SetIF(uint8(interrupt.VBlank | interrupt.Timer))

	assert.Equal(t, 24, cpu.Step())

	assert.Equal(t, uint16(0x0040), cpu.regs.PC)
	assert.Equal(t, IMEDisabled, cpu.IME())
	assert.Equal(t, uint16(0xCFFE), cpu.regs.SP)
	assert.Equal(t, uint8(0x01), bus.mem[0xCFFE])
	assert.Equal(t, uint8(0xC0), bus.mem[0xCFFF])
	// acknowledgment clears the enable bit, the request stays
	assert.Equal(t, uint8(0x1E), irq.IE())
	assert.Equal(t, uint8(interrupt.VBlank|interrupt.Timer), irq.IF())
}

func TestCPU_servicePriority(t *testing.T) {
	vectors := []uint16{0x40, 0x48, 0x50, 0x58, 0x60}

	cpu, _, irq := newTestCPU(0x00)
	irq.SetIE(0x1F)
	irq.SetIF(0x1F)

	for _, want := range vectors {
		cpu.SetIME(IMEEnabled)
		// the routines are all zeroes, so every step runs one NOP
		assert.Equal(t, 24, cpu.Step())
		assert.Equal(t, want, cpu.regs.PC)
	}

	cpu.SetIME(IMEEnabled)
	assert.Equal(t, 4, cpu.Step())
	assert.Equal(t, uint8(0), irq.IE())
}

func TestCPU_onlyOneServicePerStep(t *testing.T) {
	cpu, _, irq := newTestCPU(0x00)
	cpu.SetIME(IMEEnabled)
	irq.SetIE(0x1F)
	irq.SetIF(0x1F)

	cpu.Step()

	assert.Equal(t, uint8(0x1E), irq.IE())
	assert.Equal(t, uint16(0xCFFE), cpu.regs.SP)
}

func TestCPU_reti(t *testing.T) {
	// RETI returning to 0xC123
	cpu, bus, _ := newTestCPU(0xD9)
	cpu.regs.SP = 0xCFFE
	bus.mem[0xCFFE] = 0x23
	bus.mem[0xCFFF] = 0xC1

	assert.Equal(t, 16, cpu.Step())
	assert.Equal(t, uint16(0xC123), cpu.regs.PC)
	assert.Equal(t, IMEEnabled, cpu.IME())
}

func TestCPU_haltExitWithoutService(t *testing.T) {
	// HALT; INC A
	cpu, _, irq := newTestCPU(0x76, 0x3C)
	cpu.regs.A = 0

	assert.Equal(t, 4, cpu.Step())
	require.True(t, cpu.Halted())

	for i := 0; i < 3; i++ {
		assert.Equal(t, 4, cpu.Step())
		assert.True(t, cpu.Halted())
		assert.Equal(t, uint16(programStart+1), cpu.regs.PC)
	}

	irq.SetIE(uint8(interrupt.Joypad))
	irq.Request(interrupt.Joypad)

	assert.Equal(t, 4, cpu.Step())
	assert.False(t, cpu.Halted())
	assert.Equal(t, uint16(programStart+1), cpu.regs.PC, "IME off: no jump")
	assert.Equal(t, uint8(interrupt.Joypad), irq.IF()&uint8(interrupt.Joypad))

	cpu.Step()
	assert.Equal(t, uint8(1), cpu.regs.A)
}

func TestCPU_haltWakesIntoService(t *testing.T) {
	cpu, _, irq := newTestCPU(0x76)
	cpu.SetIME(IMEEnabled)
	cpu.Step()
	require.True(t, cpu.Halted())

	irq.SetIE(uint8(interrupt.Serial))
	irq.Request(interrupt.Serial)

	assert.Equal(t, 24, cpu.Step())
	assert.False(t, cpu.Halted())
	assert.Equal(t, uint16(0x0058), cpu.regs.PC)
}

func TestCPU_stop(t *testing.T) {
	// STOP 0x00; INC A
	cpu, _, _ := newTestCPU(0x10, 0x00, 0x3C)
	cpu.regs.A = 0

	assert.Equal(t, 4, cpu.Step())
	assert.Equal(t, uint16(programStart+2), cpu.regs.PC)
	assert.False(t, cpu.Halted())

	cpu.Step()
	assert.Equal(t, uint8(1), cpu.regs.A)
}

func TestCPU_lockUp(t *testing.T) {
	var logs bytes.Buffer
	bus := &flatBus{}
	irq := interrupt.New()
	cpu := New(bus, irq, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	bus.mem[programStart] = 0xDD
	cpu.regs.PC = programStart
	cpu.SetIME(IMEEnabled)

	assert.Equal(t, 4, cpu.Step())
	require.True(t, cpu.Locked())
	assert.Contains(t, logs.String(), "opcode=0xDD")

	irq.SetIE(0x1F)
	irq.SetIF(0x1F)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 4, cpu.Step())
		assert.Equal(t, uint16(programStart+1), cpu.regs.PC)
	}
	assert.Equal(t, uint8(0x1F), irq.IE(), "locked core services nothing")
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("locked up")))

	cpu.Reset()
	assert.False(t, cpu.Locked())
}

func TestCPU_totalCycles(t *testing.T) {
	cpu, _, _ := newTestCPU(0x00, 0x18, 0x00, 0x01, 0x34, 0x12)

	cpu.Step()
	cpu.Step()
	cpu.Step()

	assert.Equal(t, uint64(4+12+12), cpu.Cycles())
}

func TestCPU_stateRestore(t *testing.T) {
	// LD A,0x3C; ADD A,0xC6; EI
	cpu, _, _ := newTestCPU(0x3E, 0x3C, 0xC6, 0xC6, 0xFB)
	snapshot := cpu.State()

	cpu.Step()
	cpu.Step()
	cpu.Step()
	after := cpu.State()

	opt := cmp.AllowUnexported(Flags{})
	diff := cmp.Diff(snapshot, after, opt)
	assert.NotEmpty(t, diff)
	assert.Equal(t, uint8(0x02), after.Registers.A)
	assert.Equal(t, uint8(HalfCarryFlag|CarryFlag), after.Registers.F.Byte())
	assert.Equal(t, IMEEnabled, after.IME)

	cpu.Restore(snapshot)
	if diff := cmp.Diff(snapshot, cpu.State(), opt); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}

	cpu.Step()
	cpu.Step()
	cpu.Step()
	if diff := cmp.Diff(after, cpu.State(), opt); diff != "" {
		t.Errorf("replayed state mismatch (-want +got):\n%s", diff)
	}
}
