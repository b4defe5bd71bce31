package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-sm83/sm83/addr"
	"github.com/valerio/go-sm83/sm83/interrupt"
	"github.com/valerio/go-sm83/sm83/serial"
)

func newTestMMU(t *testing.T) (*MMU, *interrupt.Controller) {
	t.Helper()
	rom := newROM("MMU", ROMOnly)
	rom[0x0150] = 0xAB
	cart, err := NewCartridgeWithData(rom)
	require.NoError(t, err)

	irq := interrupt.New()
	m, err := NewWithCartridge(cart, irq)
	require.NoError(t, err)
	return m, irq
}

func TestMMU_unsupportedCartridge(t *testing.T) {
	cart, err := NewCartridgeWithData(newROM("MBC5", 0x19))
	require.NoError(t, err)

	m, err := NewWithCartridge(cart, interrupt.New())
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrUnsupportedCartridge)
}

func TestMMU_noCartridge(t *testing.T) {
	m := New(interrupt.New())
	assert.Nil(t, m.Cartridge())
	assert.Equal(t, uint8(0xFF), m.Read(0x0100))
	m.Write(0x2000, 0x01)
}

func TestMMU_cartridgeArea(t *testing.T) {
	m, _ := newTestMMU(t)

	assert.Equal(t, uint8(0xAB), m.Read(0x0150))
	m.Write(0x0150, 0x00)
	assert.Equal(t, uint8(0xAB), m.Read(0x0150))
	assert.Equal(t, uint8(0xFF), m.Read(0xA000))
	assert.Equal(t, "MMU", m.Cartridge().Title())
}

func TestMMU_ram(t *testing.T) {
	m, _ := newTestMMU(t)

	for _, address := range []uint16{0x8000, 0x9FFF, 0xC000, 0xDFFF, 0xFE00, 0xFE9F, 0xFF80, 0xFFFE} {
		m.Write(address, 0x5A)
		assert.Equal(t, uint8(0x5A), m.Read(address), "0x%04X", address)
	}
}

func TestMMU_echo(t *testing.T) {
	m, _ := newTestMMU(t)

	m.Write(0xC123, 0x11)
	assert.Equal(t, uint8(0x11), m.Read(0xE123))

	m.Write(0xFDFF, 0x22)
	assert.Equal(t, uint8(0x22), m.Read(0xDDFF))
}

func TestMMU_unusableArea(t *testing.T) {
	m, _ := newTestMMU(t)

	m.Write(0xFEA0, 0x12)
	assert.Equal(t, uint8(0xFF), m.Read(0xFEA0))
}

func TestMMU_interruptRegisters(t *testing.T) {
	m, irq := newTestMMU(t)

	m.Write(addr.IE, 0x1F)
	assert.Equal(t, uint8(0x1F), irq.IE())
	assert.Equal(t, uint8(0x1F), m.Read(addr.IE))

	m.Write(addr.IF, 0x04)
	assert.Equal(t, uint8(0x04), irq.IF())
	assert.Equal(t, uint8(0xE4), m.Read(addr.IF))

	irq.Request(interrupt.VBlank)
	assert.Equal(t, uint8(0xE5), m.Read(addr.IF))
}

func TestMMU_timerRaisesInterrupt(t *testing.T) {
	m, irq := newTestMMU(t)

	m.Write(addr.TMA, 0xF0)
	m.Write(addr.TIMA, 0xFF)
	// enabled, bit 3 of the divider: one increment every 16 ticks
	m.Write(addr.TAC, 0x05)

	m.Tick(16)
	assert.Equal(t, uint8(0x00), m.Read(addr.TIMA))
	assert.False(t, irq.CanServiceAny())

	m.Tick(reloadDelay)
	assert.Equal(t, uint8(0xF0), m.Read(addr.TIMA))
	assert.Equal(t, uint8(interrupt.Timer), irq.IF())
}

func TestMMU_serialRaisesInterrupt(t *testing.T) {
	m, irq := newTestMMU(t)

	m.Write(addr.SB, 'O')
	m.Write(addr.SC, 0x81)

	assert.Equal(t, uint8(interrupt.Serial), irq.IF())
	assert.Equal(t, uint8(0xFF), m.Read(addr.SB))
	assert.Equal(t, uint8(0x7F), m.Read(addr.SC))
}

func TestMMU_withSerial(t *testing.T) {
	irq := interrupt.New()
	sink := serial.NewLogSink(func() { irq.Request(interrupt.Serial) }, serial.WithFixedTiming())
	m := New(irq, WithSerial(sink))

	m.Write(addr.SB, 'k')
	m.Write(addr.SC, 0x81)
	assert.Zero(t, irq.IF())

	m.Tick(serial.TicksPerByte)
	assert.Equal(t, uint8(interrupt.Serial), irq.IF())
	assert.Equal(t, "k", sink.Output())
}

func TestMMU_joypad(t *testing.T) {
	m, irq := newTestMMU(t)

	// select the buttons group
	m.Write(addr.P1, 0x10)
	assert.Equal(t, uint8(0xDF), m.Read(addr.P1))

	m.Joypad().Press(JoypadStart)
	assert.Equal(t, uint8(0xD7), m.Read(addr.P1))
	assert.Equal(t, uint8(interrupt.Joypad), irq.IF())

	m.Joypad().Release(JoypadStart)
	assert.Equal(t, uint8(0xDF), m.Read(addr.P1))
}

func TestMMU_reset(t *testing.T) {
	m, irq := newTestMMU(t)
	m.Write(0xC000, 0x42)
	m.Write(0xFF80, 0x24)
	m.Write(addr.TAC, 0x05)
	m.Write(addr.TMA, 0x80)
	m.Write(addr.P1, 0x10)
	m.Joypad().Press(JoypadA)
	irq.SetIE(0x1F)

	m.Reset(0xABCC)

	assert.Equal(t, uint8(0x00), m.Read(0xC000))
	assert.Equal(t, uint8(0x00), m.Read(0xFF80))
	assert.Equal(t, uint8(0xF8), m.Read(addr.TAC))
	assert.Equal(t, uint8(0x00), m.Read(addr.TMA))
	assert.Equal(t, uint8(0xAB), m.Read(addr.DIV))
	assert.Equal(t, uint8(0xFF), m.Read(addr.P1))
	assert.Equal(t, uint8(0xAB), m.Read(0x0150))
	assert.Equal(t, uint8(0x1F), irq.IE())
}
