package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_lowNibbleMasked(t *testing.T) {
	f := NewFlags(0xFF)
	assert.Equal(t, uint8(0xF0), f.Byte())

	f.SetByte(0x0F)
	assert.Equal(t, uint8(0x00), f.Byte())

	var r Registers
	r.SetAF(0x12FF)
	assert.Equal(t, uint8(0x12), r.A)
	assert.Equal(t, uint8(0xF0), r.F.Byte())
	assert.Equal(t, uint16(0x12F0), r.AF())
}

func TestFlags_putTouchesOnlyItsBit(t *testing.T) {
	testCases := []struct {
		flag Flag
		bit  uint8
	}{
		{ZeroFlag, 7},
		{SubFlag, 6},
		{HalfCarryFlag, 5},
		{CarryFlag, 4},
	}

	for _, tC := range testCases {
		f := NewFlags(0xF0)
		f.Put(tC.flag, false)
		assert.Equal(t, uint8(0xF0)&^(1<<tC.bit), f.Byte())

		f = NewFlags(0x00)
		f.Put(tC.flag, true)
		assert.Equal(t, uint8(1<<tC.bit), f.Byte())
	}
}

func TestFlags_namedAccessors(t *testing.T) {
	var f Flags
	f.SetZ(true)
	f.SetC(true)
	assert.True(t, f.Z())
	assert.False(t, f.N())
	assert.False(t, f.H())
	assert.True(t, f.C())
	assert.Equal(t, "Z--C", f.String())

	f.SetN(true)
	f.SetH(true)
	f.SetZ(false)
	assert.Equal(t, "-NHC", f.String())
	assert.Equal(t, uint8(0x70), f.Byte())
}

func TestRegisters_composites(t *testing.T) {
	var r Registers

	r.SetBC(0x1234)
	r.SetDE(0x5678)
	r.SetHL(0x9ABC)

	assert.Equal(t, uint8(0x12), r.B)
	assert.Equal(t, uint8(0x34), r.C)
	assert.Equal(t, uint8(0x56), r.D)
	assert.Equal(t, uint8(0x78), r.E)
	assert.Equal(t, uint8(0x9A), r.H)
	assert.Equal(t, uint8(0xBC), r.L)

	r.Set16(RegSP, 0xFFFE)
	assert.Equal(t, uint16(0xFFFE), r.SP)
	assert.Equal(t, uint16(0x1234), r.Get16(RegBC))
	assert.Equal(t, uint16(0x5678), r.Get16(RegDE))
	assert.Equal(t, uint16(0x9ABC), r.Get16(RegHL))

	r.Set16(RegAF, 0xABCD)
	assert.Equal(t, uint16(0xABC0), r.Get16(RegAF))
}

func TestRegisters_conditionMet(t *testing.T) {
	testCases := []struct {
		desc  string
		flags uint8
		cc    Condition
		want  bool
	}{
		{desc: "NZ with Z clear", flags: 0x00, cc: CondNZ, want: true},
		{desc: "NZ with Z set", flags: 0x80, cc: CondNZ, want: false},
		{desc: "Z with Z set", flags: 0x80, cc: CondZ, want: true},
		{desc: "Z with Z clear", flags: 0x10, cc: CondZ, want: false},
		{desc: "NC with C clear", flags: 0x80, cc: CondNC, want: true},
		{desc: "NC with C set", flags: 0x10, cc: CondNC, want: false},
		{desc: "C with C set", flags: 0x10, cc: CondC, want: true},
		{desc: "C with C clear", flags: 0xE0, cc: CondC, want: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			r := Registers{F: NewFlags(tC.flags)}
			assert.Equal(t, tC.want, r.ConditionMet(tC.cc))
		})
	}
}

func TestTables(t *testing.T) {
	assert.Equal(t, RegB, R(0))
	assert.Equal(t, RegHLIndirect, R(6))
	assert.Equal(t, RegA, R(7))
	assert.Equal(t, RegSP, RP(3))
	assert.Equal(t, RegAF, RP2(3))
	assert.Equal(t, RegHL, RP2(2))
	assert.Equal(t, CondNZ, CC(0))
	assert.Equal(t, CondC, CC(3))

	assert.Equal(t, "(HL)", RegHLIndirect.String())
	assert.Equal(t, "AF", RegAF.String())
	assert.Equal(t, "NC", CondNC.String())
}
