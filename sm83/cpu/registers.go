package cpu

import "github.com/valerio/go-sm83/sm83/bit"

// Flag is one of the 4 condition flags held in the high nibble of F.
type Flag uint8

const (
	ZeroFlag      Flag = 0x80
	SubFlag       Flag = 0x40
	HalfCarryFlag Flag = 0x20
	CarryFlag     Flag = 0x10
)

// the low nibble of F does not exist in hardware and always reads as zero.
const flagMask uint8 = 0xF0

// Flags is the F register. The raw byte is only reachable through accessors
// that mask off the low nibble.
type Flags struct {
	value uint8
}

// NewFlags builds a flag register from a raw byte, dropping the low nibble.
func NewFlags(value uint8) Flags {
	return Flags{value: value & flagMask}
}

// makeFlags builds a flag register with every flag explicitly given.
func makeFlags(z, n, h, c bool) Flags {
	var f Flags
	f.Put(ZeroFlag, z)
	f.Put(SubFlag, n)
	f.Put(HalfCarryFlag, h)
	f.Put(CarryFlag, c)
	return f
}

// Byte returns F as a byte.
func (f Flags) Byte() uint8 {
	return f.value & flagMask
}

// SetByte overwrites all flags at once.
func (f *Flags) SetByte(value uint8) {
	f.value = value & flagMask
}

// Has reports whether flag is set.
func (f Flags) Has(flag Flag) bool {
	return f.value&uint8(flag) != 0
}

// Put sets or clears flag according to condition, leaving the others alone.
func (f *Flags) Put(flag Flag, condition bool) {
	if condition {
		f.value |= uint8(flag)
	} else {
		f.value &^= uint8(flag)
	}
	f.value &= flagMask
}

func (f Flags) Z() bool { return f.Has(ZeroFlag) }
func (f Flags) N() bool { return f.Has(SubFlag) }
func (f Flags) H() bool { return f.Has(HalfCarryFlag) }
func (f Flags) C() bool { return f.Has(CarryFlag) }

func (f *Flags) SetZ(v bool) { f.Put(ZeroFlag, v) }
func (f *Flags) SetN(v bool) { f.Put(SubFlag, v) }
func (f *Flags) SetH(v bool) { f.Put(HalfCarryFlag, v) }
func (f *Flags) SetC(v bool) { f.Put(CarryFlag, v) }

// carry returns the carry flag as 0 or 1.
func (f Flags) carry() uint8 {
	if f.C() {
		return 1
	}
	return 0
}

// String returns a human-readable representation of the flag register,
// e.g. "Z-H-".
func (f Flags) String() string {
	out := []byte("----")
	for i, flag := range [...]Flag{ZeroFlag, SubFlag, HalfCarryFlag, CarryFlag} {
		if f.Has(flag) {
			out[i] = "ZNHC"[i]
		}
	}
	return string(out)
}

// Registers is the register file: seven general purpose 8-bit registers, the
// flag register and the two 16-bit pointers.
type Registers struct {
	A, B, C, D, E, H, L uint8
	F                   Flags
	SP, PC              uint16
}

func (r *Registers) AF() uint16 { return bit.Combine(r.A, r.F.Byte()) }
func (r *Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r *Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r *Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

func (r *Registers) SetAF(value uint16) {
	r.A = bit.High(value)
	r.F.SetByte(bit.Low(value))
}

func (r *Registers) SetBC(value uint16) {
	r.B, r.C = bit.High(value), bit.Low(value)
}

func (r *Registers) SetDE(value uint16) {
	r.D, r.E = bit.High(value), bit.Low(value)
}

func (r *Registers) SetHL(value uint16) {
	r.H, r.L = bit.High(value), bit.Low(value)
}

// ConditionMet reports whether a conditional branch on cc is taken.
func (r *Registers) ConditionMet(cc Condition) bool {
	switch cc {
	case CondNZ:
		return !r.F.Z()
	case CondZ:
		return r.F.Z()
	case CondNC:
		return !r.F.C()
	case CondC:
		return r.F.C()
	}
	return false
}

// reg8 returns the storage of a plain register. RegHLIndirect has none, its
// operand lives on the bus.
func (r *Registers) reg8(id Reg8) *uint8 {
	switch id {
	case RegB:
		return &r.B
	case RegC:
		return &r.C
	case RegD:
		return &r.D
	case RegE:
		return &r.E
	case RegH:
		return &r.H
	case RegL:
		return &r.L
	case RegA:
		return &r.A
	}
	return nil
}

// Get16 reads a register pair or SP.
func (r *Registers) Get16(id Reg16) uint16 {
	switch id {
	case RegBC:
		return r.BC()
	case RegDE:
		return r.DE()
	case RegHL:
		return r.HL()
	case RegSP:
		return r.SP
	case RegAF:
		return r.AF()
	}
	return 0
}

// Set16 writes a register pair or SP.
func (r *Registers) Set16(id Reg16, value uint16) {
	switch id {
	case RegBC:
		r.SetBC(value)
	case RegDE:
		r.SetDE(value)
	case RegHL:
		r.SetHL(value)
	case RegSP:
		r.SP = value
	case RegAF:
		r.SetAF(value)
	}
}
