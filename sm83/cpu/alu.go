package cpu

import "github.com/valerio/go-sm83/sm83/bit"

// The functions below are pure: they take operands (and incoming flags where
// an operation needs them) and return the result together with a fully
// assigned flag register.

// add8 computes a + b + carryIn, carryIn being 0 or 1.
func add8(a, b uint8, carryIn uint8) (uint8, Flags) {
	sum := uint16(a) + uint16(b) + uint16(carryIn)
	result := uint8(sum)
	halfCarry := (a&0xF)+(b&0xF)+carryIn > 0xF

	return result, makeFlags(result == 0, false, halfCarry, sum > 0xFF)
}

// sub8 computes a - b - carryIn. CP uses it and drops the result.
func sub8(a, b uint8, carryIn uint8) (uint8, Flags) {
	diff := int(a) - int(b) - int(carryIn)
	result := uint8(diff)
	halfBorrow := int(a&0xF)-int(b&0xF)-int(carryIn) < 0

	return result, makeFlags(result == 0, true, halfBorrow, diff < 0)
}

func and8(a, b uint8) (uint8, Flags) {
	result := a & b
	return result, makeFlags(result == 0, false, true, false)
}

func or8(a, b uint8) (uint8, Flags) {
	result := a | b
	return result, makeFlags(result == 0, false, false, false)
}

func xor8(a, b uint8) (uint8, Flags) {
	result := a ^ b
	return result, makeFlags(result == 0, false, false, false)
}

// addHL computes hl + value. Z is carried over from f.
func addHL(hl, value uint16, f Flags) (uint16, Flags) {
	sum := uint32(hl) + uint32(value)
	halfCarry := (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF

	return uint16(sum), makeFlags(f.Z(), false, halfCarry, sum > 0xFFFF)
}

// addSP adds a signed displacement to sp. Carries are those of the unsigned
// add of the low byte of sp and the displacement byte.
func addSP(sp uint16, displacement uint8) (uint16, Flags) {
	low := uint8(sp)
	halfCarry := (low&0xF)+(displacement&0xF) > 0xF
	carry := uint16(low)+uint16(displacement) > 0xFF

	return sp + bit.SignExtend(displacement), makeFlags(false, false, halfCarry, carry)
}

// rotateLeft shifts value left by one. The outgoing bit 7 goes to C; bit 0
// receives bit 7 (circular) or the incoming carry (throughCarry).
func rotateLeft(value uint8, throughCarry bool, f Flags) (uint8, Flags) {
	in := value >> 7
	if throughCarry {
		in = f.carry()
	}
	result := value<<1 | in

	return result, makeFlags(result == 0, false, false, value&0x80 != 0)
}

// rotateRight shifts value right by one. The outgoing bit 0 goes to C; bit 7
// receives bit 0 (circular) or the incoming carry (throughCarry).
func rotateRight(value uint8, throughCarry bool, f Flags) (uint8, Flags) {
	in := value << 7
	if throughCarry {
		in = f.carry() << 7
	}
	result := value>>1 | in

	return result, makeFlags(result == 0, false, false, value&0x01 != 0)
}

func shiftLeftArithmetic(value uint8) (uint8, Flags) {
	result := value << 1
	return result, makeFlags(result == 0, false, false, value&0x80 != 0)
}

// shiftRightArithmetic keeps bit 7 in place.
func shiftRightArithmetic(value uint8) (uint8, Flags) {
	result := value>>1 | value&0x80
	return result, makeFlags(result == 0, false, false, value&0x01 != 0)
}

func shiftRightLogical(value uint8) (uint8, Flags) {
	result := value >> 1
	return result, makeFlags(result == 0, false, false, value&0x01 != 0)
}

func swap(value uint8) (uint8, Flags) {
	result := value<<4 | value>>4
	return result, makeFlags(result == 0, false, false, false)
}

// daa corrects a after a BCD add (N clear) or subtract (N set). Corrections
// are not chained: the add path adds 0x06 and/or 0x60, the subtract path
// removes them, both driven by H, C and the digit overflow.
func daa(a uint8, f Flags) (uint8, Flags) {
	v := int(a)

	if !f.N() {
		if f.H() || v&0x0F > 0x09 {
			v += 0x06
		}
		if f.C() || v > 0x9F {
			v += 0x60
		}
	} else {
		if f.H() {
			v = (v - 0x06) & 0xFF
		}
		if f.C() {
			v -= 0x60
		}
	}

	carry := f.C() || v&0x100 != 0
	result := uint8(v & 0xFF)

	return result, makeFlags(result == 0, f.N(), false, carry)
}
