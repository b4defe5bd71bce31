package cpu

import "github.com/valerio/go-sm83/sm83/bit"

// instruction executes a decoded opcode on c.
type instruction func(c *CPU)

// The dispatch tables are built once from the opcode bit fields:
//
//	x = bits 7-6, y = bits 5-3, z = bits 2-0, p = bits 5-4, q = bit 3
//
// and never change afterwards.
var (
	opcodes   = buildOpcodes()
	opcodesCB = buildOpcodesCB()
)

func buildOpcodes() [256]instruction {
	var table [256]instruction
	for i := range table {
		table[i] = decode(uint8(i))
	}
	return table
}

func buildOpcodesCB() [256]instruction {
	var table [256]instruction
	for i := range table {
		table[i] = decodeCB(uint8(i))
	}
	return table
}

func always(*Registers) bool { return true }

func when(cc Condition) func(*Registers) bool {
	return func(r *Registers) bool { return r.ConditionMet(cc) }
}

// decode returns the handler for an unprefixed opcode.
func decode(op uint8) instruction {
	x := bit.Field(op, 7, 6)
	y := bit.Field(op, 5, 3)
	z := bit.Field(op, 2, 0)

	switch x {
	case 0:
		return decodeBlock0(y, z)
	case 1:
		if op == 0x76 {
			return (*CPU).halt
		}
		dst, src := R(y), R(z)
		return func(c *CPU) { c.load8(dst, src) }
	case 2:
		alu, src := aluOp(y), R(z)
		return func(c *CPU) { c.accumulate(alu, c.get8(src)) }
	default:
		return decodeBlock3(y, z)
	}
}

// decodeBlock0 covers 0x00-0x3F: loads, 16-bit arithmetic, INC/DEC, relative
// jumps and the accumulator/flag operations.
func decodeBlock0(y, z uint8) instruction {
	p, q := y>>1, y&1

	switch z {
	case 0:
		switch y {
		case 0:
			return (*CPU).nop
		case 1:
			return (*CPU).storeSP
		case 2:
			return (*CPU).stop
		case 3:
			return func(c *CPU) { c.jumpRelative(always) }
		default:
			cond := when(CC(y - 4))
			return func(c *CPU) { c.jumpRelative(cond) }
		}
	case 1:
		rp := RP(p)
		if q == 0 {
			return func(c *CPU) { c.loadImmediate16(rp) }
		}
		return func(c *CPU) { c.addToHL(rp) }
	case 2:
		var address func(c *CPU) uint16
		switch p {
		case 0:
			address = func(c *CPU) uint16 { return c.regs.BC() }
		case 1:
			address = func(c *CPU) uint16 { return c.regs.DE() }
		case 2:
			address = func(c *CPU) uint16 { return c.hlPostStep(1) }
		default:
			address = func(c *CPU) uint16 { return c.hlPostStep(0xFFFF) }
		}
		if q == 0 {
			return func(c *CPU) { c.storeA(address(c)) }
		}
		return func(c *CPU) { c.loadA(address(c)) }
	case 3:
		rp := RP(p)
		if q == 0 {
			return func(c *CPU) { c.inc16(rp) }
		}
		return func(c *CPU) { c.dec16(rp) }
	case 4:
		r := R(y)
		return func(c *CPU) { c.inc8(r) }
	case 5:
		r := R(y)
		return func(c *CPU) { c.dec8(r) }
	case 6:
		r := R(y)
		return func(c *CPU) { c.loadImmediate8(r) }
	}

	switch y {
	case 0:
		return func(c *CPU) { c.rotateA(true, false) }
	case 1:
		return func(c *CPU) { c.rotateA(false, false) }
	case 2:
		return func(c *CPU) { c.rotateA(true, true) }
	case 3:
		return func(c *CPU) { c.rotateA(false, true) }
	case 4:
		return (*CPU).decimalAdjust
	case 5:
		return (*CPU).complement
	case 6:
		return (*CPU).setCarry
	default:
		return (*CPU).complementCarry
	}
}

// decodeBlock3 covers 0xC0-0xFF: control flow, stack, I/O page accesses,
// immediate ALU operations, the 0xCB prefix and the undefined opcodes.
func decodeBlock3(y, z uint8) instruction {
	p, q := y>>1, y&1

	switch z {
	case 0:
		switch {
		case y < 4:
			cc := CC(y)
			return func(c *CPU) { c.retConditional(cc) }
		case y == 4:
			return func(c *CPU) { c.storeHigh(c.fetch()) }
		case y == 5:
			return (*CPU).addToSP
		case y == 6:
			return func(c *CPU) { c.loadHigh(c.fetch()) }
		default:
			return (*CPU).loadHLFromSP
		}
	case 1:
		if q == 0 {
			rp := RP2(p)
			return func(c *CPU) { c.popPair(rp) }
		}
		switch p {
		case 0:
			return (*CPU).ret
		case 1:
			return (*CPU).retInterrupt
		case 2:
			return (*CPU).jumpHL
		default:
			return (*CPU).loadSPFromHL
		}
	case 2:
		switch {
		case y < 4:
			cond := when(CC(y))
			return func(c *CPU) { c.jumpAbsolute(cond) }
		case y == 4:
			return func(c *CPU) { c.storeHigh(c.regs.C) }
		case y == 5:
			return func(c *CPU) { c.storeA(c.fetchWord()) }
		case y == 6:
			return func(c *CPU) { c.loadHigh(c.regs.C) }
		default:
			return func(c *CPU) { c.loadA(c.fetchWord()) }
		}
	case 3:
		switch y {
		case 0:
			return func(c *CPU) { c.jumpAbsolute(always) }
		case 1:
			return (*CPU).extended
		case 6:
			return (*CPU).disableInterrupts
		case 7:
			return (*CPU).enableInterrupts
		}
	case 4:
		if y < 4 {
			cond := when(CC(y))
			return func(c *CPU) { c.call(cond) }
		}
	case 5:
		if q == 0 {
			rp := RP2(p)
			return func(c *CPU) { c.pushPair(rp) }
		}
		if p == 0 {
			return func(c *CPU) { c.call(always) }
		}
	case 6:
		alu := aluOp(y)
		return func(c *CPU) { c.accumulate(alu, c.fetch()) }
	case 7:
		address := uint16(y) * 8
		return func(c *CPU) { c.restart(address) }
	}

	return (*CPU).lockUp
}

// decodeCB returns the handler for an opcode following the 0xCB prefix.
func decodeCB(op uint8) instruction {
	x := bit.Field(op, 7, 6)
	y := bit.Field(op, 5, 3)
	r := R(bit.Field(op, 2, 0))

	switch x {
	case 0:
		shift := shiftOp(y)
		return func(c *CPU) { c.shift(shift, r) }
	case 1:
		return func(c *CPU) { c.testBit(y, r) }
	case 2:
		return func(c *CPU) { c.resetBit(y, r) }
	default:
		return func(c *CPU) { c.setBit(y, r) }
	}
}

// Undefined reports whether op is one of the unprefixed opcodes the hardware
// does not implement.
func Undefined(op uint8) bool {
	switch op {
	case 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD:
		return true
	}
	return false
}
