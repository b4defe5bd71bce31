package cpu

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
)

// Instruction handlers. The opcode fetch (one machine cycle) has already been
// charged when a handler runs; every further bus access or internal delay is
// charged by the handler itself.

func (c *CPU) nop() {}

// load8 copies between 8-bit operands: LD r, r'.
func (c *CPU) load8(dst, src Reg8) {
	c.set8(dst, c.get8(src))
}

// loadImmediate8 is LD r, n.
func (c *CPU) loadImmediate8(dst Reg8) {
	c.set8(dst, c.fetch())
}

// loadImmediate16 is LD rr, nn.
func (c *CPU) loadImmediate16(dst Reg16) {
	c.regs.Set16(dst, c.fetchWord())
}

// storeA is LD (rr), A with optional HL post-increment/decrement.
func (c *CPU) storeA(address uint16) {
	c.write(address, c.regs.A)
}

// loadA is LD A, (rr).
func (c *CPU) loadA(address uint16) {
	c.regs.A = c.read(address)
}

// hlPostStep returns HL and then adds step to it, for the (HL+)/(HL-) forms.
func (c *CPU) hlPostStep(step uint16) uint16 {
	hl := c.regs.HL()
	c.regs.SetHL(hl + step)
	return hl
}

// storeSP is LD (nn), SP.
func (c *CPU) storeSP() {
	address := c.fetchWord()
	c.writeWord(address, c.regs.SP)
}

// loadHLFromSP is LD HL, SP+e.
func (c *CPU) loadHLFromSP() {
	e := c.fetch()
	c.delay(1)
	result, flags := addSP(c.regs.SP, e)
	c.regs.SetHL(result)
	c.regs.F = flags
}

// loadSPFromHL is LD SP, HL.
func (c *CPU) loadSPFromHL() {
	c.delay(1)
	c.regs.SP = c.regs.HL()
}

// storeHigh and loadHigh access the I/O page: LDH (n), A and LDH A, (n), and
// the (C) forms with C as the offset.
func (c *CPU) storeHigh(offset uint8) { c.write(0xFF00|uint16(offset), c.regs.A) }
func (c *CPU) loadHigh(offset uint8)  { c.regs.A = c.read(0xFF00 | uint16(offset)) }

func (c *CPU) inc8(r Reg8) {
	result := c.get8(r) + 1
	c.set8(r, result)

	c.regs.F.SetZ(result == 0)
	c.regs.F.SetN(false)
	c.regs.F.SetH(result&0x0F == 0)
}

func (c *CPU) dec8(r Reg8) {
	result := c.get8(r) - 1
	c.set8(r, result)

	c.regs.F.SetZ(result == 0)
	c.regs.F.SetN(true)
	c.regs.F.SetH(result&0x0F == 0x0F)
}

func (c *CPU) inc16(r Reg16) {
	c.delay(1)
	c.regs.Set16(r, c.regs.Get16(r)+1)
}

func (c *CPU) dec16(r Reg16) {
	c.delay(1)
	c.regs.Set16(r, c.regs.Get16(r)-1)
}

// addToHL is ADD HL, rr.
func (c *CPU) addToHL(r Reg16) {
	c.delay(1)
	result, flags := addHL(c.regs.HL(), c.regs.Get16(r), c.regs.F)
	c.regs.SetHL(result)
	c.regs.F = flags
}

// addToSP is ADD SP, e.
func (c *CPU) addToSP() {
	e := c.fetch()
	c.delay(2)
	c.regs.SP, c.regs.F = addSP(c.regs.SP, e)
}

// aluOp identifies one of the eight accumulator operations selected by bits
// 5-3 of the opcode.
type aluOp uint8

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

// accumulate applies op to A and operand.
func (c *CPU) accumulate(op aluOp, operand uint8) {
	a := c.regs.A
	var result uint8
	var flags Flags

	switch op {
	case aluAdd:
		result, flags = add8(a, operand, 0)
	case aluAdc:
		result, flags = add8(a, operand, c.regs.F.carry())
	case aluSub:
		result, flags = sub8(a, operand, 0)
	case aluSbc:
		result, flags = sub8(a, operand, c.regs.F.carry())
	case aluAnd:
		result, flags = and8(a, operand)
	case aluXor:
		result, flags = xor8(a, operand)
	case aluOr:
		result, flags = or8(a, operand)
	case aluCp:
		_, flags = sub8(a, operand, 0)
		result = a
	}

	c.regs.A = result
	c.regs.F = flags
}

// rotateA implements RLCA, RRCA, RLA and RRA, which always clear Z.
func (c *CPU) rotateA(left, throughCarry bool) {
	var flags Flags
	if left {
		c.regs.A, flags = rotateLeft(c.regs.A, throughCarry, c.regs.F)
	} else {
		c.regs.A, flags = rotateRight(c.regs.A, throughCarry, c.regs.F)
	}
	flags.SetZ(false)
	c.regs.F = flags
}

func (c *CPU) decimalAdjust() {
	c.regs.A, c.regs.F = daa(c.regs.A, c.regs.F)
}

// complement is CPL.
func (c *CPU) complement() {
	c.regs.A = ^c.regs.A
	c.regs.F.SetN(true)
	c.regs.F.SetH(true)
}

// setCarry is SCF.
func (c *CPU) setCarry() {
	c.regs.F.SetN(false)
	c.regs.F.SetH(false)
	c.regs.F.SetC(true)
}

// complementCarry is CCF.
func (c *CPU) complementCarry() {
	c.regs.F.SetN(false)
	c.regs.F.SetH(false)
	c.regs.F.SetC(!c.regs.F.C())
}

// jumpRelative is JR e. The displacement is fetched even when the branch is
// not taken; taking it costs one more cycle.
func (c *CPU) jumpRelative(cond func(*Registers) bool) {
	e := c.fetch()
	if !cond(&c.regs) {
		return
	}
	c.delay(1)
	c.regs.PC += bit.SignExtend(e)
}

// jumpAbsolute is JP nn and JP cc, nn.
func (c *CPU) jumpAbsolute(cond func(*Registers) bool) {
	address := c.fetchWord()
	if !cond(&c.regs) {
		return
	}
	c.delay(1)
	c.regs.PC = address
}

// jumpHL is JP HL.
func (c *CPU) jumpHL() {
	c.regs.PC = c.regs.HL()
}

// call is CALL nn and CALL cc, nn.
func (c *CPU) call(cond func(*Registers) bool) {
	address := c.fetchWord()
	if !cond(&c.regs) {
		return
	}
	c.delay(1)
	c.push(c.regs.PC)
	c.regs.PC = address
}

// ret is the unconditional RET.
func (c *CPU) ret() {
	c.delay(1)
	c.regs.PC = c.pop()
}

// retConditional is RET cc: evaluating the condition takes a cycle of its own.
func (c *CPU) retConditional(cc Condition) {
	c.delay(1)
	if !c.regs.ConditionMet(cc) {
		return
	}
	c.ret()
}

// retInterrupt is RETI: the master enable is set right away, not through EI's
// delayed path.
func (c *CPU) retInterrupt() {
	c.ime = IMEEnabled
	c.ret()
}

// restart is RST n.
func (c *CPU) restart(address uint16) {
	c.delay(1)
	c.push(c.regs.PC)
	c.regs.PC = address
}

func (c *CPU) pushPair(r Reg16) {
	c.delay(1)
	c.push(c.regs.Get16(r))
}

func (c *CPU) popPair(r Reg16) {
	c.regs.Set16(r, c.pop())
}

func (c *CPU) halt() {
	c.halted = true
}

// stop does not enter the low-power mode, it only skips the padding byte
// that follows the opcode.
func (c *CPU) stop() {
	c.regs.PC++
}

func (c *CPU) disableInterrupts() { c.ime = IMEDisabled }
func (c *CPU) enableInterrupts()  { c.ime = IMEEnabling }

// lockUp is reached through the undefined opcodes. The hardware hangs until
// reset, and so does the core.
func (c *CPU) lockUp() {
	c.locked = true
	c.logger.Warn("CPU locked up on undefined opcode",
		"opcode", fmt.Sprintf("0x%02X", c.opcode),
		"pc", fmt.Sprintf("0x%04X", c.regs.PC-1))
}

// extended fetches the byte following the 0xCB prefix and dispatches it.
func (c *CPU) extended() {
	op := c.fetch()
	c.opcode = 0xCB00 | uint16(op)
	opcodesCB[op](c)
}

// shiftOp identifies the rotate/shift selected by bits 5-3 of an extended
// opcode.
type shiftOp uint8

const (
	shiftRLC shiftOp = iota
	shiftRRC
	shiftRL
	shiftRR
	shiftSLA
	shiftSRA
	shiftSwap
	shiftSRL
)

// shift applies op to r, computing Z from the result.
func (c *CPU) shift(op shiftOp, r Reg8) {
	value := c.get8(r)
	var result uint8
	var flags Flags

	switch op {
	case shiftRLC:
		result, flags = rotateLeft(value, false, c.regs.F)
	case shiftRRC:
		result, flags = rotateRight(value, false, c.regs.F)
	case shiftRL:
		result, flags = rotateLeft(value, true, c.regs.F)
	case shiftRR:
		result, flags = rotateRight(value, true, c.regs.F)
	case shiftSLA:
		result, flags = shiftLeftArithmetic(value)
	case shiftSRA:
		result, flags = shiftRightArithmetic(value)
	case shiftSwap:
		result, flags = swap(value)
	case shiftSRL:
		result, flags = shiftRightLogical(value)
	}

	c.set8(r, result)
	c.regs.F = flags
}

// testBit is BIT n, r. C is left untouched.
func (c *CPU) testBit(n uint8, r Reg8) {
	value := c.get8(r)
	c.regs.F.SetZ(!bit.IsSet(n, value))
	c.regs.F.SetN(false)
	c.regs.F.SetH(true)
}

// resetBit is RES n, r.
func (c *CPU) resetBit(n uint8, r Reg8) {
	c.set8(r, bit.Clear(n, c.get8(r)))
}

// setBit is SET n, r.
func (c *CPU) setBit(n uint8, r Reg8) {
	c.set8(r, bit.Set(n, c.get8(r)))
}
