// Package disasm turns the bytes at an address into SM83 assembly.
package disasm

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
)

// Reader is the part of the bus the disassembler needs. Reads must not have
// side effects.
type Reader interface {
	Read(address uint16) byte
}

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Instruction string
	Length      int
}

// Length returns the size in bytes of the unprefixed opcode op, operands
// included. The 0xCB prefix counts as a two byte instruction.
func Length(op uint8) int {
	if op == 0xCB {
		return 2
	}
	return entries[op].operand.length()
}

// At disassembles the instruction at pc.
func At(pc uint16, mem Reader) Line {
	op := mem.Read(pc)
	if op == 0xCB {
		return Line{
			Address:     pc,
			Instruction: entriesCB[mem.Read(pc+1)].mnemonic,
			Length:      2,
		}
	}

	e := entries[op]
	line := Line{Address: pc, Length: e.operand.length()}

	var arg string
	switch e.operand {
	case operandNone:
		line.Instruction = e.mnemonic
		return line
	case operandN:
		arg = fmt.Sprintf("$%02X", mem.Read(pc+1))
	case operandNN:
		arg = fmt.Sprintf("$%04X", bit.Combine(mem.Read(pc+2), mem.Read(pc+1)))
	case operandRelative:
		target := pc + 2 + bit.SignExtend(mem.Read(pc+1))
		arg = fmt.Sprintf("$%04X", target)
	case operandSigned:
		arg = fmt.Sprintf("%+d", int8(mem.Read(pc+1)))
	case operandHigh:
		arg = fmt.Sprintf("$FF%02X", mem.Read(pc+1))
	}
	line.Instruction = fmt.Sprintf(e.mnemonic, arg)
	return line
}

// Range disassembles count consecutive instructions starting at start.
func Range(start uint16, count int, mem Reader) []Line {
	lines := make([]Line, 0, count)
	pc := start
	for i := 0; i < count; i++ {
		line := At(pc, mem)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}

// Format renders a line for display, marking the one at the program counter.
func Format(line Line, current bool) string {
	prefix := " "
	if current {
		prefix = ">"
	}
	return fmt.Sprintf("%s0x%04X: %s", prefix, line.Address, line.Instruction)
}
