package disasm

import (
	"fmt"

	"github.com/valerio/go-sm83/sm83/bit"
	"github.com/valerio/go-sm83/sm83/cpu"
)

// operand is the kind of immediate that follows an opcode.
type operand uint8

const (
	operandNone operand = iota
	// n, printed as $XX
	operandN
	// nn, printed as $XXXX
	operandNN
	// JR displacement, printed as the target address
	operandRelative
	// signed displacement added to SP
	operandSigned
	// LDH offset into the I/O page, printed as $FFXX
	operandHigh
)

// length is the size in bytes of an instruction with operand o.
func (o operand) length() int {
	switch o {
	case operandNone:
		return 1
	case operandNN:
		return 3
	}
	return 2
}

type entry struct {
	// mnemonic with a single %s where the operand goes
	mnemonic string
	operand  operand
}

var (
	entries   = buildEntries()
	entriesCB = buildEntriesCB()
)

func buildEntries() [256]entry {
	var table [256]entry
	for i := range table {
		table[i] = describe(uint8(i))
	}
	return table
}

func buildEntriesCB() [256]entry {
	shifts := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	var table [256]entry
	for i := range table {
		op := uint8(i)
		y := bit.Field(op, 5, 3)
		r := cpu.R(bit.Field(op, 2, 0))

		switch bit.Field(op, 7, 6) {
		case 0:
			table[i] = entry{mnemonic: fmt.Sprintf("%s %s", shifts[y], r)}
		case 1:
			table[i] = entry{mnemonic: fmt.Sprintf("BIT %d,%s", y, r)}
		case 2:
			table[i] = entry{mnemonic: fmt.Sprintf("RES %d,%s", y, r)}
		default:
			table[i] = entry{mnemonic: fmt.Sprintf("SET %d,%s", y, r)}
		}
	}
	return table
}

func plain(mnemonic string) entry { return entry{mnemonic: mnemonic} }

func with(o operand, format string, args ...any) entry {
	return entry{mnemonic: fmt.Sprintf(format, args...), operand: o}
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// describe mirrors the decoder of the core, field by field.
func describe(op uint8) entry {
	x := bit.Field(op, 7, 6)
	y := bit.Field(op, 5, 3)
	z := bit.Field(op, 2, 0)
	p, q := y>>1, y&1

	if cpu.Undefined(op) {
		return with(operandNone, "DB $%02X", op)
	}

	switch x {
	case 1:
		if op == 0x76 {
			return plain("HALT")
		}
		return with(operandNone, "LD %s,%s", cpu.R(y), cpu.R(z))
	case 2:
		return with(operandNone, "%s%s", aluNames[y], cpu.R(z))
	case 0:
		return describeBlock0(y, z, p, q)
	}
	return describeBlock3(y, z, p, q)
}

func describeBlock0(y, z, p, q uint8) entry {
	switch z {
	case 0:
		switch y {
		case 0:
			return plain("NOP")
		case 1:
			return with(operandNN, "LD (%%s),SP")
		case 2:
			return with(operandN, "STOP %%s")
		case 3:
			return with(operandRelative, "JR %%s")
		default:
			return with(operandRelative, "JR %s,%%s", cpu.CC(y-4))
		}
	case 1:
		if q == 0 {
			return with(operandNN, "LD %s,%%s", cpu.RP(p))
		}
		return with(operandNone, "ADD HL,%s", cpu.RP(p))
	case 2:
		target := [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}[p]
		if q == 0 {
			return with(operandNone, "LD %s,A", target)
		}
		return with(operandNone, "LD A,%s", target)
	case 3:
		if q == 0 {
			return with(operandNone, "INC %s", cpu.RP(p))
		}
		return with(operandNone, "DEC %s", cpu.RP(p))
	case 4:
		return with(operandNone, "INC %s", cpu.R(y))
	case 5:
		return with(operandNone, "DEC %s", cpu.R(y))
	case 6:
		return with(operandN, "LD %s,%%s", cpu.R(y))
	}
	return plain([8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}[y])
}

func describeBlock3(y, z, p, q uint8) entry {
	switch z {
	case 0:
		switch {
		case y < 4:
			return with(operandNone, "RET %s", cpu.CC(y))
		case y == 4:
			return with(operandHigh, "LDH (%%s),A")
		case y == 5:
			return with(operandSigned, "ADD SP,%%s")
		case y == 6:
			return with(operandHigh, "LDH A,(%%s)")
		default:
			return with(operandSigned, "LD HL,SP%%s")
		}
	case 1:
		if q == 0 {
			return with(operandNone, "POP %s", cpu.RP2(p))
		}
		return plain([4]string{"RET", "RETI", "JP HL", "LD SP,HL"}[p])
	case 2:
		switch {
		case y < 4:
			return with(operandNN, "JP %s,%%s", cpu.CC(y))
		case y == 4:
			return plain("LD (C),A")
		case y == 5:
			return with(operandNN, "LD (%%s),A")
		case y == 6:
			return plain("LD A,(C)")
		default:
			return with(operandNN, "LD A,(%%s)")
		}
	case 3:
		switch y {
		case 0:
			return with(operandNN, "JP %%s")
		case 1:
			return plain("PREFIX CB")
		case 6:
			return plain("DI")
		default:
			return plain("EI")
		}
	case 4:
		return with(operandNN, "CALL %s,%%s", cpu.CC(y))
	case 5:
		if q == 0 {
			return with(operandNone, "PUSH %s", cpu.RP2(p))
		}
		return with(operandNN, "CALL %%s")
	case 6:
		return with(operandN, "%s%%s", aluNames[y])
	}
	return with(operandNone, "RST $%02X", y*8)
}
