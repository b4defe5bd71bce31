package cpu

// Reg8 identifies an 8-bit operand selected by a 3-bit opcode field.
type Reg8 uint8

const (
	RegB Reg8 = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	// RegHLIndirect is the byte on the bus at the address held in HL.
	RegHLIndirect
	RegA
)

func (r Reg8) String() string {
	return [...]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}[r&7]
}

// Reg16 identifies a 16-bit operand selected by a 2-bit opcode field.
type Reg16 uint8

const (
	RegBC Reg16 = iota
	RegDE
	RegHL
	RegSP
	RegAF
)

func (r Reg16) String() string {
	return [...]string{"BC", "DE", "HL", "SP", "AF"}[r%5]
}

// Condition is a branch predicate over the Z and C flags.
type Condition uint8

const (
	CondNZ Condition = iota
	CondZ
	CondNC
	CondC
)

func (c Condition) String() string {
	return [...]string{"NZ", "Z", "NC", "C"}[c&3]
}

var (
	// tableR maps the r field (bits 2-0 or 5-3) to an 8-bit operand.
	tableR = [8]Reg8{RegB, RegC, RegD, RegE, RegH, RegL, RegHLIndirect, RegA}
	// tableRP maps the p field to a register pair for loads and arithmetic.
	tableRP = [4]Reg16{RegBC, RegDE, RegHL, RegSP}
	// tableRP2 maps the p field to a register pair for PUSH and POP.
	tableRP2 = [4]Reg16{RegBC, RegDE, RegHL, RegAF}
	// tableCC maps the cc field to a branch condition.
	tableCC = [4]Condition{CondNZ, CondZ, CondNC, CondC}
)

// R returns the 8-bit operand for a 3-bit opcode field.
func R(i uint8) Reg8 { return tableR[i&7] }

// RP returns the register pair for a 2-bit opcode field.
func RP(i uint8) Reg16 { return tableRP[i&3] }

// RP2 returns the stack register pair for a 2-bit opcode field.
func RP2(i uint8) Reg16 { return tableRP2[i&3] }

// CC returns the branch condition for a 2-bit opcode field.
func CC(i uint8) Condition { return tableCC[i&3] }
