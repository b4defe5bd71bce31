// Package addr names the fixed locations of the address space seen by the
// core: memory regions, I/O registers and the cartridge header.
package addr

// memory regions
const (
	// ROMEnd is the last address mapped to cartridge ROM.
	ROMEnd uint16 = 0x7FFF
	// VRAMStart is the start of video RAM.
	VRAMStart uint16 = 0x8000
	// VRAMEnd is the end of video RAM.
	VRAMEnd uint16 = 0x9FFF
	// ExternalRAMStart is the start of cartridge RAM.
	ExternalRAMStart uint16 = 0xA000
	// ExternalRAMEnd is the end of cartridge RAM.
	ExternalRAMEnd uint16 = 0xBFFF
	// WRAMStart is the start of work RAM.
	WRAMStart uint16 = 0xC000
	// WRAMEnd is the end of work RAM.
	WRAMEnd uint16 = 0xDFFF
	// EchoStart is the start of the mirror of work RAM.
	EchoStart uint16 = 0xE000
	// EchoEnd is the end of the mirror of work RAM.
	EchoEnd uint16 = 0xFDFF
	// OAMStart is the start of sprite attribute memory.
	OAMStart uint16 = 0xFE00
	// OAMEnd is the end of sprite attribute memory.
	OAMEnd uint16 = 0xFE9F
	// IOStart is the start of the I/O register page.
	IOStart uint16 = 0xFF00
	// IOEnd is the end of the I/O register page.
	IOEnd uint16 = 0xFF7F
	// HRAMStart is the start of high RAM.
	HRAMStart uint16 = 0xFF80
	// HRAMEnd is the end of high RAM.
	HRAMEnd uint16 = 0xFFFE
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// serial I/O
const (
	// SB holds the byte being shifted out (and, once done, the byte shifted in).
	SB uint16 = 0xFF01
	// SC is the serial control register. Bit 7 starts a transfer and is cleared
	// by hardware on completion, bit 0 selects the internal clock.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. Loaded into TIMA on overflow.
	TMA uint16 = 0xFF06
	// TAC is the timer control register.
	TAC uint16 = 0xFF07
)

// cartridge header
const (
	EntryPoint     uint16 = 0x0100
	Title          uint16 = 0x0134
	TitleLength           = 11
	CartridgeType  uint16 = 0x0147
	ROMSize        uint16 = 0x0148
	RAMSize        uint16 = 0x0149
	HeaderChecksum uint16 = 0x014D
	HeaderEnd      uint16 = 0x0150
)

// P1 is the joypad register: bits 5-4 select the button group, bits 3-0 read
// the selected buttons (0 = pressed).
const P1 uint16 = 0xFF00
