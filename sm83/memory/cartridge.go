package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash"

	"github.com/valerio/go-sm83/sm83/addr"
)

// ErrInvalidROM is returned for program images too short to hold a header.
var ErrInvalidROM = errors.New("invalid ROM image")

// Cartridge is a program image together with its parsed header.
type Cartridge struct {
	data           []byte
	title          string
	cartType       uint8
	romSize        uint8
	ramSize        uint8
	headerChecksum uint8
	fingerprint    uint64
}

// NewCartridgeWithData parses the header of data and keeps a copy of it.
func NewCartridgeWithData(data []byte) (*Cartridge, error) {
	if len(data) < int(addr.HeaderEnd) {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrInvalidROM, len(data), addr.HeaderEnd)
	}

	cart := &Cartridge{
		data:           make([]byte, len(data)),
		title:          cleanTitle(data[addr.Title : addr.Title+addr.TitleLength]),
		cartType:       data[addr.CartridgeType],
		romSize:        data[addr.ROMSize],
		ramSize:        data[addr.RAMSize],
		headerChecksum: data[addr.HeaderChecksum],
		fingerprint:    xxhash.Sum64(data),
	}
	copy(cart.data, data)

	return cart, nil
}

// Title returns the printable form of the header title.
func (c *Cartridge) Title() string { return c.title }

// Type returns the raw cartridge type byte (0x147).
func (c *Cartridge) Type() uint8 { return c.cartType }

// TypeName returns a readable name for the cartridge type byte.
func (c *Cartridge) TypeName() string { return typeName(c.cartType) }

// ROMSize returns the raw ROM size byte (0x148).
func (c *Cartridge) ROMSize() uint8 { return c.romSize }

// RAMSize returns the raw RAM size byte (0x149).
func (c *Cartridge) RAMSize() uint8 { return c.ramSize }

// Len returns the size of the program image in bytes.
func (c *Cartridge) Len() int { return len(c.data) }

// Fingerprint returns the xxHash64 of the whole image.
func (c *Cartridge) Fingerprint() uint64 { return c.fingerprint }

// HeaderChecksumValid reports whether the checksum at 0x14D matches the
// header bytes 0x134-0x14C, as the boot ROM verifies it.
func (c *Cartridge) HeaderChecksumValid() bool {
	var x uint8
	for _, b := range c.data[addr.Title:addr.HeaderChecksum] {
		x = x - b - 1
	}
	return x == c.headerChecksum
}

// cleanTitle turns the raw title bytes into something printable: NUL padding
// becomes spaces, non-printable bytes become '?'.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if !unicode.IsPrint(r) || r > unicode.MaxASCII {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
