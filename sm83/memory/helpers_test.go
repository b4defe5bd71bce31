package memory

import "github.com/valerio/go-sm83/sm83/addr"

// newROM returns a 32KB image with the given title and type byte and a valid
// header checksum.
func newROM(title string, cartType uint8) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[addr.Title:addr.Title+addr.TitleLength], title)
	rom[addr.CartridgeType] = cartType

	var x uint8
	for _, b := range rom[addr.Title:addr.HeaderChecksum] {
		x = x - b - 1
	}
	rom[addr.HeaderChecksum] = x
	return rom
}
