// Package bit holds the byte and word helpers shared by the core and the
// memory map.
package bit

// Combine joins two bytes into a word, high byte first.
func Combine(high, low uint8) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Low returns the least significant byte of a word.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the most significant byte of a word.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// IsSet reports whether the bit at index is 1.
func IsSet(index, value uint8) bool {
	return (value>>index)&1 == 1
}

// IsSet16 is IsSet for words.
func IsSet16(index uint8, value uint16) bool {
	return (value>>index)&1 == 1
}

// Set returns value with the bit at index set to 1.
func Set(index, value uint8) uint8 {
	return value | 1<<index
}

// Clear returns value with the bit at index set to 0.
func Clear(index, value uint8) uint8 {
	return value &^ (1 << index)
}

// Value returns 1 if the bit at index is set, 0 otherwise.
func Value(index, value uint8) uint8 {
	return (value >> index) & 1
}

// Field extracts bits highBit..lowBit (inclusive), shifted down to bit 0.
// Field(0b11010110, 5, 3) == 0b010.
func Field(value, highBit, lowBit uint8) uint8 {
	width := highBit - lowBit + 1
	mask := uint8(1<<width - 1)
	return (value >> lowBit) & mask
}

// SignExtend widens a two's complement byte to a word, so that adding the
// result to an address applies a -128..127 displacement.
func SignExtend(value uint8) uint16 {
	return uint16(int16(int8(value)))
}
