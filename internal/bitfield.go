// Package internal holds helpers shared by the simulator packages.
package internal

// BitField is an inclusive range of bits [From, To] within a 32-bit word.
type BitField struct {
	From uint // Least significant bit.
	To   uint // Most significant bit.
}

// Width returns the number of bits in the field.
func (bf BitField) Width() uint {
	return bf.To - bf.From + 1
}

// mask returns the field mask, unshifted.
func (bf BitField) mask() uint32 {
	return uint32((uint64(1) << bf.Width()) - 1)
}

// Extract returns the field value as an unsigned integer.
func (bf BitField) Extract(word uint32) uint32 {
	return (word >> bf.From) & bf.mask()
}

// ExtractSigned returns the field value sign extended from its top bit.
func (bf BitField) ExtractSigned(word uint32) int32 {
	shift := 32 - bf.Width()
	return int32(bf.Extract(word)<<shift) >> shift
}

// Insert returns word with the field replaced by the low bits of value.
// Bits of value that do not fit are dropped.
func (bf BitField) Insert(word uint32, value uint32) uint32 {
	mask := bf.mask()
	return (word &^ (mask << bf.From)) | ((value & mask) << bf.From)
}
