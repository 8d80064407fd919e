package multisig

import (
	"encoding/binary"
	"math/bits"
)

// BitmapSize is the length of the participation bitmap in bytes.
const BitmapSize = 4

// Bitmap records which keys signed. Bit i, counted from the most
// significant bit of the first byte, is set when key i signed.
type Bitmap [BitmapSize]byte

// Set marks index i. It reports false and leaves b unchanged when i is
// not below MaxKeys.
func (b *Bitmap) Set(i uint8) bool {
	if i >= MaxKeys {
		return false
	}
	b[i/8] |= 0x80 >> (i % 8)
	return true
}

// Has reports whether index i is marked.
func (b Bitmap) Has(i uint8) bool {
	if i >= MaxKeys {
		return false
	}
	return b[i/8]&(0x80>>(i%8)) != 0
}

// Count returns the number of marked indices.
func (b Bitmap) Count() int {
	return bits.OnesCount32(binary.BigEndian.Uint32(b[:]))
}

// Indices returns the marked indices in ascending order.
func (b Bitmap) Indices() []uint8 {
	out := make([]uint8, 0, b.Count())
	for i := uint8(0); i < MaxKeys; i++ {
		if b.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Highest returns the largest marked index, or -1 when none is set.
func (b Bitmap) Highest() int {
	v := binary.BigEndian.Uint32(b[:])
	if v == 0 {
		return -1
	}
	return MaxKeys - 1 - bits.TrailingZeros32(v)
}
