// Package bcs implements the canonical binary encoding used for everything
// that gets hashed or signed: little-endian fixed-width integers, ULEB128
// length prefixes, and structs as the plain concatenation of their fields.
package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/multiformats/go-varint"
)

// MaxSequenceLength is the largest element count a sequence may declare.
const MaxSequenceLength = math.MaxInt32

// Encoding errors.
var (
	ErrIntegerOverflow     = errors.New("integer does not fit declared width")
	ErrSequenceTooLong     = errors.New("sequence too long")
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrUnexpectedEOF       = errors.New("unexpected end of input")
	ErrNonCanonicalUleb128 = errors.New("non-canonical uleb128")
	ErrInvalidBool         = errors.New("invalid bool byte")
	ErrTrailingBytes       = errors.New("trailing bytes after value")
)

// Marshaler is implemented by types that write their own canonical form.
type Marshaler interface {
	MarshalBCS(s *Serializer) error
}

// Variant is implemented by the members of a tagged union. The index is
// written as a ULEB128 before the variant's own encoding.
type Variant interface {
	VariantIndex() uint32
}

// Serializer accumulates canonical bytes. The first error sticks; later
// writes are ignored and Err reports it.
type Serializer struct {
	buf []byte
	err error
}

// NewSerializer returns an empty serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Bytes returns the encoded output.
func (s *Serializer) Bytes() []byte {
	return s.buf
}

// Err returns the first error recorded.
func (s *Serializer) Err() error {
	return s.err
}

// SetError records err unless an earlier error is already recorded.
func (s *Serializer) SetError(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Bool writes 0x01 or 0x00.
func (s *Serializer) Bool(v bool) {
	if v {
		s.U8(1)
	} else {
		s.U8(0)
	}
}

// U8 writes a single byte.
func (s *Serializer) U8(v uint8) {
	if s.err != nil {
		return
	}
	s.buf = append(s.buf, v)
}

// U16 writes v little-endian.
func (s *Serializer) U16(v uint16) {
	if s.err != nil {
		return
	}
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
}

// U32 writes v little-endian.
func (s *Serializer) U32(v uint32) {
	if s.err != nil {
		return
	}
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
}

// U64 writes v little-endian.
func (s *Serializer) U64(v uint64) {
	if s.err != nil {
		return
	}
	s.buf = binary.LittleEndian.AppendUint64(s.buf, v)
}

// U128 writes the low 16 bytes of v little-endian. Values wider than
// 128 bits are rejected with ErrIntegerOverflow.
func (s *Serializer) U128(v *uint256.Int) {
	s.wideUint(v, 16)
}

// U256 writes v as 32 bytes little-endian.
func (s *Serializer) U256(v *uint256.Int) {
	s.wideUint(v, 32)
}

func (s *Serializer) wideUint(v *uint256.Int, width int) {
	if s.err != nil {
		return
	}
	if v == nil {
		v = new(uint256.Int)
	}
	if v.BitLen() > width*8 {
		s.SetError(fmt.Errorf("%w: %d-bit value in u%d", ErrIntegerOverflow, v.BitLen(), width*8))
		return
	}
	be := v.Bytes32()
	for i := 0; i < width; i++ {
		s.buf = append(s.buf, be[31-i])
	}
}

// Uleb128 writes v as an unsigned LEB128 varint.
func (s *Serializer) Uleb128(v uint32) {
	if s.err != nil {
		return
	}
	s.buf = append(s.buf, varint.ToUvarint(uint64(v))...)
}

// SequenceLen writes the length prefix of a sequence with n elements.
func (s *Serializer) SequenceLen(n int) {
	if n < 0 || n > MaxSequenceLength {
		s.SetError(fmt.Errorf("%w: %d elements", ErrSequenceTooLong, n))
		return
	}
	s.Uleb128(uint32(n))
}

// WriteBytes writes a length-prefixed byte string.
func (s *Serializer) WriteBytes(b []byte) {
	s.SequenceLen(len(b))
	s.FixedBytes(b)
}

// FixedBytes writes b verbatim, without a length prefix.
func (s *Serializer) FixedBytes(b []byte) {
	if s.err != nil {
		return
	}
	s.buf = append(s.buf, b...)
}

// Str writes a length-prefixed UTF-8 string.
func (s *Serializer) Str(v string) {
	s.WriteBytes([]byte(v))
}

// Struct lets a Marshaler write itself into this serializer.
func (s *Serializer) Struct(m Marshaler) {
	if s.err != nil {
		return
	}
	if err := m.MarshalBCS(s); err != nil {
		s.SetError(err)
	}
}

// Option writes the Option<T> tag and, when present, the value via fn.
func (s *Serializer) Option(present bool, fn func(s *Serializer)) {
	s.Bool(present)
	if present {
		fn(s)
	}
}

// Sequence writes a length-prefixed sequence, calling fn for each item.
func Sequence[T any](s *Serializer, items []T, fn func(s *Serializer, item T)) {
	s.SequenceLen(len(items))
	for _, it := range items {
		if s.err != nil {
			return
		}
		fn(s, it)
	}
}
