package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/multiformats/go-varint"
)

// Unmarshaler is implemented by types that read their own canonical form.
type Unmarshaler interface {
	UnmarshalBCS(d *Deserializer) error
}

// Deserializer reads canonical bytes. Like Serializer, the first error
// sticks and subsequent reads return zero values.
type Deserializer struct {
	buf []byte
	pos int
	err error
}

// NewDeserializer reads from b. The slice is not copied.
func NewDeserializer(b []byte) *Deserializer {
	return &Deserializer{buf: b}
}

// Err returns the first error recorded.
func (d *Deserializer) Err() error {
	return d.err
}

// SetError records err unless an earlier error is already recorded.
func (d *Deserializer) SetError(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Remaining returns the number of unread bytes.
func (d *Deserializer) Remaining() int {
	return len(d.buf) - d.pos
}

// Finish reports ErrTrailingBytes when input is left over.
func (d *Deserializer) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.Remaining() != 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingBytes, d.Remaining())
	}
	return nil
}

func (d *Deserializer) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || d.Remaining() < n {
		d.SetError(fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, d.Remaining()))
		return nil
	}
	out := d.buf[d.pos : d.pos+n]
	d.pos += n
	return out
}

// Bool reads a 0x00 or 0x01 byte.
func (d *Deserializer) Bool() bool {
	switch b := d.U8(); b {
	case 0:
		return false
	case 1:
		return true
	default:
		d.SetError(fmt.Errorf("%w: 0x%02x", ErrInvalidBool, b))
		return false
	}
}

// U8 reads a single byte.
func (d *Deserializer) U8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// U16 reads a little-endian uint16.
func (d *Deserializer) U16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32 reads a little-endian uint32.
func (d *Deserializer) U32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64 reads a little-endian uint64.
func (d *Deserializer) U64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// U128 reads a 16-byte little-endian integer.
func (d *Deserializer) U128() *uint256.Int {
	return d.wideUint(16)
}

// U256 reads a 32-byte little-endian integer.
func (d *Deserializer) U256() *uint256.Int {
	return d.wideUint(32)
}

func (d *Deserializer) wideUint(width int) *uint256.Int {
	b := d.take(width)
	if b == nil {
		return new(uint256.Int)
	}
	be := make([]byte, width)
	for i := range b {
		be[width-1-i] = b[i]
	}
	return new(uint256.Int).SetBytes(be)
}

// Uleb128 reads an unsigned LEB128 value that must fit in 32 bits and
// use the minimal number of bytes.
func (d *Deserializer) Uleb128() uint32 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.FromUvarint(d.buf[d.pos:])
	switch {
	case errors.Is(err, varint.ErrNotMinimal):
		d.SetError(ErrNonCanonicalUleb128)
		return 0
	case errors.Is(err, varint.ErrUnderflow):
		d.SetError(fmt.Errorf("%w: truncated uleb128", ErrUnexpectedEOF))
		return 0
	case err != nil:
		d.SetError(fmt.Errorf("%w: %v", ErrIntegerOverflow, err))
		return 0
	}
	if v > math.MaxUint32 {
		d.SetError(fmt.Errorf("%w: uleb128 value %d exceeds u32", ErrIntegerOverflow, v))
		return 0
	}
	d.pos += n
	return uint32(v)
}

// SequenceLen reads a sequence length prefix.
func (d *Deserializer) SequenceLen() int {
	n := d.Uleb128()
	if n > MaxSequenceLength {
		d.SetError(fmt.Errorf("%w: %d elements", ErrSequenceTooLong, n))
		return 0
	}
	return int(n)
}

// ReadBytes reads a length-prefixed byte string. The result is a copy.
func (d *Deserializer) ReadBytes() []byte {
	n := d.SequenceLen()
	return d.FixedBytes(n)
}

// FixedBytes reads exactly n bytes. The result is a copy.
func (d *Deserializer) FixedBytes(n int) []byte {
	b := d.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// Str reads a length-prefixed string.
func (d *Deserializer) Str() string {
	return string(d.ReadBytes())
}

// Struct lets an Unmarshaler read itself from this deserializer.
func (d *Deserializer) Struct(u Unmarshaler) {
	if d.err != nil {
		return
	}
	if err := u.UnmarshalBCS(d); err != nil {
		d.SetError(err)
	}
}
