package multisig

import (
	"fmt"
	"sort"

	"github.com/Klingon-tech/movekeys/pkg/bcs"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
)

// Signature holds the signatures of the participating keys, ordered by
// bit index, and the bitmap naming those keys.
type Signature struct {
	sigs   []crypto.Signature
	bitmap Bitmap
}

// NewSignature pairs sigs[i] with key position indices[i]. Collection
// order does not matter: the result is always sorted by position.
func NewSignature(sigs []crypto.Signature, indices []uint8) (*Signature, error) {
	if len(sigs) != len(indices) {
		return nil, fmt.Errorf("%w: %d signatures, %d indices", ErrSignatureCountMismatch, len(sigs), len(indices))
	}

	type entry struct {
		idx uint8
		sig crypto.Signature
	}
	entries := make([]entry, len(sigs))
	var bitmap Bitmap
	for i, idx := range indices {
		if idx >= MaxKeys {
			return nil, fmt.Errorf("%w: index %d, max %d", ErrBitIndex, idx, MaxKeys-1)
		}
		if bitmap.Has(idx) {
			return nil, fmt.Errorf("%w: index %d repeated", ErrBitIndex, idx)
		}
		bitmap.Set(idx)
		entries[i] = entry{idx: idx, sig: sigs[i]}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].idx < entries[b].idx })

	out := &Signature{sigs: make([]crypto.Signature, len(entries)), bitmap: bitmap}
	for i, e := range entries {
		out.sigs[i] = e.sig
	}
	return out, nil
}

// ParseSignature decodes the output of Bytes.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) < BitmapSize || (len(b)-BitmapSize)%crypto.SignatureSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedSignature, len(b))
	}
	n := (len(b) - BitmapSize) / crypto.SignatureSize
	if n > MaxKeys {
		return nil, fmt.Errorf("%w: %d signatures", ErrMalformedSignature, n)
	}

	var bitmap Bitmap
	copy(bitmap[:], b[len(b)-BitmapSize:])
	if bitmap.Count() != n {
		return nil, fmt.Errorf("%w: bitmap has %d bits, %d signatures", ErrSignatureCountMismatch, bitmap.Count(), n)
	}

	sigs := make([]crypto.Signature, n)
	for i := range sigs {
		copy(sigs[i][:], b[i*crypto.SignatureSize:])
	}
	return &Signature{sigs: sigs, bitmap: bitmap}, nil
}

// Signatures returns a copy of the signatures in ascending bit order.
func (s *Signature) Signatures() []crypto.Signature {
	cp := make([]crypto.Signature, len(s.sigs))
	copy(cp, s.sigs)
	return cp
}

// Bitmap returns the participation bitmap.
func (s *Signature) Bitmap() Bitmap {
	return s.bitmap
}

// Indices returns the participating key positions in ascending order.
func (s *Signature) Indices() []uint8 {
	return s.bitmap.Indices()
}

// Bytes returns the signatures in ascending bit order followed by the
// four bitmap bytes.
func (s *Signature) Bytes() []byte {
	out := make([]byte, 0, len(s.sigs)*crypto.SignatureSize+BitmapSize)
	for _, sig := range s.sigs {
		out = append(out, sig[:]...)
	}
	return append(out, s.bitmap[:]...)
}

// MarshalBCS writes Bytes as a length-prefixed byte vector.
func (s *Signature) MarshalBCS(ser *bcs.Serializer) error {
	ser.WriteBytes(s.Bytes())
	return nil
}

// UnmarshalBCS reads a length-prefixed signature.
func (s *Signature) UnmarshalBCS(d *bcs.Deserializer) error {
	b := d.ReadBytes()
	if err := d.Err(); err != nil {
		return err
	}
	parsed, err := ParseSignature(b)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// EncodeSignature validates raw 64-byte signatures and their key
// positions and returns the encoded signature.
func EncodeSignature(sigs [][]byte, positions []uint8) ([]byte, error) {
	parsed := make([]crypto.Signature, len(sigs))
	for i, b := range sigs {
		sig, err := crypto.SignatureFromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		parsed[i] = sig
	}
	s, err := NewSignature(parsed, positions)
	if err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// Authenticator carries a threshold signature over a transaction. It is
// variant 1 of the transaction authenticator union.
type Authenticator struct {
	PublicKey *PublicKey
	Signature *Signature
}

// VariantIndex implements bcs.Variant.
func (Authenticator) VariantIndex() uint32 { return 1 }

// MarshalBCS writes the key set then the signature.
func (a Authenticator) MarshalBCS(s *bcs.Serializer) error {
	if a.PublicKey == nil || a.Signature == nil {
		return fmt.Errorf("%w: incomplete authenticator", bcs.ErrUnsupportedType)
	}
	s.Struct(a.PublicKey)
	s.Struct(a.Signature)
	return nil
}

// Verify checks the signature against msg.
func (a Authenticator) Verify(msg []byte) error {
	if a.PublicKey == nil {
		return fmt.Errorf("%w: missing key set", ErrMalformedPublicKey)
	}
	return a.PublicKey.Verify(msg, a.Signature)
}
