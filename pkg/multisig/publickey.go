// Package multisig builds and encodes K-of-N Ed25519 threshold keys and
// signatures.
package multisig

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/bcs"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"github.com/Klingon-tech/movekeys/pkg/types"
)

// MaxKeys is the maximum number of participants, bounded by the bitmap width.
const MaxKeys = BitmapSize * 8

// Multi-signature errors.
var (
	ErrThresholdOutOfRange    = errors.New("threshold out of range")
	ErrTooManyKeys            = errors.New("too many keys")
	ErrBitIndex               = errors.New("duplicate or out-of-range bit index")
	ErrSignatureCountMismatch = errors.New("signature count mismatch")
	ErrMalformedPublicKey     = errors.New("malformed multi-signature public key")
	ErrMalformedSignature     = errors.New("malformed multi-signature signature")
	ErrBelowThreshold         = errors.New("not enough signatures for threshold")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrUnknownSigner          = errors.New("signer is not part of the key set")
)

// PublicKey is an ordered set of Ed25519 keys and a threshold. The
// position of a key fixes its bit in signature bitmaps.
type PublicKey struct {
	keys      []crypto.PublicKey
	threshold uint8
}

// NewPublicKey validates and copies keys. It fails when there are more
// than MaxKeys keys, or when threshold is zero, above MaxKeys, or above
// len(keys).
func NewPublicKey(keys []crypto.PublicKey, threshold uint8) (*PublicKey, error) {
	if len(keys) > MaxKeys {
		return nil, fmt.Errorf("%w: %d keys, max %d", ErrTooManyKeys, len(keys), MaxKeys)
	}
	if threshold == 0 || threshold > MaxKeys {
		return nil, fmt.Errorf("%w: threshold %d, must be in [1, %d]", ErrThresholdOutOfRange, threshold, MaxKeys)
	}
	if int(threshold) > len(keys) {
		return nil, fmt.Errorf("%w: threshold %d exceeds %d keys", ErrThresholdOutOfRange, threshold, len(keys))
	}
	cp := make([]crypto.PublicKey, len(keys))
	copy(cp, keys)
	return &PublicKey{keys: cp, threshold: threshold}, nil
}

// ParsePublicKey decodes the output of Bytes.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	if len(b) < crypto.PublicKeySize+1 || (len(b)-1)%crypto.PublicKeySize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedPublicKey, len(b))
	}
	n := (len(b) - 1) / crypto.PublicKeySize
	keys := make([]crypto.PublicKey, n)
	for i := range keys {
		copy(keys[i][:], b[i*crypto.PublicKeySize:])
	}
	return NewPublicKey(keys, b[len(b)-1])
}

// Keys returns a copy of the ordered key set.
func (pk *PublicKey) Keys() []crypto.PublicKey {
	cp := make([]crypto.PublicKey, len(pk.keys))
	copy(cp, pk.keys)
	return cp
}

// Threshold returns the number of signatures required.
func (pk *PublicKey) Threshold() uint8 {
	return pk.threshold
}

// Len returns the number of keys.
func (pk *PublicKey) Len() int {
	return len(pk.keys)
}

// IndexOf returns the bit position of key.
func (pk *PublicKey) IndexOf(key crypto.PublicKey) (uint8, bool) {
	for i, k := range pk.keys {
		if k == key {
			return uint8(i), true
		}
	}
	return 0, false
}

// Bytes returns every key in order followed by one threshold byte. There
// is no length prefix: the key count is (len-1)/32.
func (pk *PublicKey) Bytes() []byte {
	out := make([]byte, 0, len(pk.keys)*crypto.PublicKeySize+1)
	for _, k := range pk.keys {
		out = append(out, k[:]...)
	}
	return append(out, pk.threshold)
}

// AuthenticationKey is SHA3-256(Bytes() || 0x01). It is also the address
// of an account created with this key set.
func (pk *PublicKey) AuthenticationKey() types.Address {
	return crypto.AuthenticationKey(pk.Bytes(), crypto.SchemeMultiEd25519)
}

// MarshalBCS writes Bytes as a length-prefixed byte vector.
func (pk *PublicKey) MarshalBCS(s *bcs.Serializer) error {
	s.WriteBytes(pk.Bytes())
	return nil
}

// UnmarshalBCS reads a length-prefixed key set.
func (pk *PublicKey) UnmarshalBCS(d *bcs.Deserializer) error {
	b := d.ReadBytes()
	if err := d.Err(); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(b)
	if err != nil {
		return err
	}
	*pk = *parsed
	return nil
}

// Verify checks that sig carries at least Threshold valid signatures over
// msg from keys in this set.
func (pk *PublicKey) Verify(msg []byte, sig *Signature) error {
	if sig == nil {
		return fmt.Errorf("%w: nil signature", ErrMalformedSignature)
	}
	if sig.bitmap.Highest() >= len(pk.keys) {
		return fmt.Errorf("%w: bit %d set for %d keys", ErrBitIndex, sig.bitmap.Highest(), len(pk.keys))
	}
	if n := sig.bitmap.Count(); n != len(sig.sigs) {
		return fmt.Errorf("%w: bitmap has %d bits, %d signatures", ErrSignatureCountMismatch, n, len(sig.sigs))
	}
	if len(sig.sigs) < int(pk.threshold) {
		return fmt.Errorf("%w: have %d, need %d", ErrBelowThreshold, len(sig.sigs), pk.threshold)
	}
	for i, idx := range sig.bitmap.Indices() {
		if !pk.keys[idx].Verify(msg, sig.sigs[i]) {
			return fmt.Errorf("%w: key %d", ErrInvalidSignature, idx)
		}
	}
	return nil
}

// Aggregate builds a Signature from signatures keyed by signer. Every
// signer must belong to the key set.
func (pk *PublicKey) Aggregate(parts map[crypto.PublicKey]crypto.Signature) (*Signature, error) {
	sigs := make([]crypto.Signature, 0, len(parts))
	indices := make([]uint8, 0, len(parts))
	for signer, s := range parts {
		idx, ok := pk.IndexOf(signer)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, signer)
		}
		sigs = append(sigs, s)
		indices = append(indices, idx)
	}
	return NewSignature(sigs, indices)
}

// EncodePublicKey validates raw 32-byte keys and returns the encoded key set.
func EncodePublicKey(keys [][]byte, threshold uint8) ([]byte, error) {
	if len(keys) > MaxKeys {
		return nil, fmt.Errorf("%w: %d keys, max %d", ErrTooManyKeys, len(keys), MaxKeys)
	}
	parsed := make([]crypto.PublicKey, len(keys))
	for i, k := range keys {
		pk, err := crypto.PublicKeyFromBytes(k)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		parsed[i] = pk
	}
	pk, err := NewPublicKey(parsed, threshold)
	if err != nil {
		return nil, err
	}
	return pk.Bytes(), nil
}
