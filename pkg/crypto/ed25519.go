package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/bcs"
)

// Ed25519 sizes.
const (
	PublicKeySize  = ed25519.PublicKeySize
	PrivateKeySize = ed25519.PrivateKeySize
	SeedSize       = ed25519.SeedSize
	SignatureSize  = ed25519.SignatureSize
)

// Key errors.
var (
	ErrInvalidKeyLength       = errors.New("invalid key length")
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrKeyZeroed              = errors.New("private key has been zeroed")
)

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey [PublicKeySize]byte

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKeyLength, PublicKeySize, len(b))
	}
	var pk PublicKey
	copy(pk[:], b)
	return pk, nil
}

// Bytes returns a copy of the key.
func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk[:])
	return b
}

// String returns the 0x-prefixed hex key.
func (pk PublicKey) String() string {
	return "0x" + hex.EncodeToString(pk[:])
}

// Verify reports whether sig is a valid signature of msg by pk.
func (pk PublicKey) Verify(msg []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(pk[:]), msg, sig[:])
}

// MarshalBCS writes the key as a length-prefixed byte vector.
func (pk PublicKey) MarshalBCS(s *bcs.Serializer) error {
	s.WriteBytes(pk[:])
	return nil
}

// UnmarshalBCS reads a length-prefixed 32-byte key.
func (pk *PublicKey) UnmarshalBCS(d *bcs.Deserializer) error {
	b := d.ReadBytes()
	if err := d.Err(); err != nil {
		return err
	}
	parsed, err := PublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

// SignatureFromBytes copies b into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureSize {
		return Signature{}, fmt.Errorf("%w: signature must be %d bytes, got %d", ErrInvalidSignatureLength, SignatureSize, len(b))
	}
	var sig Signature
	copy(sig[:], b)
	return sig, nil
}

// Bytes returns a copy of the signature.
func (sig Signature) Bytes() []byte {
	b := make([]byte, SignatureSize)
	copy(b, sig[:])
	return b
}

// String returns the 0x-prefixed hex signature.
func (sig Signature) String() string {
	return "0x" + hex.EncodeToString(sig[:])
}

// MarshalBCS writes the signature as a length-prefixed byte vector.
func (sig Signature) MarshalBCS(s *bcs.Serializer) error {
	s.WriteBytes(sig[:])
	return nil
}

// UnmarshalBCS reads a length-prefixed 64-byte signature.
func (sig *Signature) UnmarshalBCS(d *bcs.Deserializer) error {
	b := d.ReadBytes()
	if err := d.Err(); err != nil {
		return err
	}
	parsed, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}

// PrivateKey owns Ed25519 secret material. It is never serialized by
// this package except through the explicit Seed export; call Zero when
// done with it.
type PrivateKey struct {
	key    ed25519.PrivateKey
	pub    PublicKey
	zeroed bool
}

// GenerateKey creates a new random private key.
func GenerateKey() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return newPrivateKey(priv), nil
}

// PrivateKeyFromSeed builds a key from a 32-byte Ed25519 seed. The
// caller keeps ownership of seed and should wipe it separately.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidKeyLength, SeedSize, len(seed))
	}
	return newPrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

func newPrivateKey(priv ed25519.PrivateKey) *PrivateKey {
	pk := &PrivateKey{key: priv}
	copy(pk.pub[:], priv[SeedSize:])
	return pk
}

// PublicKey returns the matching public key. It stays available after Zero.
func (pk *PrivateKey) PublicKey() PublicKey {
	return pk.pub
}

// Sign signs msg.
func (pk *PrivateKey) Sign(msg []byte) (Signature, error) {
	if pk.zeroed {
		return Signature{}, ErrKeyZeroed
	}
	var sig Signature
	copy(sig[:], ed25519.Sign(pk.key, msg))
	return sig, nil
}

// Seed returns a copy of the 32-byte seed. The caller owns the copy and
// must wipe it.
func (pk *PrivateKey) Seed() ([]byte, error) {
	if pk.zeroed {
		return nil, ErrKeyZeroed
	}
	out := make([]byte, SeedSize)
	copy(out, pk.key[:SeedSize])
	return out, nil
}

// Zero overwrites the secret material. Further Sign and Seed calls fail.
func (pk *PrivateKey) Zero() {
	Wipe(pk.key)
	pk.zeroed = true
}

// IsZeroed reports whether Zero has been called.
func (pk *PrivateKey) IsZeroed() bool {
	return pk.zeroed
}

// Verify reports whether sig is a valid signature of msg by pub.
func Verify(pub PublicKey, msg []byte, sig Signature) bool {
	return pub.Verify(msg, sig)
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
