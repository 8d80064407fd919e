package wallet

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
)

// Master seed bounds accepted by NewMasterKey (128 to 512 bits).
const (
	MinMasterSeedSize = 16
	MaxMasterSeedSize = 64
)

// masterSecret is the HMAC key for the Ed25519 master key.
var masterSecret = []byte("ed25519 seed")

// HDKey is a SLIP-0010 Ed25519 extended private key. Ed25519 has no
// public parent to public child derivation, so there is no neutered form.
type HDKey struct {
	key       [32]byte
	chainCode [32]byte
	depth     uint8
	index     uint32
}

// NewMasterKey creates the master key for seed:
// I = HMAC-SHA512(Key = "ed25519 seed", Data = seed), key = IL, chain code = IR.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) < MinMasterSeedSize || len(seed) > MaxMasterSeedSize {
		return nil, fmt.Errorf("%w: master seed must be %d-%d bytes, got %d",
			ErrInvalidSeedLength, MinMasterSeedSize, MaxMasterSeedSize, len(seed))
	}
	mac := hmac.New(sha512.New, masterSecret)
	mac.Write(seed)
	return splitKey(mac.Sum(nil), 0, 0), nil
}

// splitKey builds a key from a 64-byte HMAC output and wipes the output.
func splitKey(sum []byte, depth uint8, index uint32) *HDKey {
	k := &HDKey{depth: depth, index: index}
	copy(k.key[:], sum[:32])
	copy(k.chainCode[:], sum[32:])
	crypto.Wipe(sum)
	return k
}

// DeriveChild derives the hardened child at index, which must already
// include the bip32.FirstHardenedChild offset.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	if index < bip32.FirstHardenedChild {
		return nil, fmt.Errorf("%w: index %d", ErrNonHardenedDerivation, index)
	}
	if k.depth == 255 {
		return nil, fmt.Errorf("%w: maximum depth reached", ErrUnsupportedDerivation)
	}

	var data [1 + 32 + 4]byte
	copy(data[1:33], k.key[:])
	binary.BigEndian.PutUint32(data[33:], index)

	mac := hmac.New(sha512.New, k.chainCode[:])
	mac.Write(data[:])
	crypto.Wipe(data[:])

	return splitKey(mac.Sum(nil), k.depth+1, index), nil
}

// DerivePath derives along indices in order. Intermediate keys are zeroed.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if current != k {
			current.Zero()
		}
		if err != nil {
			return nil, err
		}
		current = child
	}
	if current == k {
		cp := *k
		return &cp, nil
	}
	return current, nil
}

// PrivateKeyBytes returns a copy of the 32-byte Ed25519 seed of this node.
func (k *HDKey) PrivateKeyBytes() []byte {
	out := make([]byte, 32)
	copy(out, k.key[:])
	return out
}

// ChainCode returns a copy of the chain code.
func (k *HDKey) ChainCode() []byte {
	out := make([]byte, 32)
	copy(out, k.chainCode[:])
	return out
}

// Signer returns the Ed25519 private key for this node. The caller owns
// the result and should Zero it when done.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	return crypto.PrivateKeyFromSeed(k.key[:])
}

// PublicKey returns the Ed25519 public key for this node.
func (k *HDKey) PublicKey() (crypto.PublicKey, error) {
	priv, err := k.Signer()
	if err != nil {
		return crypto.PublicKey{}, err
	}
	defer priv.Zero()
	return priv.PublicKey(), nil
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.depth
}

// Index returns the child index this key was derived at (0 for master).
func (k *HDKey) Index() uint32 {
	return k.index
}

// Zero wipes the key and chain code.
func (k *HDKey) Zero() {
	crypto.Wipe(k.key[:])
	crypto.Wipe(k.chainCode[:])
}
