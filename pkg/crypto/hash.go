// Package crypto provides the hashing, Ed25519 and address derivation
// primitives used by wallets and multi-signature accounts.
package crypto

import (
	"encoding/binary"

	"github.com/Klingon-tech/movekeys/pkg/types"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Hash computes SHA3-256 over the concatenation of parts.
func Hash(parts ...[]byte) types.Hash {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// Fingerprint returns a short identifier for data: the first four bytes
// of its BLAKE3-256 digest, big-endian. Used to tell wallets apart
// without revealing key material; not a security boundary.
func Fingerprint(data []byte) uint32 {
	sum := blake3.Sum256(data)
	return binary.BigEndian.Uint32(sum[:4])
}
