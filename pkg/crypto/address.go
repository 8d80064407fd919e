package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/bcs"
	"github.com/Klingon-tech/movekeys/pkg/types"
)

// Scheme is the trailing domain-separation byte of an address pre-image.
type Scheme byte

// Address derivation schemes.
const (
	SchemeEd25519         Scheme = 0x00
	SchemeMultiEd25519    Scheme = 0x01
	SchemeGuidObject      Scheme = 0xFD
	SchemeNamedObject     Scheme = 0xFE
	SchemeResourceAccount Scheme = 0xFF
)

// AuthenticationKey hashes key material with its scheme byte:
// SHA3-256(material || scheme).
func AuthenticationKey(material []byte, scheme Scheme) types.Address {
	return Hash(material, []byte{byte(scheme)}).Address()
}

// SingleKeyAddress is the primary address of an account created from a
// single Ed25519 key: SHA3-256(pub || 0x00).
//
// The address is fixed at account creation. If the account later rotates
// its key the address stays the same while the authentication key
// changes, so callers must not assume the two remain paired.
func SingleKeyAddress(pub PublicKey) types.Address {
	return AuthenticationKey(pub[:], SchemeEd25519)
}

// PrimaryAddress is SingleKeyAddress for raw public key bytes.
func PrimaryAddress(pub []byte) (types.Address, error) {
	pk, err := PublicKeyFromBytes(pub)
	if err != nil {
		return types.Address{}, err
	}
	return SingleKeyAddress(pk), nil
}

func namedObjectPreimage(creator types.Address, name string) []byte {
	nameHash := Hash([]byte(name))
	buf := make([]byte, 0, types.AddressSize+types.HashSize+1)
	buf = append(buf, creator[:]...)
	buf = append(buf, nameHash[:]...)
	return append(buf, byte(SchemeNamedObject))
}

// NamedObjectAddress derives the address of an object created under a
// human-readable name:
// SHA3-256(creator || SHA3-256(name) || 0xFE).
func NamedObjectAddress(creator types.Address, name string) types.Address {
	return Hash(namedObjectPreimage(creator, name)).Address()
}

// NamedObjectAddressBytes is NamedObjectAddress for a raw creator address.
func NamedObjectAddressBytes(creator []byte, name string) (types.Address, error) {
	c, err := types.AddressFromBytes(creator)
	if err != nil {
		return types.Address{}, fmt.Errorf("creator: %w", err)
	}
	return NamedObjectAddress(c, name), nil
}

// The creation number is big-endian here even though the canonical
// encoding is little-endian everywhere else.
func guidObjectPreimage(creator types.Address, creationNum uint64) []byte {
	buf := make([]byte, 0, 8+types.AddressSize+1)
	buf = binary.BigEndian.AppendUint64(buf, creationNum)
	buf = append(buf, creator[:]...)
	return append(buf, byte(SchemeGuidObject))
}

// GuidObjectAddress derives the address of the object identified by the
// creator's creation number:
// SHA3-256(BE64(creationNum) || creator || 0xFD).
func GuidObjectAddress(creator types.Address, creationNum uint64) types.Address {
	return Hash(guidObjectPreimage(creator, creationNum)).Address()
}

// GuidObjectAddressBytes is GuidObjectAddress for a raw creator address.
func GuidObjectAddressBytes(creator []byte, creationNum uint64) (types.Address, error) {
	c, err := types.AddressFromBytes(creator)
	if err != nil {
		return types.Address{}, fmt.Errorf("creator: %w", err)
	}
	return GuidObjectAddress(c, creationNum), nil
}

// ResourceAccountAddress derives a resource account owned by creator:
// SHA3-256(creator || seed || 0xFF).
func ResourceAccountAddress(creator types.Address, seed []byte) types.Address {
	return Hash(creator[:], seed, []byte{byte(SchemeResourceAccount)}).Address()
}

// Ed25519Authenticator carries a single-key signature over a transaction.
// It is variant 0 of the transaction authenticator union.
type Ed25519Authenticator struct {
	PublicKey PublicKey
	Signature Signature
}

// VariantIndex implements bcs.Variant.
func (Ed25519Authenticator) VariantIndex() uint32 { return 0 }

// MarshalBCS writes the key then the signature.
func (a Ed25519Authenticator) MarshalBCS(s *bcs.Serializer) error {
	s.Struct(a.PublicKey)
	s.Struct(a.Signature)
	return nil
}

// Verify checks the signature against msg.
func (a Ed25519Authenticator) Verify(msg []byte) bool {
	return a.PublicKey.Verify(msg, a.Signature)
}
