package wallet

import (
	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"github.com/Klingon-tech/movekeys/pkg/types"
)

// Account owns one Ed25519 key pair. Its address is fixed when the
// account is created and does not follow later key rotations.
type Account struct {
	index   uint32
	key     *crypto.PrivateKey
	address types.Address
}

func newAccount(key *crypto.PrivateKey, index uint32) *Account {
	return &Account{
		index:   index,
		key:     key,
		address: crypto.SingleKeyAddress(key.PublicKey()),
	}
}

// AccountFromPrivateKey wraps an externally supplied key. The account
// takes ownership of key.
func AccountFromPrivateKey(key *crypto.PrivateKey) *Account {
	return newAccount(key, 0)
}

// AccountFromSeed builds an account from a raw 32-byte Ed25519 seed.
func AccountFromSeed(seed []byte) (*Account, error) {
	key, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return newAccount(key, 0), nil
}

// Index returns the derivation index (0 for direct or imported keys).
func (a *Account) Index() uint32 {
	return a.index
}

// Address returns the primary address computed at creation.
func (a *Account) Address() types.Address {
	return a.address
}

// PublicKey returns the current public key.
func (a *Account) PublicKey() crypto.PublicKey {
	return a.key.PublicKey()
}

// AuthenticationKey returns the single-key authentication key for the
// current public key. It equals Address() until the key is rotated.
func (a *Account) AuthenticationKey() types.Address {
	return crypto.SingleKeyAddress(a.key.PublicKey())
}

// RotateKey replaces the signing key and zeroes the old one. The address
// is unchanged; AuthenticationKey follows the new key.
func (a *Account) RotateKey(key *crypto.PrivateKey) {
	a.key.Zero()
	a.key = key
}

// Sign signs msg with the account key.
func (a *Account) Sign(msg []byte) (crypto.Signature, error) {
	return a.key.Sign(msg)
}

// Authenticator signs msg and wraps the result for a single-key transaction.
func (a *Account) Authenticator(msg []byte) (crypto.Ed25519Authenticator, error) {
	sig, err := a.key.Sign(msg)
	if err != nil {
		return crypto.Ed25519Authenticator{}, err
	}
	return crypto.Ed25519Authenticator{PublicKey: a.key.PublicKey(), Signature: sig}, nil
}

// PrivateKeySeed exports a copy of the 32-byte private key seed.
func (a *Account) PrivateKeySeed() ([]byte, error) {
	return a.key.Seed()
}

// Zero wipes the private key. Address and public key stay readable.
func (a *Account) Zero() {
	a.key.Zero()
}
