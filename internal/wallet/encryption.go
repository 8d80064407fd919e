package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed seed layout:
// salt(32) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext+tag
const (
	SaltSize   = 32
	headerSize = SaltSize + 4 + 4 + 1
	sealedMin  = headerSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
)

// Encryption errors.
var (
	ErrDecrypt        = errors.New("wrong password or corrupted wallet")
	ErrSealedTooShort = errors.New("encrypted seed too short")
	ErrWeakParams     = errors.New("argon2 parameters out of range")
)

// Argon2 cost ceilings. Parameters read from a wallet file above these
// are rejected before any key derivation runs.
const (
	MaxMemory     = 4 * 1024 * 1024 // KiB (4 GiB)
	MaxIterations = 64
)

// EncryptionParams holds Argon2id parameters.
type EncryptionParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the parameters used for new wallets.
func DefaultParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
	}
}

// Validate rejects parameters argon2 cannot run with, and costs above
// MaxMemory or MaxIterations.
func (p EncryptionParams) Validate() error {
	if p.Iterations == 0 || p.Parallelism == 0 {
		return fmt.Errorf("%w: iterations and parallelism must be non-zero", ErrWeakParams)
	}
	if p.Memory < 8*uint32(p.Parallelism) {
		return fmt.Errorf("%w: memory %d KiB below 8 KiB per lane", ErrWeakParams, p.Memory)
	}
	if p.Memory > MaxMemory {
		return fmt.Errorf("%w: memory %d KiB above %d KiB", ErrWeakParams, p.Memory, MaxMemory)
	}
	if p.Iterations > MaxIterations {
		return fmt.Errorf("%w: %d iterations above %d", ErrWeakParams, p.Iterations, MaxIterations)
	}
	return nil
}

func deriveKey(password, salt []byte, p EncryptionParams) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

// Seal encrypts seed under password with Argon2id and XChaCha20-Poly1305.
// ad is authenticated but not encrypted; Open must be given the same ad.
func Seal(seed, password, ad []byte, p EncryptionParams) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make([]byte, headerSize+chacha20poly1305.NonceSizeX, sealedMin+len(seed))
	salt := out[:SaltSize]
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	binary.LittleEndian.PutUint32(out[SaltSize:], p.Memory)
	binary.LittleEndian.PutUint32(out[SaltSize+4:], p.Iterations)
	out[SaltSize+8] = p.Parallelism
	nonce := out[headerSize:]
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	key := deriveKey(password, salt, p)
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return aead.Seal(out, nonce, seed, ad), nil
}

// Open reverses Seal. The caller owns the returned seed and should wipe it.
func Open(sealed, password, ad []byte) ([]byte, error) {
	if len(sealed) < sealedMin {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrSealedTooShort, len(sealed), sealedMin)
	}

	p := EncryptionParams{
		Memory:      binary.LittleEndian.Uint32(sealed[SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[SaltSize+4:]),
		Parallelism: sealed[SaltSize+8],
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	salt := sealed[:SaltSize]
	nonce := sealed[headerSize : headerSize+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[headerSize+chacha20poly1305.NonceSizeX:]

	key := deriveKey(password, salt, p)
	defer crypto.Wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	seed, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return seed, nil
}
