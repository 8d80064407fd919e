// Package wallet derives Ed25519 account keys from BIP-39 seeds and keeps
// encrypted seeds on disk.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Mnemonic entropy sizes.
const (
	MnemonicEntropyBits      = 256 // 24 words
	ShortMnemonicEntropyBits = 128 // 12 words
)

// ErrInvalidMnemonic is returned for phrases with unknown words or a bad checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	return GenerateMnemonicBits(MnemonicEntropyBits)
}

// GenerateMnemonicBits creates a mnemonic from bits of entropy
// (a multiple of 32 between 128 and 256).
func GenerateMnemonicBits(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic lowercases the phrase and collapses runs of whitespace.
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// ValidateMnemonic checks word list membership and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic))
}
