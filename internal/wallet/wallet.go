package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/movekeys/internal/log"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
)

// Derivation errors.
var (
	ErrInvalidSeedLength     = errors.New("invalid seed length")
	ErrUnsupportedDerivation = errors.New("derivation not supported for this mode")
	ErrNonHardenedDerivation = fmt.Errorf("%w: ed25519 requires hardened segments", ErrUnsupportedDerivation)
	ErrWalletZeroed          = errors.New("wallet has been zeroed")
)

// Mode selects how account keys are produced from the seed.
type Mode string

const (
	// ModeHierarchical derives accounts along m/44'/637'/account'/0'/0'.
	ModeHierarchical Mode = "hd"
	// ModeDirect uses the first 32 seed bytes as the only account key.
	ModeDirect Mode = "direct"
)

// ParseMode accepts "hd", "hierarchical" or "direct".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hd", "hierarchical":
		return ModeHierarchical, nil
	case "direct":
		return ModeDirect, nil
	default:
		return "", fmt.Errorf("unknown derivation mode %q (want hd or direct)", s)
	}
}

// Wallet owns a seed and derives accounts from it. It holds no other state.
type Wallet struct {
	seed   []byte
	mode   Mode
	zeroed bool
}

// New copies seed into a wallet using mode. seed must be exactly
// SeedSize bytes in either mode.
func New(seed []byte, mode Mode) (*Wallet, error) {
	if mode != ModeHierarchical && mode != ModeDirect {
		return nil, fmt.Errorf("unknown derivation mode %q", mode)
	}
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSeedLength, SeedSize, len(seed))
	}
	cp := make([]byte, SeedSize)
	copy(cp, seed)
	return &Wallet{seed: cp, mode: mode}, nil
}

// Mode returns the derivation mode.
func (w *Wallet) Mode() Mode {
	return w.mode
}

// Account derives the account at index. Direct mode only has index 0.
func (w *Wallet) Account(index uint32) (*Account, error) {
	if w.zeroed {
		return nil, ErrWalletZeroed
	}

	var (
		priv *crypto.PrivateKey
		err  error
	)
	switch w.mode {
	case ModeDirect:
		if index != 0 {
			return nil, fmt.Errorf("%w: direct mode has a single account, requested index %d", ErrUnsupportedDerivation, index)
		}
		priv, err = crypto.PrivateKeyFromSeed(w.seed[:crypto.SeedSize])
	default:
		priv, err = w.deriveHierarchical(index)
	}
	if err != nil {
		return nil, err
	}

	acct := newAccount(priv, index)
	log.Wallet.Debug().
		Str("mode", string(w.mode)).
		Uint32("index", index).
		Str("address", acct.Address().String()).
		Msg("Derived account")
	return acct, nil
}

func (w *Wallet) deriveHierarchical(index uint32) (*crypto.PrivateKey, error) {
	path, err := AccountPath(index)
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(w.seed)
	if err != nil {
		return nil, err
	}
	defer master.Zero()

	node, err := master.DerivePath(path...)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", path, err)
	}
	defer node.Zero()
	return node.Signer()
}

// Fingerprint identifies the wallet without revealing the seed: the first
// four bytes of BLAKE3 over the index 0 public key.
func (w *Wallet) Fingerprint() (uint32, error) {
	acct, err := w.Account(0)
	if err != nil {
		return 0, err
	}
	defer acct.Zero()
	pub := acct.PublicKey()
	return crypto.Fingerprint(pub[:]), nil
}

// Zero wipes the seed. The wallet cannot derive accounts afterwards.
func (w *Wallet) Zero() {
	crypto.Wipe(w.seed)
	w.zeroed = true
}

// DeriveAccount derives one account without keeping a Wallet around.
func DeriveAccount(seed []byte, mode Mode, index uint32) (*Account, error) {
	w, err := New(seed, mode)
	if err != nil {
		return nil, err
	}
	defer w.Zero()
	return w.Account(index)
}
