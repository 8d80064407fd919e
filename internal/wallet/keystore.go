package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Klingon-tech/movekeys/internal/log"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
)

const (
	keystoreVersion = 1
	walletExt       = ".wallet"
)

// Keystore errors.
var (
	ErrWalletExists         = errors.New("wallet already exists")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInvalidWalletName    = errors.New("invalid wallet name")
	ErrFingerprintMismatch  = errors.New("decrypted seed does not match wallet fingerprint")
	ErrAccountIndexConflict = errors.New("account index already recorded with a different address")
)

// keystoreFile is the on-disk JSON format for an encrypted wallet.
type keystoreFile struct {
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	Mode          Mode           `json:"mode"`
	Fingerprint   string         `json:"fingerprint"`
	EncryptedSeed []byte         `json:"encrypted_seed"`
	Accounts      []AccountEntry `json:"accounts"`
}

// AccountEntry records a derived account. It never holds key material.
type AccountEntry struct {
	Index     uint32 `json:"index"`
	Name      string `json:"name,omitempty"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
}

// EntryFor builds the metadata entry for acct.
func EntryFor(acct *Account, name string) AccountEntry {
	return AccountEntry{
		Index:     acct.Index(),
		Name:      name,
		Address:   acct.Address().String(),
		PublicKey: acct.PublicKey().String(),
	}
}

// WalletInfo is the public metadata of a stored wallet.
type WalletInfo struct {
	Name        string
	Mode        Mode
	Fingerprint uint32
	CreatedAt   time.Time
	Accounts    int
}

// Keystore manages encrypted wallet files in one directory.
type Keystore struct {
	path string
}

// NewKeystore opens the keystore at path, creating the directory if needed.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

// Dir returns the keystore directory.
func (ks *Keystore) Dir() string {
	return ks.path
}

func (ks *Keystore) walletPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletName, name)
	}
	return filepath.Join(ks.path, name+walletExt), nil
}

// associatedData binds the ciphertext to the derivation mode.
func associatedData(mode Mode) []byte {
	return []byte("movekeys-wallet-v" + strconv.Itoa(keystoreVersion) + ":" + string(mode))
}

// Create encrypts seed and writes a new wallet file.
func (ks *Keystore) Create(name string, seed, password []byte, mode Mode, params EncryptionParams) (*WalletInfo, error) {
	path, err := ks.walletPath(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	w, err := New(seed, mode)
	if err != nil {
		return nil, err
	}
	defer w.Zero()
	fp, err := w.Fingerprint()
	if err != nil {
		return nil, err
	}

	sealed, err := Seal(seed, password, associatedData(mode), params)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed: %w", err)
	}

	kf := keystoreFile{
		Version:       keystoreVersion,
		CreatedAt:     time.Now().UTC(),
		Mode:          mode,
		Fingerprint:   formatFingerprint(fp),
		EncryptedSeed: sealed,
		Accounts:      []AccountEntry{},
	}
	if err := ks.writeFile(path, &kf); err != nil {
		return nil, err
	}

	log.Keystore.Info().
		Str("wallet", name).
		Str("mode", string(mode)).
		Str("fingerprint", kf.Fingerprint).
		Msg("Wallet created")
	return &WalletInfo{Name: name, Mode: mode, Fingerprint: fp, CreatedAt: kf.CreatedAt}, nil
}

// Open decrypts a wallet. The caller should Zero the result when done.
func (ks *Keystore) Open(name string, password []byte) (*Wallet, error) {
	kf, err := ks.load(name)
	if err != nil {
		return nil, err
	}

	seed, err := Open(kf.EncryptedSeed, password, associatedData(kf.Mode))
	if err != nil {
		return nil, fmt.Errorf("open wallet %q: %w", name, err)
	}
	defer crypto.Wipe(seed)

	w, err := New(seed, kf.Mode)
	if err != nil {
		return nil, err
	}
	fp, err := w.Fingerprint()
	if err != nil {
		w.Zero()
		return nil, err
	}
	if formatFingerprint(fp) != kf.Fingerprint {
		w.Zero()
		return nil, fmt.Errorf("%w: %q", ErrFingerprintMismatch, name)
	}

	log.Keystore.Debug().Str("wallet", name).Msg("Wallet unlocked")
	return w, nil
}

// Info returns wallet metadata without decrypting anything.
func (ks *Keystore) Info(name string) (*WalletInfo, error) {
	kf, err := ks.load(name)
	if err != nil {
		return nil, err
	}
	fp, err := strconv.ParseUint(kf.Fingerprint, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("parse wallet fingerprint: %w", err)
	}
	return &WalletInfo{
		Name:        name,
		Mode:        kf.Mode,
		Fingerprint: uint32(fp),
		CreatedAt:   kf.CreatedAt,
		Accounts:    len(kf.Accounts),
	}, nil
}

// AddAccount records a derived account. Re-adding the same index and
// address is a no-op.
func (ks *Keystore) AddAccount(walletName string, acct AccountEntry) error {
	path, err := ks.walletPath(walletName)
	if err != nil {
		return err
	}
	kf, err := ks.load(walletName)
	if err != nil {
		return err
	}

	for _, existing := range kf.Accounts {
		if existing.Index != acct.Index {
			continue
		}
		if existing.Address == acct.Address {
			return nil
		}
		return fmt.Errorf("%w: index %d", ErrAccountIndexConflict, acct.Index)
	}

	kf.Accounts = append(kf.Accounts, acct)
	if err := ks.writeFile(path, kf); err != nil {
		return err
	}
	log.Keystore.Debug().
		Str("wallet", walletName).
		Uint32("index", acct.Index).
		Str("address", acct.Address).
		Msg("Account recorded")
	return nil
}

// ListAccounts returns the recorded accounts of a wallet.
func (ks *Keystore) ListAccounts(walletName string) ([]AccountEntry, error) {
	kf, err := ks.load(walletName)
	if err != nil {
		return nil, err
	}
	return kf.Accounts, nil
}

// List returns the names of all wallets in the keystore.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) == walletExt {
			names = append(names, strings.TrimSuffix(name, walletExt))
		}
	}
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Keystore.Info().Str("wallet", name).Msg("Wallet deleted")
	return nil
}

func (ks *Keystore) load(name string) (*keystoreFile, error) {
	path, err := ks.walletPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	if kf.Mode != ModeHierarchical && kf.Mode != ModeDirect {
		return nil, fmt.Errorf("parse wallet: unknown mode %q", kf.Mode)
	}
	return &kf, nil
}

func (ks *Keystore) writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func formatFingerprint(fp uint32) string {
	return fmt.Sprintf("%08x", fp)
}
