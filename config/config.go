// Package config handles movekeys configuration.
//
// Settings are resolved in order: network defaults, the .conf file in the
// data directory, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/movekeys/internal/wallet"
)

// NetworkType names the chain a keystore belongs to. Keys are identical on
// every network; only the storage location differs.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
	Devnet  NetworkType = "devnet"
)

// Config holds the runtime configuration.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	Wallet WalletConfig
	KDF    KDFConfig
	Log    LogConfig
}

// WalletConfig holds derivation defaults.
type WalletConfig struct {
	Default string      `conf:"wallet.default"` // wallet used when -wallet is omitted
	Mode    wallet.Mode `conf:"wallet.mode"`    // hd or direct
	Account uint32      `conf:"wallet.account"` // default account index
}

// KDFConfig holds the Argon2id cost for newly encrypted wallets.
type KDFConfig struct {
	Memory      uint32 `conf:"wallet.argon2.memory"` // KiB
	Iterations  uint32 `conf:"wallet.argon2.iterations"`
	Parallelism uint8  `conf:"wallet.argon2.parallelism"`
}

// Params converts the KDF settings for the wallet package.
func (k KDFConfig) Params() wallet.EncryptionParams {
	return wallet.EncryptionParams{
		Memory:      k.Memory,
		Iterations:  k.Iterations,
		Parallelism: k.Parallelism,
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.movekeys
//	macOS:   ~/Library/Application Support/Movekeys
//	Windows: %APPDATA%\Movekeys
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".movekeys"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Movekeys")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Movekeys")
		}
		return filepath.Join(home, "AppData", "Roaming", "Movekeys")
	default:
		return filepath.Join(home, ".movekeys")
	}
}

// NetworkDir returns the network-specific data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the directory holding encrypted wallet files.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "movekeys.conf")
}
