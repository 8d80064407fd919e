package config

import (
	"fmt"

	"github.com/Klingon-tech/movekeys/internal/log"
	"github.com/Klingon-tech/movekeys/internal/wallet"
)

// Validate checks the configuration for operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	switch cfg.Network {
	case Mainnet, Testnet, Devnet:
	default:
		return fmt.Errorf("network must be %q, %q or %q", Mainnet, Testnet, Devnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	mode, err := wallet.ParseMode(string(cfg.Wallet.Mode))
	if err != nil {
		return fmt.Errorf("wallet.mode: %w", err)
	}
	cfg.Wallet.Mode = mode
	if cfg.Wallet.Mode == wallet.ModeDirect && cfg.Wallet.Account != 0 {
		return fmt.Errorf("wallet.account must be 0 in direct mode")
	}
	if cfg.Wallet.Account > wallet.MaxAccountIndex {
		return fmt.Errorf("wallet.account must be at most %d", wallet.MaxAccountIndex)
	}
	if err := cfg.KDF.Params().Validate(); err != nil {
		return fmt.Errorf("wallet.argon2: %w", err)
	}

	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, error or disabled")
	}
	return nil
}
