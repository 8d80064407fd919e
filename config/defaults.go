package config

import "github.com/Klingon-tech/movekeys/internal/wallet"

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	kdf := wallet.DefaultParams()
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Wallet: WalletConfig{
			Default: "default",
			Mode:    wallet.ModeHierarchical,
			Account: 0,
		},
		KDF: KDFConfig{
			Memory:      kdf.Memory,
			Iterations:  kdf.Iterations,
			Parallelism: kdf.Parallelism,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	cfg := DefaultMainnet()
	switch network {
	case Testnet, Devnet:
		cfg.Network = network
	}
	return cfg
}
