package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Klingon-tech/movekeys/internal/wallet"
)

// Flags holds the global command-line flags. Parsing stops at the first
// non-flag argument, which starts the command.
type Flags struct {
	Help    bool
	Version bool

	Network string
	DataDir string
	Config  string

	Mode    string
	Account int64

	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args: the command and its arguments.
	Args []string

	SetAccount bool
	SetLogJSON bool
}

// ParseFlags parses global flags from args (without the program name).
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	fs := flag.NewFlagSet("movekeys", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.Network, "network", "", "Network: mainnet, testnet or devnet")
	fs.BoolFunc("testnet", "Shorthand for --network=testnet", func(string) error {
		f.Network = string(Testnet)
		return nil
	})
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	fs.StringVar(&f.Mode, "mode", "", "Derivation mode for new wallets: hd or direct")
	fs.Int64Var(&f.Account, "account", 0, "Default account index")

	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			f.Help = true
			return f, nil
		}
		return nil, err
	}

	f.SetAccount = isFlagSet(fs, "account")
	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	if f.SetAccount && (f.Account < 0 || f.Account > int64(^uint32(0))) {
		return nil, fmt.Errorf("-account %d out of range", f.Account)
	}
	return f, nil
}

// ApplyFlags applies explicitly set flags to cfg.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(f.Network))
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Mode != "" {
		cfg.Wallet.Mode = wallet.Mode(strings.ToLower(f.Mode))
	}
	if f.SetAccount {
		cfg.Wallet.Account = uint32(f.Account)
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Load resolves configuration from defaults, the config file and flags.
// It returns the parsed flags so the caller can dispatch on f.Args.
func Load(args []string) (*Config, *Flags, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, nil, err
	}
	if flags.Help || flags.Version {
		return Default(Mainnet), flags, nil
	}

	cfg := Default(NetworkType(strings.ToLower(flags.Network)))
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, flags, nil
}

// EnsureDataDirs creates the data directories and a default config file
// if they do not exist yet. Safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.NetworkDir(), cfg.KeystoreDir(), cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}

// Usage is the global help text.
const Usage = `movekeys - key derivation, addresses and multi-signature encoding

Usage:
  movekeys [global options] <command> [arguments]

Commands:
  mnemonic new                  Generate a new 24-word mnemonic
  wallet create|import          Create an encrypted wallet
  wallet list                   List wallets in the keystore
  wallet accounts               List recorded accounts of a wallet
  wallet derive                 Derive and record an account
  wallet sign                   Sign a hex message with an account
  wallet export-key             Write an account private key to a file
  address single|named|guid|resource
                                Compute account and object addresses
  multisig pubkey|sig|address   Encode threshold keys and signatures

Global Options:
  --network       mainnet (default), testnet or devnet
  --testnet       Shorthand for --network=testnet
  --datadir       Data directory (default: ~/.movekeys)
  --config, -c    Config file path (default: <datadir>/movekeys.conf)
  --mode          Derivation mode for new wallets: hd (default) or direct
  --account       Default account index
  --log-level     debug, info, warn (default), error or disabled
  --log-file      Also write JSON logs to this file
  --log-json      Output logs as JSON
  --help, -h      Show this help message
  --version       Show version information

Run "movekeys <command> -h" for command options.
`
