package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Klingon-tech/movekeys/internal/wallet"
)

// LoadFile reads a .conf file of "key = value" lines. # starts a comment.
// A missing file yields an empty map.
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "network":
		cfg.Network = NetworkType(strings.ToLower(value))
	case "datadir":
		cfg.DataDir = value

	case "wallet.default":
		cfg.Wallet.Default = value
	case "wallet.mode":
		mode, err := wallet.ParseMode(value)
		if err != nil {
			return err
		}
		cfg.Wallet.Mode = mode
	case "wallet.account":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Wallet.Account = uint32(n)

	case "wallet.argon2.memory":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.KDF.Memory = uint32(n)
	case "wallet.argon2.iterations":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.KDF.Iterations = uint32(n)
	case "wallet.argon2.parallelism":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return err
		}
		cfg.KDF.Parallelism = uint8(n)

	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a commented default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	d := Default(network)
	content := `# movekeys configuration

# Network: mainnet, testnet or devnet. Selects the keystore directory.
network = ` + string(d.Network) + `

# Data directory (default: ~/.movekeys)
# datadir = ~/.movekeys

# ============================================================================
# Wallet
# ============================================================================

# Wallet used when -wallet is not given
wallet.default = ` + d.Wallet.Default + `

# Derivation mode for new wallets: hd (m/44'/637'/account'/0'/0') or direct
wallet.mode = ` + string(d.Wallet.Mode) + `

# Account index used when -account is not given
wallet.account = 0

# Argon2id cost for wallet encryption
wallet.argon2.memory = ` + strconv.FormatUint(uint64(d.KDF.Memory), 10) + `
wallet.argon2.iterations = ` + strconv.FormatUint(uint64(d.KDF.Iterations), 10) + `
wallet.argon2.parallelism = ` + strconv.FormatUint(uint64(d.KDF.Parallelism), 10) + `

# ============================================================================
# Logging
# ============================================================================

# debug, info, warn, error or disabled
log.level = ` + d.Log.Level + `
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
