package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/movekeys/internal/wallet"
)

func writeConf(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "movekeys.conf")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default(Testnet)
	if cfg.Network != Testnet {
		t.Errorf("Network = %q, want testnet", cfg.Network)
	}
	if cfg.Wallet.Mode != wallet.ModeHierarchical {
		t.Errorf("Mode = %q, want hd", cfg.Wallet.Mode)
	}
	if cfg.KDF.Params() != wallet.DefaultParams() {
		t.Errorf("KDF = %+v, want wallet defaults", cfg.KDF)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if Default("bogus").Network != Mainnet {
		t.Error("unknown network should fall back to mainnet defaults")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConf(t, dir, `
# comment
network = devnet
wallet.mode = "direct"
wallet.default = 'ops'
log.json = yes
`)
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if values["network"] != "devnet" || values["wallet.mode"] != "direct" || values["wallet.default"] != "ops" {
		t.Errorf("values = %v", values)
	}

	missing, err := LoadFile(filepath.Join(dir, "nope.conf"))
	if err != nil || len(missing) != 0 {
		t.Errorf("missing file: values = %v, err = %v", missing, err)
	}

	bad := writeConf(t, dir, "no equals sign\n")
	if _, err := LoadFile(bad); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error = %v, want line 1 format error", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultMainnet()
	err := ApplyFileConfig(cfg, map[string]string{
		"network":                   "Testnet",
		"wallet.mode":               "hierarchical",
		"wallet.account":            "4",
		"wallet.argon2.memory":      "1024",
		"wallet.argon2.iterations":  "2",
		"wallet.argon2.parallelism": "1",
		"log.level":                 "debug",
		"log.json":                  "on",
		"unknown.key":               "ignored",
	})
	if err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Network != Testnet || cfg.Wallet.Mode != wallet.ModeHierarchical || cfg.Wallet.Account != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.KDF != (KDFConfig{Memory: 1024, Iterations: 2, Parallelism: 1}) {
		t.Errorf("KDF = %+v", cfg.KDF)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}

	for key, value := range map[string]string{
		"wallet.mode":               "bip32",
		"wallet.account":            "-1",
		"wallet.argon2.parallelism": "300",
	} {
		if err := ApplyFileConfig(DefaultMainnet(), map[string]string{key: value}); err == nil {
			t.Errorf("%s = %s should fail", key, value)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"devnet", func(c *Config) { c.Network = Devnet }, false},
		{"bad network", func(c *Config) { c.Network = "localnet" }, true},
		{"empty datadir", func(c *Config) { c.DataDir = "" }, true},
		{"bad mode", func(c *Config) { c.Wallet.Mode = "bip32" }, true},
		{"direct with account", func(c *Config) {
			c.Wallet.Mode = wallet.ModeDirect
			c.Wallet.Account = 1
		}, true},
		{"account not hardenable", func(c *Config) { c.Wallet.Account = wallet.MaxAccountIndex + 1 }, true},
		{"zero argon2 iterations", func(c *Config) { c.KDF.Iterations = 0 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			cfg.DataDir = t.TempDir()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := DefaultMainnet()
	cfg.Wallet.Mode = "hierarchical"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Wallet.Mode != wallet.ModeHierarchical {
		t.Errorf("Validate should normalize mode, got %q", cfg.Wallet.Mode)
	}
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"--testnet", "--datadir", "/tmp/x", "--account=3", "--log-json", "wallet", "derive", "-wallet", "main"})
	if err != nil {
		t.Fatalf("ParseFlags() error: %v", err)
	}
	if f.Network != "testnet" || f.DataDir != "/tmp/x" {
		t.Errorf("flags = %+v", f)
	}
	if !f.SetAccount || f.Account != 3 || !f.SetLogJSON {
		t.Errorf("account/log-json not recorded: %+v", f)
	}
	want := []string{"wallet", "derive", "-wallet", "main"}
	if strings.Join(f.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Args = %v, want %v", f.Args, want)
	}

	if f, err := ParseFlags([]string{"-h"}); err != nil || !f.Help {
		t.Errorf("-h: flags = %+v, err = %v", f, err)
	}
	if _, err := ParseFlags([]string{"--no-such-flag"}); err == nil {
		t.Error("unknown flag should fail")
	}
	if _, err := ParseFlags([]string{"--account=-1"}); err == nil {
		t.Error("negative account should fail")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, "network = devnet\nwallet.account = 2\nlog.level = info\n")

	cfg, f, err := Load([]string{"--datadir", dir, "--log-level", "error", "address", "single"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Network != Devnet {
		t.Errorf("Network = %q, want devnet from file", cfg.Network)
	}
	if cfg.Wallet.Account != 2 {
		t.Errorf("Account = %d, want 2 from file", cfg.Wallet.Account)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, flag should win", cfg.Log.Level)
	}
	if len(f.Args) != 2 || f.Args[0] != "address" {
		t.Errorf("Args = %v", f.Args)
	}

	cfg, _, err = Load([]string{"--datadir", dir, "--account", "0", "--network", "mainnet"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Wallet.Account != 0 || cfg.Network != Mainnet {
		t.Errorf("explicit flags should override file: %+v", cfg)
	}

	if _, _, err := Load([]string{"--datadir", dir, "--mode", "bip32"}); err == nil {
		t.Error("invalid mode flag should fail validation")
	}
}

func TestEnsureDataDirs(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs() error: %v", err)
	}
	for _, dir := range []string{cfg.KeystoreDir(), cfg.LogsDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created", dir)
		}
	}

	values, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	fresh := DefaultMainnet()
	fresh.DataDir = cfg.DataDir
	if err := ApplyFileConfig(fresh, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if err := Validate(fresh); err != nil {
		t.Errorf("default config file should validate: %v", err)
	}

	// Existing config is left alone.
	writeConf(t, cfg.DataDir, "network = testnet\n")
	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("second EnsureDataDirs() error: %v", err)
	}
	values, _ = LoadFile(cfg.ConfigFile())
	if values["network"] != "testnet" {
		t.Error("EnsureDataDirs should not overwrite an existing config")
	}
}
