// movekeys derives Ed25519 account keys, computes account and object
// addresses, and encodes multi-signature keys and signatures.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/Klingon-tech/movekeys/config"
	"github.com/Klingon-tech/movekeys/internal/log"
	"github.com/Klingon-tech/movekeys/internal/wallet"
	"golang.org/x/term"
)

const version = "0.1.0"

// cli carries the resolved configuration to every command.
type cli struct {
	cfg *config.Config
}

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if err != nil {
		fatal("%v", err)
	}
	if flags.Help {
		fmt.Print(config.Usage)
		return
	}
	if flags.Version {
		fmt.Println("movekeys version " + version)
		return
	}
	if len(flags.Args) == 0 {
		fmt.Fprint(os.Stderr, config.Usage)
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	app := &cli{cfg: cfg}
	cmd, cmdArgs := flags.Args[0], flags.Args[1:]
	log.CLI.Debug().Str("command", cmd).Str("network", string(cfg.Network)).Msg("Dispatch")

	switch cmd {
	case "mnemonic":
		app.cmdMnemonic(cmdArgs)
	case "wallet":
		app.cmdWallet(cmdArgs)
	case "address":
		app.cmdAddress(cmdArgs)
	case "multisig":
		app.cmdMultisig(cmdArgs)
	case "help":
		fmt.Print(config.Usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		fmt.Fprint(os.Stderr, config.Usage)
		os.Exit(1)
	}
}

// keystore opens the keystore for the configured network, creating the
// data directories on first use.
func (c *cli) keystore() *wallet.Keystore {
	if err := config.EnsureDataDirs(c.cfg); err != nil {
		fatal("prepare data dir: %v", err)
	}
	ks, err := wallet.NewKeystore(c.cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	return ks
}

// ── Mnemonic ────────────────────────────────────────────────────────────

func (c *cli) cmdMnemonic(args []string) {
	if len(args) < 1 || args[0] != "new" {
		fatal("Usage: movekeys mnemonic new [-words 12|24]")
	}
	fs := newFlagSet("mnemonic new")
	words := fs.Int("words", 24, "Number of words (12 or 24)")
	fs.Parse(args[1:])

	var bits int
	switch *words {
	case 12:
		bits = wallet.ShortMnemonicEntropyBits
	case 24:
		bits = wallet.MnemonicEntropyBits
	default:
		fatal("-words must be 12 or 24")
	}
	m, err := wallet.GenerateMnemonicBits(bits)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}
	fmt.Println(m)
}

// ── Helpers ─────────────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readNewPassword prompts twice and fails when the entries differ.
func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

// decodeHex accepts an optional 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// decodeHexList splits a comma-separated list of hex strings.
func decodeHexList(s string) ([][]byte, error) {
	var out [][]byte
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b, err := decodeHex(part)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// parseIndexList parses a comma-separated list of bit positions.
func parseIndexList(s string) ([]uint8, error) {
	var out []uint8
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", part, err)
		}
		out = append(out, uint8(n))
	}
	return out, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
