package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/Klingon-tech/movekeys/internal/wallet"
	"github.com/Klingon-tech/movekeys/pkg/crypto"
)

const walletUsage = "Usage: movekeys wallet <create|import|list|accounts|derive|sign|export-key> [flags]"

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

func (c *cli) cmdWallet(args []string) {
	if len(args) < 1 {
		fatal(walletUsage)
	}

	switch args[0] {
	case "create":
		c.cmdWalletCreate(args[1:])
	case "import":
		c.cmdWalletImport(args[1:])
	case "list":
		c.cmdWalletList()
	case "accounts":
		c.cmdWalletAccounts(args[1:])
	case "derive":
		c.cmdWalletDerive(args[1:])
	case "sign":
		c.cmdWalletSign(args[1:])
	case "export-key":
		c.cmdWalletExportKey(args[1:])
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func (c *cli) cmdWalletCreate(args []string) {
	fs := newFlagSet("wallet create")
	name := fs.String("name", c.cfg.Wallet.Default, "Wallet name")
	mode := fs.String("mode", string(c.cfg.Wallet.Mode), "Derivation mode: hd or direct")
	words := fs.Int("words", 24, "Mnemonic length (12 or 24)")
	fs.Parse(args)

	bits := wallet.MnemonicEntropyBits
	if *words == 12 {
		bits = wallet.ShortMnemonicEntropyBits
	} else if *words != 24 {
		fatal("-words must be 12 or 24")
	}
	mnemonic, err := wallet.GenerateMnemonicBits(bits)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	c.storeWallet(*name, *mode, seed)
}

func (c *cli) cmdWalletImport(args []string) {
	fs := newFlagSet("wallet import")
	name := fs.String("name", c.cfg.Wallet.Default, "Wallet name")
	mode := fs.String("mode", string(c.cfg.Wallet.Mode), "Derivation mode: hd or direct")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	passphrase := fs.String("passphrase", "", "Optional BIP-39 passphrase")
	seedHex := fs.String("seed", "", "Raw 64-byte seed as hex (instead of -mnemonic)")
	fs.Parse(args)

	var (
		seed []byte
		err  error
	)
	switch {
	case *mnemonic != "" && *seedHex != "":
		fatal("use either -mnemonic or -seed, not both")
	case *mnemonic != "":
		seed, err = wallet.SeedFromMnemonic(*mnemonic, *passphrase)
		if err != nil {
			fatal("derive seed: %v", err)
		}
	case *seedHex != "":
		seed, err = decodeHex(*seedHex)
		if err != nil {
			fatal("decode seed: %v", err)
		}
	default:
		fatal("Usage: movekeys wallet import -name <name> (-mnemonic \"word1 word2 ...\" | -seed <hex>)")
	}
	c.storeWallet(*name, *mode, seed)
}

// storeWallet encrypts seed under a new password, records the default
// account and wipes seed.
func (c *cli) storeWallet(name, modeStr string, seed []byte) {
	defer crypto.Wipe(seed)

	mode, err := wallet.ParseMode(modeStr)
	if err != nil {
		fatal("%v", err)
	}
	index := c.cfg.Wallet.Account
	if mode == wallet.ModeDirect {
		index = 0
	}
	acct, err := wallet.DeriveAccount(seed, mode, index)
	if err != nil {
		fatal("derive account: %v", err)
	}
	defer acct.Zero()

	password := readNewPassword()
	defer crypto.Wipe(password)

	ks := c.keystore()
	info, err := ks.Create(name, seed, password, mode, c.cfg.KDF.Params())
	if err != nil {
		fatal("create wallet: %v", err)
	}
	if err := ks.AddAccount(name, wallet.EntryFor(acct, "default")); err != nil {
		fatal("add account: %v", err)
	}

	fmt.Printf("Wallet saved: %s (%s, fingerprint %08x)\n", name, mode, info.Fingerprint)
	fmt.Printf("Account %d: %s\n", acct.Index(), acct.Address())
}

func (c *cli) cmdWalletList() {
	ks := c.keystore()
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, name := range names {
		info, err := ks.Info(name)
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%-20s %-7s %08x  %d account(s)\n", name, info.Mode, info.Fingerprint, info.Accounts)
	}
}

func (c *cli) cmdWalletAccounts(args []string) {
	fs := newFlagSet("wallet accounts")
	name := fs.String("wallet", c.cfg.Wallet.Default, "Wallet name")
	fs.Parse(args)

	accounts, err := c.keystore().ListAccounts(*name)
	if err != nil {
		fatal("list accounts: %v", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts recorded.")
		return
	}
	for _, a := range accounts {
		fmt.Printf("  [%d] %s  %s\n", a.Index, a.Address, a.Name)
	}
}

// unlock prompts for the password and derives one account.
func (c *cli) unlock(name string, index uint32) (*wallet.Keystore, *wallet.Account) {
	ks := c.keystore()
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	w, err := ks.Open(name, password)
	crypto.Wipe(password)
	if err != nil {
		fatal("%v", err)
	}
	defer w.Zero()

	acct, err := w.Account(index)
	if err != nil {
		fatal("derive account %d: %v", index, err)
	}
	return ks, acct
}

func (c *cli) cmdWalletDerive(args []string) {
	fs := newFlagSet("wallet derive")
	name := fs.String("wallet", c.cfg.Wallet.Default, "Wallet name")
	index := fs.Uint("account", uint(c.cfg.Wallet.Account), "Account index")
	label := fs.String("label", "", "Label stored with the account")
	fs.Parse(args)

	ks, acct := c.unlock(*name, uint32(*index))
	defer acct.Zero()

	if err := ks.AddAccount(*name, wallet.EntryFor(acct, *label)); err != nil {
		fatal("add account: %v", err)
	}

	if info, err := ks.Info(*name); err == nil && info.Mode == wallet.ModeHierarchical {
		path, _ := wallet.AccountPath(acct.Index())
		fmt.Printf("Path:       %s\n", path)
	}
	fmt.Printf("Public key: %s\n", acct.PublicKey())
	fmt.Printf("Address:    %s\n", acct.Address())
}

func (c *cli) cmdWalletSign(args []string) {
	fs := newFlagSet("wallet sign")
	name := fs.String("wallet", c.cfg.Wallet.Default, "Wallet name")
	index := fs.Uint("account", uint(c.cfg.Wallet.Account), "Account index")
	msgHex := fs.String("msg", "", "Message to sign as hex")
	fs.Parse(args)

	if *msgHex == "" {
		fatal("Usage: movekeys wallet sign -wallet <name> [-account N] -msg <hex>")
	}
	msg, err := decodeHex(*msgHex)
	if err != nil {
		fatal("decode message: %v", err)
	}

	_, acct := c.unlock(*name, uint32(*index))
	defer acct.Zero()

	sig, err := acct.Sign(msg)
	if err != nil {
		fatal("sign: %v", err)
	}
	fmt.Printf("Public key: %s\n", acct.PublicKey())
	fmt.Printf("Signature:  %s\n", sig)
}

func (c *cli) cmdWalletExportKey(args []string) {
	fs := newFlagSet("wallet export-key")
	name := fs.String("wallet", c.cfg.Wallet.Default, "Wallet name")
	index := fs.Uint("account", uint(c.cfg.Wallet.Account), "Account index")
	output := fs.String("output", "", "Output file path (default: <name>-<account>.key)")
	fs.Parse(args)

	_, acct := c.unlock(*name, uint32(*index))
	defer acct.Zero()

	priv, err := acct.PrivateKeySeed()
	if err != nil {
		fatal("export key: %v", err)
	}
	privHex := hex.EncodeToString(priv)
	crypto.Wipe(priv)

	outPath := *output
	if outPath == "" {
		outPath = fmt.Sprintf("%s-%d.key", *name, acct.Index())
	}
	if err := os.WriteFile(outPath, []byte(privHex+"\n"), 0600); err != nil {
		fatal("write key file: %v", err)
	}

	fmt.Printf("Exported key to: %s\n", outPath)
	fmt.Printf("  Public key: %s\n", acct.PublicKey())
	fmt.Printf("  Address:    %s\n", acct.Address())
}
