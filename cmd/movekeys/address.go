package main

import (
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/crypto"
	"github.com/Klingon-tech/movekeys/pkg/types"
)

const addressUsage = "Usage: movekeys address <single|named|guid|resource> [flags]"

func (c *cli) cmdAddress(args []string) {
	if len(args) < 1 {
		fatal(addressUsage)
	}

	switch args[0] {
	case "single":
		cmdAddressSingle(args[1:])
	case "named":
		cmdAddressNamed(args[1:])
	case "guid":
		cmdAddressGuid(args[1:])
	case "resource":
		cmdAddressResource(args[1:])
	default:
		fatal("Unknown address command: %s\n%s", args[0], addressUsage)
	}
}

func cmdAddressSingle(args []string) {
	fs := newFlagSet("address single")
	pubHex := fs.String("pubkey", "", "Ed25519 public key as hex")
	fs.Parse(args)

	if *pubHex == "" {
		fatal("Usage: movekeys address single -pubkey <hex>")
	}
	pub, err := decodeHex(*pubHex)
	if err != nil {
		fatal("decode public key: %v", err)
	}
	addr, err := crypto.PrimaryAddress(pub)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(addr)
}

// parseCreator accepts full or short-form 0x addresses.
func parseCreator(s string) types.Address {
	if s == "" {
		fatal("-creator is required")
	}
	addr, err := types.ParseAddress(s)
	if err != nil {
		fatal("parse creator: %v", err)
	}
	return addr
}

func cmdAddressNamed(args []string) {
	fs := newFlagSet("address named")
	creator := fs.String("creator", "", "Creator address")
	name := fs.String("name", "", "Object name")
	fs.Parse(args)

	fmt.Println(crypto.NamedObjectAddress(parseCreator(*creator), *name))
}

func cmdAddressGuid(args []string) {
	fs := newFlagSet("address guid")
	creator := fs.String("creator", "", "Creator address")
	n := fs.Uint64("n", 0, "Creation number")
	fs.Parse(args)

	fmt.Println(crypto.GuidObjectAddress(parseCreator(*creator), *n))
}

func cmdAddressResource(args []string) {
	fs := newFlagSet("address resource")
	creator := fs.String("creator", "", "Creator address")
	seed := fs.String("seed", "", "Seed as a UTF-8 string")
	seedHex := fs.String("seed-hex", "", "Seed as hex (instead of -seed)")
	fs.Parse(args)

	raw := []byte(*seed)
	if *seedHex != "" {
		b, err := decodeHex(*seedHex)
		if err != nil {
			fatal("decode seed: %v", err)
		}
		raw = b
	}
	fmt.Println(crypto.ResourceAccountAddress(parseCreator(*creator), raw))
}
