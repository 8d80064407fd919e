package main

import (
	"fmt"

	"github.com/Klingon-tech/movekeys/pkg/multisig"
)

const multisigUsage = "Usage: movekeys multisig <pubkey|sig|address> [flags]"

func (c *cli) cmdMultisig(args []string) {
	if len(args) < 1 {
		fatal(multisigUsage)
	}

	switch args[0] {
	case "pubkey":
		cmdMultisigPubkey(args[1:], false)
	case "address":
		cmdMultisigPubkey(args[1:], true)
	case "sig":
		cmdMultisigSig(args[1:])
	default:
		fatal("Unknown multisig command: %s\n%s", args[0], multisigUsage)
	}
}

func cmdMultisigPubkey(args []string, addressOnly bool) {
	fs := newFlagSet("multisig pubkey")
	keysArg := fs.String("keys", "", "Comma-separated Ed25519 public keys as hex, in bit order")
	threshold := fs.Uint("threshold", 0, "Number of signatures required")
	fs.Parse(args)

	keys, err := decodeHexList(*keysArg)
	if err != nil {
		fatal("decode keys: %v", err)
	}
	if *threshold > 255 {
		fatal("-threshold %d out of range", *threshold)
	}
	encoded, err := multisig.EncodePublicKey(keys, uint8(*threshold))
	if err != nil {
		fatal("%v", err)
	}
	pk, err := multisig.ParsePublicKey(encoded)
	if err != nil {
		fatal("%v", err)
	}

	if addressOnly {
		fmt.Println(pk.AuthenticationKey())
		return
	}
	fmt.Printf("Public key: 0x%x\n", encoded)
	fmt.Printf("Address:    %s\n", pk.AuthenticationKey())
}

func cmdMultisigSig(args []string) {
	fs := newFlagSet("multisig sig")
	sigsArg := fs.String("sigs", "", "Comma-separated 64-byte signatures as hex")
	posArg := fs.String("positions", "", "Comma-separated key positions, one per signature")
	fs.Parse(args)

	sigs, err := decodeHexList(*sigsArg)
	if err != nil {
		fatal("decode signatures: %v", err)
	}
	positions, err := parseIndexList(*posArg)
	if err != nil {
		fatal("%v", err)
	}
	encoded, err := multisig.EncodeSignature(sigs, positions)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("0x%x\n", encoded)
}
