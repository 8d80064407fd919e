package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 32

// ErrMalformedAddressLength is returned when raw address input is not
// exactly AddressSize bytes.
var ErrMalformedAddressLength = errors.New("malformed address length")

// Address identifies an account or object on chain. It carries no record
// of which derivation scheme produced it.
type Address [AddressSize]byte

// Well-known framework addresses.
var (
	AddressZero  = Address{}
	AddressOne   = Address{31: 0x01}
	AddressThree = Address{31: 0x03}
	AddressFour  = Address{31: 0x04}
)

// AddressFromBytes copies b into an Address. b must be exactly
// AddressSize bytes; shorter or longer input is rejected, never padded.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedAddressLength, len(b), AddressSize)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsSpecial reports whether a is one of the reserved addresses 0x0..0xf.
func (a Address) IsSpecial() bool {
	for _, b := range a[:AddressSize-1] {
		if b != 0 {
			return false
		}
	}
	return a[AddressSize-1] < 0x10
}

// String returns the long form: 0x followed by 64 hex characters.
func (a Address) String() string {
	return "0x" + a.Hex()
}

// ShortString returns 0x0..0xf for special addresses and the long form
// for everything else.
func (a Address) ShortString() string {
	if a.IsSpecial() {
		return fmt.Sprintf("0x%x", a[AddressSize-1])
	}
	return a.String()
}

// Hex returns the raw hex-encoded address without prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// MarshalJSON encodes the address in long form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes any form accepted by ParseAddress.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses a hex address, with or without the 0x prefix.
// Short forms such as "0x1" are left-padded with zeros; input longer than
// 64 hex characters is rejected.
func ParseAddress(s string) (Address, error) {
	hexStr := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if hexStr == "" {
		return Address{}, fmt.Errorf("empty address")
	}
	if len(hexStr) > AddressSize*2 {
		return Address{}, fmt.Errorf("%w: %d hex characters, max %d", ErrMalformedAddressLength, len(hexStr), AddressSize*2)
	}
	if len(hexStr)%2 == 1 {
		hexStr = "0" + hexStr
	}
	decoded, err := hex.DecodeString(hexStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address: %w", err)
	}
	var a Address
	copy(a[AddressSize-len(decoded):], decoded)
	return a, nil
}

// MustParseAddress is ParseAddress for constants. Panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}
