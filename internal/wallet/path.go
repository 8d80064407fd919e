package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"
)

// Derivation path template: m/44'/637'/account'/0'/0'.
// Every segment is hardened; only the account segment varies.
const (
	// PurposeBIP44 is the BIP-44 purpose field (hardened).
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinType is the registered SLIP-0044 coin type (hardened).
	CoinType = bip32.FirstHardenedChild + 637

	// MaxAccountIndex is the largest account index that can be hardened.
	MaxAccountIndex = bip32.FirstHardenedChild - 1
)

// Path is a sequence of child indices. Hardened segments carry the
// bip32.FirstHardenedChild offset.
type Path []uint32

// AccountPath returns m/44'/637'/account'/0'/0'.
func AccountPath(account uint32) (Path, error) {
	if account > MaxAccountIndex {
		return nil, fmt.Errorf("%w: account index %d exceeds %d", ErrUnsupportedDerivation, account, MaxAccountIndex)
	}
	return Path{
		PurposeBIP44,
		CoinType,
		bip32.FirstHardenedChild + account,
		bip32.FirstHardenedChild,
		bip32.FirstHardenedChild,
	}, nil
}

// ParsePath parses "m/44'/637'/0'/0'/0'". Both ' and h mark a hardened
// segment. Non-hardened segments parse but fail at derivation time.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("invalid path %q: must start with m", s)
	}
	path := make(Path, 0, len(parts)-1)
	for _, seg := range parts[1:] {
		hardened := false
		if strings.HasSuffix(seg, "'") || strings.HasSuffix(seg, "h") || strings.HasSuffix(seg, "H") {
			hardened = true
			seg = seg[:len(seg)-1]
		}
		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid path segment %q: %w", seg, err)
		}
		if n >= uint64(bip32.FirstHardenedChild) {
			return nil, fmt.Errorf("invalid path segment %q: index too large", seg)
		}
		idx := uint32(n)
		if hardened {
			idx += bip32.FirstHardenedChild
		}
		path = append(path, idx)
	}
	return path, nil
}

// String formats the path with ' marking hardened segments.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, idx := range p {
		sb.WriteByte('/')
		if idx >= bip32.FirstHardenedChild {
			sb.WriteString(strconv.FormatUint(uint64(idx-bip32.FirstHardenedChild), 10))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return sb.String()
}
