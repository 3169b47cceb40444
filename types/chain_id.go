package types

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ChainID identifies the rollup (L2) network.
//
// Ethereum JS tooling requires chain ids to stay within the JS safe-integer
// range even after the `v = 2*chainId + 36` signature transform, hence the
// MaxChainID bound. Constructing a ChainID above the bound returns
// ErrChainIDTooLarge instead of succeeding silently.
type ChainID uint64

const (
	// MaxChainID is the largest valid chain id: ((2^53 - 1) - 36) / 2.
	MaxChainID ChainID = ((1 << 53) - 1 - 36) / 2

	// DefaultChainID is the canonical chain id of the default network.
	DefaultChainID ChainID = 270
)

// ErrChainIDTooLarge is returned when a chain id exceeds MaxChainID.
var ErrChainIDTooLarge = errors.New("chain id exceeds maximum")

var maxChainIDBig = new(big.Int).SetUint64(uint64(MaxChainID))

// NewChainID validates v against MaxChainID.
func NewChainID(v uint64) (ChainID, error) {
	if v > uint64(MaxChainID) {
		return 0, fmt.Errorf("chain id %d: %w (max %d)", v, ErrChainIDTooLarge, MaxChainID)
	}
	return ChainID(v), nil
}

// ParseChainID parses a chain id from its string form, trying decimal first
// and falling back to hexadecimal (with or without a 0x prefix).
func ParseChainID(s string) (ChainID, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		v, ok = new(big.Int).SetString(hex, 16)
		if !ok {
			return 0, fmt.Errorf("invalid chain id %q", s)
		}
	}
	if v.Sign() < 0 {
		return 0, fmt.Errorf("invalid chain id %q: negative", s)
	}
	if v.Cmp(maxChainIDBig) > 0 {
		return 0, fmt.Errorf("chain id %q: %w (max %d)", s, ErrChainIDTooLarge, MaxChainID)
	}
	return ChainID(v.Uint64()), nil
}

func (id ChainID) String() string {
	return fmt.Sprintf("%d", uint64(id))
}

// MarshalText implements encoding.TextMarshaler.
func (id ChainID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseChainID, so
// config files and wire messages may carry decimal or hexadecimal forms.
func (id *ChainID) UnmarshalText(text []byte) error {
	parsed, err := ParseChainID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
