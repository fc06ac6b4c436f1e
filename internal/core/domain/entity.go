package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Entity identifies a monitored (network, address, token-or-native) triple.
// It is derived entirely from configuration so keys stay stable across
// restarts.
type Entity struct {
	Network string
	ChainID uint64
	Alias   string

	// Address is the holder address (0x-prefixed, case-insensitive).
	Address string

	// Contract is the token contract address. Empty for native coin.
	Contract string

	// Threshold is the minimum-balance alert threshold. Nil disables
	// low-balance alerts for this entity.
	Threshold *decimal.Decimal
}

// IsToken reports whether the entity tracks a token contract balance.
func (e Entity) IsToken() bool {
	return e.Contract != ""
}

// Key returns the stable identity used for snapshots and alert state:
// "network:address" for native coin, "network:address:contract" for tokens,
// all lowercase.
func (e Entity) Key() string {
	if e.IsToken() {
		return fmt.Sprintf("%s:%s:%s",
			strings.ToLower(e.Network),
			strings.ToLower(e.Address),
			strings.ToLower(e.Contract),
		)
	}
	return fmt.Sprintf("%s:%s",
		strings.ToLower(e.Network),
		strings.ToLower(e.Address),
	)
}

// Asset returns a display name for what is being counted: the token alias
// for tokens, the native coin for addresses.
func (e Entity) Asset() string {
	if e.IsToken() {
		return e.Alias
	}
	return "ETH"
}

// ShortAddress renders an address as 0xabcd...1234 for display.
func ShortAddress(address string) string {
	if len(address) > 10 {
		return address[:6] + "..." + address[len(address)-4:]
	}
	return address
}
