// Package evm translates monitored entities into EVM JSON-RPC balance
// reads and normalizes raw amounts into decimals.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	// Function selectors for the two ERC-20 reads this service needs.
	selectorBalanceOf = "0x70a08231"
	selectorDecimals  = "0x313ce567"

	nativeDecimals = 18
)

// Caller executes a JSON-RPC call against one network. Implemented by
// rpc.Pool; tests inject fakes.
type Caller interface {
	Call(ctx context.Context, method string, params []any) (any, error)
}

// Reader reads native and token balances through a transport pool.
// It is stateless apart from a per-contract decimals cache.
type Reader struct {
	client Caller

	mu       sync.Mutex
	decimals map[string]int32 // contract (lowercase) -> decimals
}

// NewReader creates a balance reader over the given transport.
func NewReader(client Caller) *Reader {
	return &Reader{
		client:   client,
		decimals: make(map[string]int32),
	}
}

// Native returns the native coin balance of an address, in whole coins
// (18 decimal places).
func (r *Reader) Native(ctx context.Context, address string) (decimal.Decimal, error) {
	result, err := r.client.Call(ctx, "eth_getBalance", []any{strings.ToLower(address), "latest"})
	if err != nil {
		return decimal.Zero, fmt.Errorf("eth_getBalance failed: %w", err)
	}

	wei, err := parseHexQuantity(result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("eth_getBalance: %w", err)
	}

	return decimal.NewFromBigInt(wei, -nativeDecimals), nil
}

// Token returns the token balance of holder on the given contract,
// normalized by the contract-reported decimals (18 when the contract does
// not answer).
func (r *Reader) Token(ctx context.Context, contract, holder string) (decimal.Decimal, error) {
	data := selectorBalanceOf + pad32(holder)
	result, err := r.client.Call(ctx, "eth_call", []any{
		map[string]any{"to": strings.ToLower(contract), "data": data},
		"latest",
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf call failed: %w", err)
	}

	raw, err := parseHexQuantity(result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf: %w", err)
	}

	return decimal.NewFromBigInt(raw, -r.tokenDecimals(ctx, contract)), nil
}

// tokenDecimals resolves decimals() for a contract, caching the answer.
// A failed or malformed response falls back to 18.
func (r *Reader) tokenDecimals(ctx context.Context, contract string) int32 {
	key := strings.ToLower(contract)

	r.mu.Lock()
	if d, ok := r.decimals[key]; ok {
		r.mu.Unlock()
		return d
	}
	r.mu.Unlock()

	d := int32(nativeDecimals)
	result, err := r.client.Call(ctx, "eth_call", []any{
		map[string]any{"to": key, "data": selectorDecimals},
		"latest",
	})
	if err == nil {
		if v, perr := parseHexQuantity(result); perr == nil && v.IsInt64() && v.Int64() >= 0 && v.Int64() <= 77 {
			d = int32(v.Int64())
		}
	}

	r.mu.Lock()
	r.decimals[key] = d
	r.mu.Unlock()
	return d
}

// parseHexQuantity decodes a 0x-prefixed hex quantity from an RPC result.
func parseHexQuantity(result any) (*big.Int, error) {
	s, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}

	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return big.NewInt(0), nil
	}

	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", result)
	}
	return v, nil
}

// pad32 left-pads an address to a 32-byte ABI word.
func pad32(address string) string {
	hex := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return strings.Repeat("0", 64-len(hex)) + hex
}
