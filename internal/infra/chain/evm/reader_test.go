package evm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// fakeCaller answers method calls from a script. eth_call is dispatched on
// the function selector inside the call data.
type fakeCaller struct {
	balances map[string]string // method or selector -> hex result
	errOn    map[string]error
	calls    []string
}

func (f *fakeCaller) Call(_ context.Context, method string, params []any) (any, error) {
	key := method
	if method == "eth_call" {
		tx := params[0].(map[string]any)
		data := tx["data"].(string)
		key = data[:10] // 0x + 4-byte selector
	}
	f.calls = append(f.calls, key)
	if err, ok := f.errOn[key]; ok {
		return nil, err
	}
	result, ok := f.balances[key]
	if !ok {
		return nil, errors.New("unexpected call: " + key)
	}
	return result, nil
}

func TestReader_Native(t *testing.T) {
	caller := &fakeCaller{balances: map[string]string{
		// 1.5 ETH in wei
		"eth_getBalance": "0x14d1120d7b160000",
	}}
	reader := NewReader(caller)

	got, err := reader.Native(context.Background(), "0xAbCd000000000000000000000000000000001234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.RequireFromString("1.5"); !got.Equal(want) {
		t.Errorf("Native() = %s, want %s", got, want)
	}
}

func TestReader_TokenUsesContractDecimals(t *testing.T) {
	caller := &fakeCaller{balances: map[string]string{
		selectorBalanceOf: "0xf4240", // 1000000 raw
		selectorDecimals:  "0x6",     // 6 decimals (USDT-style)
	}}
	reader := NewReader(caller)

	got, err := reader.Token(context.Background(),
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"0x28C6c06298d514Db089934071355E5743bf21d60")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(1); !got.Equal(want) {
		t.Errorf("Token() = %s, want %s", got, want)
	}

	// decimals() must be cached: a second read goes straight to balanceOf.
	callsBefore := len(caller.calls)
	if _, err := reader.Token(context.Background(),
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"0x28C6c06298d514Db089934071355E5743bf21d60"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(caller.calls) - callsBefore; got != 1 {
		t.Errorf("expected 1 call after decimals cached, got %d", got)
	}
}

func TestReader_TokenDecimalsDefault(t *testing.T) {
	caller := &fakeCaller{
		balances: map[string]string{
			selectorBalanceOf: "0xde0b6b3a7640000", // 1e18 raw
		},
		errOn: map[string]error{
			selectorDecimals: errors.New("execution reverted"),
		},
	}
	reader := NewReader(caller)

	got, err := reader.Token(context.Background(),
		"0x0000000000000000000000000000000000000001",
		"0x0000000000000000000000000000000000000002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(1); !got.Equal(want) {
		t.Errorf("Token() with default decimals = %s, want %s", got, want)
	}
}

func TestReader_TransportErrorWraps(t *testing.T) {
	cause := errors.New("network testnet: all rpc endpoints failed")
	caller := &fakeCaller{errOn: map[string]error{"eth_getBalance": cause}}
	reader := NewReader(caller)

	_, err := reader.Native(context.Background(), "0x0000000000000000000000000000000000000001")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("transport cause not wrapped: %v", err)
	}
}

func TestParseHexQuantity(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{name: "zero", in: "0x0", want: "0"},
		{name: "empty quantity", in: "0x", want: "0"},
		{name: "value", in: "0xde0b6b3a7640000", want: "1000000000000000000"},
		{name: "not a string", in: 42.0, wantErr: true},
		{name: "garbage", in: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHexQuantity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("parseHexQuantity(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestPad32(t *testing.T) {
	got := pad32("0x28C6c06298d514Db089934071355E5743bf21d60")
	if len(got) != 64 {
		t.Fatalf("padded word length = %d, want 64", len(got))
	}
	if !strings.HasSuffix(got, "28c6c06298d514db089934071355e5743bf21d60") {
		t.Errorf("padded word should end with lowercase address, got %s", got)
	}
	if !strings.HasPrefix(got, "000000000000000000000000") {
		t.Errorf("padded word should be left-padded with zeros, got %s", got)
	}
}
