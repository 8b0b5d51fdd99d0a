// Package utils holds amount reconciliation and syntactic validation helpers
// shared by the chain adapters.
package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Base-unit precision per chain. These are fixed protocol constants; the
// token decimal count in particular must match the deployed contract exactly,
// so it is configured alongside the contract address rather than probed at
// runtime.
const (
	WeiDecimals     int32 = 18 // wei per ETH
	SatoshiDecimals int32 = 8  // satoshi per BTC
	LamportDecimals int32 = 9  // lamports per SOL
	USDTDecimals    int32 = 6  // mainnet USDT contract precision
)

// AmountTolerance is the slack allowed when comparing an expected amount to
// the actual transferred amount. Underpayment beyond it is rejected;
// overpayment is always accepted.
var AmountTolerance = decimal.NewFromFloat(0.01)

// ParseHexAmount parses a base-16 integer amount as returned by Ethereum
// JSON-RPC. The "0x" prefix is optional: some endpoints omit it on log data
// fields, so it is stripped rather than required.
func ParseHexAmount(raw string) (*big.Int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex amount %q", raw)
	}
	return v, nil
}

// FromBaseUnits converts an integer amount in a chain's smallest unit into
// its human unit using the given decimal precision.
func FromBaseUnits(raw *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -decimals)
}

// FromBaseUnitsInt64 is FromBaseUnits for explorer APIs that report smallest
// units as plain integers (satoshis, lamports).
func FromBaseUnitsInt64(raw int64, decimals int32) decimal.Decimal {
	return decimal.New(raw, -decimals)
}

// WithinTolerance reports whether actual satisfies expected: actual may fall
// short of expected by at most AmountTolerance.
func WithinTolerance(expected, actual decimal.Decimal) bool {
	return expected.Sub(actual).LessThanOrEqual(AmountTolerance)
}
