package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paygate-labs/chainproof/types"
)

var (
	hexRe    = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	base58Re = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

	// Legacy (1...), script (3...) and bech32 (bc1.../tb1...) address forms.
	btcLegacyRe = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
	btcBech32Re = regexp.MustCompile(`(?i)^(bc1|tb1)[a-z0-9]{25,87}$`)
)

// ValidateTxHash checks the syntactic shape of a transaction hash for the
// given currency before any network call is made.
func ValidateTxHash(currency types.Currency, hash string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}

	switch currency {
	case types.CurrencyETH, types.CurrencyUSDT:
		h := strings.TrimPrefix(hash, "0x")
		if len(h) != 64 || !hexRe.MatchString(h) {
			return fmt.Errorf("invalid Ethereum transaction hash")
		}
	case types.CurrencyBTC:
		if len(hash) != 64 || !hexRe.MatchString(hash) {
			return fmt.Errorf("invalid Bitcoin transaction id")
		}
	case types.CurrencySOL:
		if len(hash) < 80 || len(hash) > 90 || !base58Re.MatchString(hash) {
			return fmt.Errorf("invalid Solana transaction signature")
		}
	default:
		return fmt.Errorf("unsupported currency %q", currency)
	}
	return nil
}

// ValidateAddress checks the syntactic shape of a recipient address for the
// given currency.
func ValidateAddress(currency types.Currency, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("recipient address cannot be empty")
	}

	switch currency {
	case types.CurrencyETH, types.CurrencyUSDT:
		if !strings.HasPrefix(address, "0x") || len(address) != 42 || !hexRe.MatchString(address[2:]) {
			return fmt.Errorf("invalid Ethereum address")
		}
	case types.CurrencyBTC:
		if !btcLegacyRe.MatchString(address) && !btcBech32Re.MatchString(address) {
			return fmt.Errorf("invalid Bitcoin address")
		}
	case types.CurrencySOL:
		if len(address) < 32 || len(address) > 44 || !base58Re.MatchString(address) {
			return fmt.Errorf("invalid Solana address")
		}
	default:
		return fmt.Errorf("unsupported currency %q", currency)
	}
	return nil
}
