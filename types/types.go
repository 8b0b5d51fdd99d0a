// Package types defines the request, result, and error values shared by all
// chainproof packages.
package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Currency represents the supported payment currencies. The set is closed:
// adding a chain means adding a constant here and an adapter case in the
// verification dispatcher.
type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
	CurrencySOL  Currency = "SOL"
)

// Currencies lists every supported currency in a stable order.
func Currencies() []Currency {
	return []Currency{CurrencyBTC, CurrencyETH, CurrencyUSDT, CurrencySOL}
}

// ParseCurrency maps a case-insensitive currency code onto the closed enum.
func ParseCurrency(code string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case CurrencyBTC:
		return CurrencyBTC, nil
	case CurrencyETH:
		return CurrencyETH, nil
	case CurrencyUSDT:
		return CurrencyUSDT, nil
	case CurrencySOL:
		return CurrencySOL, nil
	default:
		return "", &VerifyError{
			Code:    CodeUnsupportedCurrency,
			Message: MsgUnsupportedCurrency,
		}
	}
}

// IsEVM reports whether the currency settles on the Ethereum chain.
func (c Currency) IsEVM() bool {
	return c == CurrencyETH || c == CurrencyUSDT
}

func (c Currency) String() string {
	return string(c)
}

// VerificationRequest is the input tuple for a single payment verification.
type VerificationRequest struct {
	// Currency code, case-insensitive ("btc" and "BTC" are equivalent).
	Currency string `json:"currency" validate:"required"`

	// TxHash is the user-supplied transaction hash or signature.
	TxHash string `json:"txHash" validate:"required"`

	// ExpectedAmount is the payment amount the caller expects, in human
	// units (ETH, BTC, USDT, SOL). Optional; nil skips the amount check.
	ExpectedAmount *decimal.Decimal `json:"expectedAmount,omitempty"`

	// RecipientAddress is the address the payment must have been sent to.
	RecipientAddress string `json:"recipientAddress" validate:"required"`
}

var validate = validator.New()

// Validate checks that the request carries the required fields. Chain-specific
// syntax checks happen later, once the currency is resolved.
func (r *VerificationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid verification request: %w", err)
	}
	return nil
}

// ChainTransaction is an adapter's normalized view of a fetched transaction.
// It is built fresh from the live network response on every call and never
// cached or persisted.
type ChainTransaction struct {
	Found          bool
	Succeeded      bool
	Sender         string
	Recipient      string
	Amount         decimal.Decimal
	BlockConfirmed bool
}

// Confirmations reports the coarse settlement signal of the transaction: 1
// when the chain has included it in a block, 0 otherwise.
func (t *ChainTransaction) Confirmations() int {
	if t.BlockConfirmed {
		return 1
	}
	return 0
}

// VerificationResult is the sole output type of the verifier. Ownership
// passes entirely to the caller; a false Valid always carries an Error.
type VerificationResult struct {
	Valid         bool             `json:"valid"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	From          string           `json:"from,omitempty"`
	To            string           `json:"to,omitempty"`
	Confirmations int              `json:"confirmations,omitempty"`
	Error         string           `json:"error,omitempty"`
	ErrorCode     string           `json:"errorCode,omitempty"`
}
