package types

// Error codes carried by VerifyError and surfaced on VerificationResult.
const (
	// CodeNotFound: the hash does not resolve to a known transaction on the
	// queried chain.
	CodeNotFound = "NOT_FOUND"

	// CodeRecipientMismatch: a real transaction exists but does not pay the
	// expected address.
	CodeRecipientMismatch = "RECIPIENT_MISMATCH"

	// CodeOnChainFailure: the transaction executed but reverted or failed.
	CodeOnChainFailure = "ON_CHAIN_FAILURE"

	// CodeAmountInsufficient: the transferred amount is below the expected
	// amount beyond tolerance.
	CodeAmountInsufficient = "AMOUNT_INSUFFICIENT"

	// CodeUnsupportedCurrency: the caller requested a currency the verifier
	// does not implement.
	CodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"

	// CodeUpstreamUnavailable: every configured endpoint failed or timed
	// out. Unlike NOT_FOUND this asserts nothing about the transaction.
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
)

// Messages kept verbatim so callers matching on them keep working.
const (
	MsgTxNotFound             = "Transaction not found"
	MsgReceiptNotFound        = "Transaction receipt not found"
	MsgRecipientMismatch      = "Recipient address mismatch"
	MsgTxFailedOnChain        = "Transaction failed on-chain"
	MsgTxFailed               = "Transaction failed"
	MsgTransferEventNotFound  = "USDT transfer event not found"
	MsgRecipientNotInOutputs  = "Recipient address not found in transaction"
	MsgRecipientNotInAccounts = "Recipient address not found"
	MsgUnsupportedCurrency    = "Unsupported cryptocurrency"
)

// VerifyError is the typed failure every adapter reports. The dispatcher
// converts it into a VerificationResult; it never crosses the library
// boundary as an error.
type VerifyError struct {
	Code    string
	Message string
}

func (e *VerifyError) Error() string {
	return e.Message
}

// NotFound builds a NOT_FOUND error with the given message.
func NotFound(msg string) *VerifyError {
	return &VerifyError{Code: CodeNotFound, Message: msg}
}

// RecipientMismatch builds a RECIPIENT_MISMATCH error.
func RecipientMismatch(msg string) *VerifyError {
	return &VerifyError{Code: CodeRecipientMismatch, Message: msg}
}

// OnChainFailure builds an ON_CHAIN_FAILURE error.
func OnChainFailure(msg string) *VerifyError {
	return &VerifyError{Code: CodeOnChainFailure, Message: msg}
}

// AmountInsufficient builds an AMOUNT_INSUFFICIENT error.
func AmountInsufficient(msg string) *VerifyError {
	return &VerifyError{Code: CodeAmountInsufficient, Message: msg}
}

// UpstreamUnavailable builds an UPSTREAM_UNAVAILABLE error.
func UpstreamUnavailable(msg string) *VerifyError {
	return &VerifyError{Code: CodeUpstreamUnavailable, Message: msg}
}
