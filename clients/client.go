// Package clients contains the per-chain adapters that translate a
// verification request into the chain's native query protocol.
package clients

import (
	"context"

	"github.com/paygate-labs/chainproof/types"
)

// Client is the contract every chain adapter implements. VerifyPayment
// returns the normalized transaction on success; failures are reported as
// *types.VerifyError (or a transport error, which the dispatcher treats as
// upstream unavailability).
type Client interface {
	VerifyPayment(ctx context.Context, req *types.VerificationRequest) (*types.ChainTransaction, error)
	Currency() types.Currency
	Close()
}
