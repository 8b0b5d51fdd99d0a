// Package verification routes verification requests to the matching chain
// adapter and converts every failure into a result value.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paygate-labs/chainproof/clients"
	"github.com/paygate-labs/chainproof/logger"
	"github.com/paygate-labs/chainproof/metrics"
	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/utils"
)

// Service dispatches verification requests across the registered chain
// adapters. It never returns an error to callers: every failure mode becomes
// a VerificationResult with Valid=false, so callers can branch synchronously.
type Service struct {
	adapters map[types.Currency]clients.Client
	timeout  time.Duration
	log      logger.Logger
	rec      metrics.Recorder
}

// NewService creates a dispatcher with no adapters registered. timeout bounds
// a whole verification call (all of its network requests together).
func NewService(timeout time.Duration, log logger.Logger, rec metrics.Recorder) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Service{
		adapters: make(map[types.Currency]clients.Client),
		timeout:  timeout,
		log:      log,
		rec:      rec,
	}
}

// Register installs an adapter for the currency it reports. USDT is the only
// currency that may need a distinct adapter from its chain: register the
// token adapter separately from the native one.
func (s *Service) Register(client clients.Client) {
	s.adapters[client.Currency()] = client
}

// RegisterFor installs an adapter under an explicit currency, for adapters
// that serve more than one (none today, kept for symmetry with Register).
func (s *Service) RegisterFor(currency types.Currency, client clients.Client) {
	s.adapters[currency] = client
}

// SupportedCurrencies returns the currencies that have a registered adapter.
func (s *Service) SupportedCurrencies() []types.Currency {
	out := make([]types.Currency, 0, len(s.adapters))
	for _, c := range types.Currencies() {
		if _, ok := s.adapters[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// IsCurrencySupported reports whether an adapter is registered for the code.
func (s *Service) IsCurrencySupported(code string) bool {
	currency, err := types.ParseCurrency(code)
	if err != nil {
		return false
	}
	_, ok := s.adapters[currency]
	return ok
}

// Verify resolves the currency, queries the matching adapter, and returns the
// outcome. Unknown currencies fail fast without any network call.
func (s *Service) Verify(ctx context.Context, req *types.VerificationRequest) *types.VerificationResult {
	started := time.Now()

	if req == nil {
		return &types.VerificationResult{Valid: false, Error: "request is nil"}
	}
	if err := req.Validate(); err != nil {
		return &types.VerificationResult{Valid: false, Error: err.Error()}
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		return s.record(currency, started, errorResult(err))
	}

	adapter, ok := s.adapterFor(currency)
	if !ok {
		return s.record(currency, started, &types.VerificationResult{
			Valid:     false,
			Error:     fmt.Sprintf("no adapter configured for %s", currency),
			ErrorCode: types.CodeUpstreamUnavailable,
		})
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := adapter.VerifyPayment(verifyCtx, req)
	if err != nil {
		s.log.Info("verification rejected", map[string]any{
			"currency": currency.String(),
			"txHash":   req.TxHash,
			"error":    err.Error(),
		})
		return s.record(currency, started, errorResult(err))
	}

	s.log.Info("verification passed", map[string]any{
		"currency": currency.String(),
		"txHash":   req.TxHash,
		"amount":   tx.Amount.String(),
	})

	amount := tx.Amount
	return s.record(currency, started, &types.VerificationResult{
		Valid:         true,
		Amount:        &amount,
		From:          tx.Sender,
		To:            tx.Recipient,
		Confirmations: tx.Confirmations(),
	})
}

// QuickVerify performs syntax-only checks without touching the network.
// Useful as a cheap pre-filter before the real verification.
func (s *Service) QuickVerify(req *types.VerificationRequest) *types.VerificationResult {
	if req == nil {
		return &types.VerificationResult{Valid: false, Error: "request is nil"}
	}
	if err := req.Validate(); err != nil {
		return &types.VerificationResult{Valid: false, Error: err.Error()}
	}

	currency, err := types.ParseCurrency(req.Currency)
	if err != nil {
		return errorResult(err)
	}
	if err := utils.ValidateTxHash(currency, req.TxHash); err != nil {
		return &types.VerificationResult{Valid: false, Error: err.Error()}
	}
	if err := utils.ValidateAddress(currency, req.RecipientAddress); err != nil {
		return &types.VerificationResult{Valid: false, Error: err.Error()}
	}

	return &types.VerificationResult{Valid: true, To: req.RecipientAddress}
}

// BatchVerify fans the requests out concurrently. Verification calls share no
// state, so plain goroutines per request are sufficient. Result order matches
// request order.
func (s *Service) BatchVerify(ctx context.Context, reqs []*types.VerificationRequest) []*types.VerificationResult {
	results := make([]*types.VerificationResult, len(reqs))

	type indexed struct {
		idx    int
		result *types.VerificationResult
	}
	ch := make(chan indexed, len(reqs))

	for i, req := range reqs {
		go func(idx int, r *types.VerificationRequest) {
			ch <- indexed{idx: idx, result: s.Verify(ctx, r)}
		}(i, req)
	}

	for range reqs {
		res := <-ch
		results[res.idx] = res.result
	}
	return results
}

// Close closes every registered adapter.
func (s *Service) Close() {
	for _, adapter := range s.adapters {
		adapter.Close()
	}
}

// adapterFor is the exhaustive currency dispatch. The switch exists so that a
// fifth currency added to the enum is a compile-time-visible change here.
func (s *Service) adapterFor(currency types.Currency) (clients.Client, bool) {
	switch currency {
	case types.CurrencyBTC, types.CurrencyETH, types.CurrencyUSDT, types.CurrencySOL:
		adapter, ok := s.adapters[currency]
		return adapter, ok
	default:
		return nil, false
	}
}

func (s *Service) record(currency types.Currency, started time.Time, result *types.VerificationResult) *types.VerificationResult {
	labels := map[string]string{"currency": currency.String()}
	outcome := "invalid"
	if result.Valid {
		outcome = "valid"
	}
	s.rec.IncCounter(outcome, labels)
	s.rec.ObserveLatency("verify", time.Since(started), labels)
	return result
}

// errorResult converts an adapter failure into a result value. Typed errors
// keep their code; anything else is treated as upstream unavailability, which
// asserts nothing about the transaction's existence.
func errorResult(err error) *types.VerificationResult {
	var verr *types.VerifyError
	if errors.As(err, &verr) {
		return &types.VerificationResult{
			Valid:     false,
			Error:     verr.Message,
			ErrorCode: verr.Code,
		}
	}
	return &types.VerificationResult{
		Valid:     false,
		Error:     err.Error(),
		ErrorCode: types.CodeUpstreamUnavailable,
	}
}
