// Package chainproof verifies crypto payments against public chain data. A
// caller supplies a currency, a transaction hash, the expected recipient and
// optionally an expected amount; the library queries the chain's public data
// source and decides whether a matching payment really settled on-chain.
package chainproof

import (
	"context"
	"time"

	"github.com/paygate-labs/chainproof/clients"
	"github.com/paygate-labs/chainproof/config"
	"github.com/paygate-labs/chainproof/logger"
	"github.com/paygate-labs/chainproof/metrics"
	"github.com/paygate-labs/chainproof/rpc"
	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/verification"
)

const Version = "1.0.0"

// ChainProof is the entry point: it owns one adapter per supported currency
// and the dispatcher routing requests between them.
type ChainProof struct {
	service *verification.Service
	cfg     *config.Config

	log     logger.Logger
	rec     metrics.Recorder
	timeout time.Duration
}

// New builds a verifier from the given configuration. A nil config uses the
// public-endpoint defaults.
func New(cfg *config.Config, opts ...Option) (*ChainProof, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &ChainProof{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NoopLogger{}
	}
	if c.rec == nil {
		if cfg.EnableMetrics {
			c.rec = metrics.NewPrometheusRecorder()
		} else {
			c.rec = metrics.NoopRecorder{}
		}
	}
	if c.timeout <= 0 {
		c.timeout = cfg.Timeout()
	}

	transport, err := rpc.NewFailoverClient(
		cfg.Ethereum.RPCURL,
		cfg.Ethereum.FallbackRPCURLs,
		rpc.DefaultTimeout,
		c.log,
	)
	if err != nil {
		return nil, err
	}

	service := verification.NewService(c.timeout, c.log, c.rec)
	service.Register(clients.NewEthereumClient(transport))
	service.Register(clients.NewTokenClient(transport, cfg.Ethereum.TokenContract, cfg.Ethereum.TokenDecimals))
	service.Register(clients.NewBitcoinClient(cfg.Bitcoin.ExplorerURL, cfg.Bitcoin.MinConfirmations, rpc.DefaultTimeout))
	service.Register(clients.NewSolanaClient(cfg.Solana.RPCURL, cfg.Solana.StrictAmount, rpc.DefaultTimeout))
	c.service = service

	return c, nil
}

// NewWithDefaults builds a verifier against the public mainnet endpoints.
func NewWithDefaults(opts ...Option) (*ChainProof, error) {
	return New(config.Default(), opts...)
}

// Verify checks a single payment. It always returns a result value; every
// failure mode, including upstream outages, is reported through Valid=false
// and an error message.
func (c *ChainProof) Verify(ctx context.Context, req *types.VerificationRequest) *types.VerificationResult {
	return c.service.Verify(ctx, req)
}

// QuickVerify runs syntax-only validation without any network calls.
func (c *ChainProof) QuickVerify(req *types.VerificationRequest) *types.VerificationResult {
	return c.service.QuickVerify(req)
}

// BatchVerify verifies independent payments concurrently, preserving order.
func (c *ChainProof) BatchVerify(ctx context.Context, reqs []*types.VerificationRequest) []*types.VerificationResult {
	return c.service.BatchVerify(ctx, reqs)
}

// SupportedCurrencies lists the currencies with a registered adapter.
func (c *ChainProof) SupportedCurrencies() []types.Currency {
	return c.service.SupportedCurrencies()
}

// IsCurrencySupported reports whether the code maps to a registered adapter.
func (c *ChainProof) IsCurrencySupported(code string) bool {
	return c.service.IsCurrencySupported(code)
}

// Close releases all adapter resources.
func (c *ChainProof) Close() {
	c.service.Close()
}
