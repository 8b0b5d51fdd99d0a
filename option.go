package chainproof

import (
	"time"

	"github.com/paygate-labs/chainproof/logger"
	"github.com/paygate-labs/chainproof/metrics"
)

type Option func(*ChainProof)

func WithLogger(l logger.Logger) Option {
	return func(c *ChainProof) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *ChainProof) {
		c.rec = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *ChainProof) {
		c.timeout = t
	}
}
