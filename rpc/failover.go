// Package rpc implements the JSON-RPC transport used by the Ethereum
// adapters, with ordered endpoint failover.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/paygate-labs/chainproof/logger"
)

// DefaultTimeout bounds each outbound call. A hung endpoint counts as a
// failure and the next endpoint is tried.
const DefaultTimeout = 10 * time.Second

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// FailoverClient issues a logical JSON-RPC call against an ordered list of
// endpoints, short-circuiting on the first success. This is endpoint-level
// failover only: a call that succeeds with a negative answer (e.g. a null
// transaction) is a success and is not retried elsewhere.
type FailoverClient struct {
	endpoints []string
	http      *resty.Client
	log       logger.Logger
}

// NewFailoverClient builds a client over the primary endpoint followed by the
// fallbacks, in order. At least one endpoint is required.
func NewFailoverClient(primary string, fallbacks []string, timeout time.Duration, log logger.Logger) (*FailoverClient, error) {
	if primary == "" {
		return nil, fmt.Errorf("rpc: primary endpoint is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NoopLogger{}
	}

	endpoints := append([]string{primary}, fallbacks...)
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &FailoverClient{
		endpoints: endpoints,
		http:      client,
		log:       log,
	}, nil
}

// Endpoints returns the configured endpoint order.
func (c *FailoverClient) Endpoints() []string {
	out := make([]string, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// Call runs method against each endpoint in order until one answers, then
// unmarshals the result into out. A JSON-RPC error member counts as an
// endpoint failure. When every endpoint fails the returned error wraps the
// last underlying failure.
func (c *FailoverClient) Call(ctx context.Context, method string, params []any, out any) error {
	body := request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	var lastErr error
	for i, endpoint := range c.endpoints {
		if i > 0 {
			c.log.Warn("rpc endpoint failed, trying fallback", map[string]any{
				"method":   method,
				"fallback": endpoint,
				"error":    lastErr.Error(),
			})
		}

		result, err := c.callOne(ctx, endpoint, body)
		if err != nil {
			lastErr = err
			continue
		}

		if out == nil || len(result) == 0 {
			return nil
		}
		if err := json.Unmarshal(result, out); err != nil {
			lastErr = fmt.Errorf("decode %s result: %w", method, err)
			continue
		}
		return nil
	}

	return fmt.Errorf("rpc %s failed on all %d endpoints: %w", method, len(c.endpoints), lastErr)
}

func (c *FailoverClient) callOne(ctx context.Context, endpoint string, body request) (json.RawMessage, error) {
	var parsed response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post(endpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d from %s", resp.StatusCode(), endpoint)
	}
	if parsed.Error != nil {
		return nil, parsed.Error
	}
	return parsed.Result, nil
}
