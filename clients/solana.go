package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/utils"
)

// Public Solana RPC endpoints.
const (
	SOLMainnetRPC = "https://api.mainnet-beta.solana.com"
	SOLTestnetRPC = "https://api.testnet.solana.com"
)

var _ Client = (*SolanaClient)(nil)

// SolanaClient verifies SOL payments via the getTransaction RPC with
// parsed-JSON encoding.
//
// In the default mode the adapter only proves that the recipient account took
// part in a successful transaction and passes the caller's expected amount
// through unchanged. strictAmount switches to computing the recipient's
// actual lamport balance delta, which closes the gap where a caller could
// claim a larger amount than was really paid.
type SolanaClient struct {
	http         *resty.Client
	endpoint     string
	strictAmount bool
}

func NewSolanaClient(endpoint string, strictAmount bool, timeout time.Duration) *SolanaClient {
	if endpoint == "" {
		endpoint = SOLMainnetRPC
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SolanaClient{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		endpoint:     endpoint,
		strictAmount: strictAmount,
	}
}

func (c *SolanaClient) Currency() types.Currency { return types.CurrencySOL }

func (c *SolanaClient) Close() {}

type solResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type solTransaction struct {
	Slot uint64 `json:"slot"`
	Meta *struct {
		Err          any     `json:"err"`
		PreBalances  []int64 `json:"preBalances"`
		PostBalances []int64 `json:"postBalances"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []struct {
				Pubkey string `json:"pubkey"`
			} `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

func (c *SolanaClient) VerifyPayment(ctx context.Context, req *types.VerificationRequest) (*types.ChainTransaction, error) {
	body := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "getTransaction",
		"params": []any{
			req.TxHash,
			map[string]any{
				"encoding":                       "jsonParsed",
				"maxSupportedTransactionVersion": 0,
			},
		},
	}

	var parsed solResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post(c.endpoint)
	if err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	if resp.IsError() {
		return nil, types.UpstreamUnavailable(fmt.Sprintf("rpc returned http %d", resp.StatusCode()))
	}
	if parsed.Error != nil {
		return nil, types.UpstreamUnavailable(parsed.Error.Message)
	}

	var tx *solTransaction
	if len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, &tx); err != nil {
			return nil, types.UpstreamUnavailable(err.Error())
		}
	}
	if tx == nil {
		return nil, types.NotFound(types.MsgTxNotFound)
	}
	if tx.Meta != nil && tx.Meta.Err != nil {
		return nil, types.OnChainFailure(types.MsgTxFailed)
	}

	recipientIdx := -1
	for i, key := range tx.Transaction.Message.AccountKeys {
		if key.Pubkey == req.RecipientAddress {
			recipientIdx = i
			break
		}
	}
	if recipientIdx < 0 {
		return nil, types.RecipientMismatch(types.MsgRecipientNotInAccounts)
	}

	amount, err := c.resolveAmount(tx, recipientIdx, req.ExpectedAmount)
	if err != nil {
		return nil, err
	}

	sender := ""
	if len(tx.Transaction.Message.AccountKeys) > 0 {
		sender = tx.Transaction.Message.AccountKeys[0].Pubkey
	}

	return &types.ChainTransaction{
		Found:          true,
		Succeeded:      true,
		Sender:         sender,
		Recipient:      req.RecipientAddress,
		Amount:         amount,
		BlockConfirmed: tx.Slot != 0,
	}, nil
}

func (c *SolanaClient) resolveAmount(tx *solTransaction, recipientIdx int, expected *decimal.Decimal) (decimal.Decimal, error) {
	if !c.strictAmount {
		// Pass-through mode: account-key presence is accepted as evidence of
		// payment and the caller's claimed amount is echoed back.
		if expected != nil {
			return *expected, nil
		}
		return decimal.Zero, nil
	}

	if tx.Meta == nil ||
		recipientIdx >= len(tx.Meta.PreBalances) ||
		recipientIdx >= len(tx.Meta.PostBalances) {
		return decimal.Zero, types.UpstreamUnavailable("transaction metadata missing balance data")
	}

	delta := tx.Meta.PostBalances[recipientIdx] - tx.Meta.PreBalances[recipientIdx]
	amount := utils.FromBaseUnitsInt64(delta, utils.LamportDecimals)

	if expected != nil && !utils.WithinTolerance(*expected, amount) {
		return decimal.Zero, types.AmountInsufficient(fmt.Sprintf(
			"Transferred amount (%s) less than expected (%s)",
			amount, expected,
		))
	}
	return amount, nil
}
