package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/utils"
)

// Blockstream-style explorer endpoints. UTXO chains expose transaction detail
// well over REST, so no RPC node is needed.
const (
	BTCMainnetExplorer = "https://blockstream.info/api"
	BTCTestnetExplorer = "https://blockstream.info/testnet/api"
)

var _ Client = (*BitcoinClient)(nil)

// BitcoinClient verifies BTC payments through a block-explorer transaction
// endpoint.
type BitcoinClient struct {
	http             *resty.Client
	minConfirmations int
}

// NewBitcoinClient builds a Bitcoin adapter over the given explorer base URL.
// minConfirmations sets the settlement policy: 0 accepts a transaction as
// soon as the explorer reports a containing block.
func NewBitcoinClient(baseURL string, minConfirmations int, timeout time.Duration) *BitcoinClient {
	if baseURL == "" {
		baseURL = BTCMainnetExplorer
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BitcoinClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		minConfirmations: minConfirmations,
	}
}

func (c *BitcoinClient) Currency() types.Currency { return types.CurrencyBTC }

func (c *BitcoinClient) Close() {}

// explorerTx is the explorer's transaction detail shape. Output values are
// reported in satoshis.
type explorerTx struct {
	TxID string `json:"txid"`
	Vout []struct {
		ScriptPubKeyAddress string `json:"scriptpubkey_address"`
		Value               int64  `json:"value"`
	} `json:"vout"`
	Status struct {
		Confirmed   bool   `json:"confirmed"`
		BlockHeight *int64 `json:"block_height"`
	} `json:"status"`
}

func (c *BitcoinClient) VerifyPayment(ctx context.Context, req *types.VerificationRequest) (*types.ChainTransaction, error) {
	var tx explorerTx
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&tx).
		Get("/tx/" + req.TxHash)
	if err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, types.NotFound(types.MsgTxNotFound)
	}
	if resp.IsError() {
		return nil, types.UpstreamUnavailable(fmt.Sprintf("explorer returned http %d", resp.StatusCode()))
	}

	// A transaction may pay the recipient across several outputs; the
	// credited amount is their sum, not the first match.
	var totalSats int64
	for _, out := range tx.Vout {
		if out.ScriptPubKeyAddress == req.RecipientAddress {
			totalSats += out.Value
		}
	}
	if totalSats == 0 {
		return nil, types.RecipientMismatch(types.MsgRecipientNotInOutputs)
	}

	confirmed := tx.Status.BlockHeight != nil
	if c.minConfirmations > 0 && !confirmed {
		return nil, types.OnChainFailure("Transaction not yet confirmed")
	}

	return &types.ChainTransaction{
		Found:          true,
		Succeeded:      true,
		Recipient:      req.RecipientAddress,
		Amount:         utils.FromBaseUnitsInt64(totalSats, utils.SatoshiDecimals),
		BlockConfirmed: confirmed,
	}, nil
}
