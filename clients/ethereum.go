package clients

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/paygate-labs/chainproof/rpc"
	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/utils"
)

var _ Client = (*EthereumClient)(nil)

// EthereumClient verifies native ETH transfers by inspecting the transaction
// envelope over JSON-RPC.
type EthereumClient struct {
	rpc *rpc.FailoverClient
}

func NewEthereumClient(transport *rpc.FailoverClient) *EthereumClient {
	return &EthereumClient{rpc: transport}
}

func (c *EthereumClient) Currency() types.Currency { return types.CurrencyETH }

func (c *EthereumClient) Close() {}

// rpcTransaction is the subset of eth_getTransactionByHash we consume.
type rpcTransaction struct {
	Hash        string  `json:"hash"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Value       string  `json:"value"`
	BlockNumber *string `json:"blockNumber"`
}

// rpcReceipt is the subset of eth_getTransactionReceipt we consume. Status is
// a pointer because pre-Byzantium receipts and some non-standard nodes omit
// the field entirely.
type rpcReceipt struct {
	Status      *string  `json:"status"`
	BlockNumber *string  `json:"blockNumber"`
	Logs        []rpcLog `json:"logs"`
}

type rpcLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// receiptSucceeded applies the status leniency rule shared by the native and
// token adapters: a missing status field is treated as success so that legacy
// and non-standard RPC responses keep verifying. Only an explicit non-1
// status marks the transaction as failed.
func receiptSucceeded(receipt *rpcReceipt) bool {
	if receipt == nil || receipt.Status == nil {
		return true
	}
	status, err := utils.ParseHexAmount(*receipt.Status)
	if err != nil {
		return true
	}
	return status.Int64() == 1
}

func (c *EthereumClient) VerifyPayment(ctx context.Context, req *types.VerificationRequest) (*types.ChainTransaction, error) {
	var tx *rpcTransaction
	if err := c.rpc.Call(ctx, "eth_getTransactionByHash", []any{req.TxHash}, &tx); err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	if tx == nil {
		return nil, types.NotFound(types.MsgTxNotFound)
	}

	// Reject real transactions sent to unrelated addresses so a hash cannot
	// be reused against a payment it never made.
	if common.HexToAddress(tx.To) != common.HexToAddress(req.RecipientAddress) {
		return nil, types.RecipientMismatch(types.MsgRecipientMismatch)
	}

	var receipt *rpcReceipt
	if err := c.rpc.Call(ctx, "eth_getTransactionReceipt", []any{req.TxHash}, &receipt); err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	if !receiptSucceeded(receipt) {
		return nil, types.OnChainFailure(types.MsgTxFailedOnChain)
	}

	value, err := utils.ParseHexAmount(tx.Value)
	if err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}

	return &types.ChainTransaction{
		Found:          true,
		Succeeded:      true,
		Sender:         tx.From,
		Recipient:      tx.To,
		Amount:         utils.FromBaseUnits(value, utils.WeiDecimals),
		BlockConfirmed: tx.BlockNumber != nil && *tx.BlockNumber != "",
	}, nil
}
