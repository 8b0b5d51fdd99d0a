package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/paygate-labs/chainproof/rpc"
	"github.com/paygate-labs/chainproof/types"
	"github.com/paygate-labs/chainproof/utils"
)

// DefaultUSDTContract is the mainnet USDT token contract.
const DefaultUSDTContract = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

// TransferEventTopic is the canonical ERC-20 Transfer event signature,
// keccak256("Transfer(address,address,uint256)").
var TransferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var _ Client = (*TokenClient)(nil)

// TokenClient verifies ERC-20 token transfers. Unlike the native adapter it
// reads the receipt's event logs: the to/value fields of a token transfer
// transaction point at the token contract, not the payment recipient.
type TokenClient struct {
	rpc      *rpc.FailoverClient
	contract common.Address
	decimals int32
}

// NewTokenClient builds a token adapter for the given contract address. An
// empty contract falls back to mainnet USDT; decimals must match the deployed
// contract exactly (6 for USDT).
func NewTokenClient(transport *rpc.FailoverClient, contract string, decimals int32) *TokenClient {
	if contract == "" {
		contract = DefaultUSDTContract
	}
	if decimals <= 0 {
		decimals = utils.USDTDecimals
	}
	return &TokenClient{
		rpc:      transport,
		contract: common.HexToAddress(contract),
		decimals: decimals,
	}
}

func (c *TokenClient) Currency() types.Currency { return types.CurrencyUSDT }

func (c *TokenClient) Close() {}

func (c *TokenClient) VerifyPayment(ctx context.Context, req *types.VerificationRequest) (*types.ChainTransaction, error) {
	var receipt *rpcReceipt
	if err := c.rpc.Call(ctx, "eth_getTransactionReceipt", []any{req.TxHash}, &receipt); err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	if receipt == nil {
		return nil, types.NotFound(types.MsgReceiptNotFound)
	}
	if !receiptSucceeded(receipt) {
		return nil, types.OnChainFailure(types.MsgTxFailedOnChain)
	}

	matching := make([]rpcLog, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		if len(log.Topics) < 3 {
			continue
		}
		if !strings.EqualFold(log.Topics[0], TransferEventTopic.Hex()) {
			continue
		}
		if common.HexToAddress(log.Address) != c.contract {
			continue
		}
		matching = append(matching, log)
	}
	if len(matching) == 0 {
		return nil, types.NotFound(types.MsgTransferEventNotFound)
	}

	// A single transaction can emit several transfers (multicalls, router
	// contracts). Prefer the log paying the expected recipient; fall back to
	// the first candidate and let the explicit recipient check below reject
	// it if it still points elsewhere.
	expectedTo := common.HexToAddress(req.RecipientAddress)
	transferLog := matching[0]
	for _, log := range matching {
		if topicAddress(log.Topics[2]) == expectedTo {
			transferLog = log
			break
		}
	}

	if topicAddress(transferLog.Topics[2]) != expectedTo {
		return nil, types.RecipientMismatch(types.MsgRecipientMismatch)
	}

	raw, err := utils.ParseHexAmount(transferLog.Data)
	if err != nil {
		return nil, types.UpstreamUnavailable(err.Error())
	}
	amount := utils.FromBaseUnits(raw, c.decimals)

	if req.ExpectedAmount != nil && !utils.WithinTolerance(*req.ExpectedAmount, amount) {
		return nil, types.AmountInsufficient(fmt.Sprintf(
			"Transferred amount (%s) less than expected (%s)",
			amount, req.ExpectedAmount,
		))
	}

	return &types.ChainTransaction{
		Found:          true,
		Succeeded:      true,
		Sender:         topicAddress(transferLog.Topics[1]).Hex(),
		Recipient:      req.RecipientAddress,
		Amount:         amount,
		BlockConfirmed: receipt.BlockNumber != nil && *receipt.BlockNumber != "",
	}, nil
}

// topicAddress decodes an address from an indexed event topic: the address
// occupies the last 20 bytes of the 32-byte topic.
func topicAddress(topic string) common.Address {
	return common.HexToAddress(topic)
}
