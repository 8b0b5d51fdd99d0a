package clients

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-labs/chainproof/rpc"
	"github.com/paygate-labs/chainproof/types"
)

// Pinned canonical ERC-20 Transfer signature; the computed topic must never
// drift from it.
func TestTransferEventTopic(t *testing.T) {
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		TransferEventTopic.Hex(),
	)
}

func addressTopic(addr string) string {
	return "0x000000000000000000000000" + strings.ToLower(strings.TrimPrefix(addr, "0x"))
}

func amountData(units int64) string {
	return fmt.Sprintf("0x%064x", units)
}

func tokenTransferLog(contract, from, to string, units int64) map[string]any {
	return map[string]any{
		"address": contract,
		"topics": []string{
			TransferEventTopic.Hex(),
			addressTopic(from),
			addressTopic(to),
		},
		"data": amountData(units),
	}
}

func newTokenClient(t *testing.T, endpoint string) *TokenClient {
	t.Helper()
	transport, err := rpc.NewFailoverClient(endpoint, nil, 0, nil)
	require.NoError(t, err)
	return NewTokenClient(transport, DefaultUSDTContract, 6)
}

func usdtRequest(expected string) *types.VerificationRequest {
	req := &types.VerificationRequest{
		Currency:         "USDT",
		TxHash:           testTxHash,
		RecipientAddress: testRecipient,
	}
	if expected != "" {
		d := decimal.RequireFromString(expected)
		req.ExpectedAmount = &d
	}
	return req
}

func receiptWithLogs(logs ...map[string]any) map[string]any {
	return map[string]any{
		"status":      "0x1",
		"blockNumber": "0x10",
		"logs":        logs,
	}
}

func TestTokenClient_ReceiptNotFound(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{})
	defer srv.Close()

	_, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	assertVerifyError(t, err, types.CodeNotFound, types.MsgReceiptNotFound)
}

func TestTokenClient_FailedOnChain(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{"status": "0x0"},
	})
	defer srv.Close()

	_, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	assertVerifyError(t, err, types.CodeOnChainFailure, types.MsgTxFailedOnChain)
}

func TestTokenClient_NoTransferEvent(t *testing.T) {
	// A successful receipt whose only log comes from an unrelated contract.
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": receiptWithLogs(
			tokenTransferLog(otherAddress, testSender, testRecipient, 100_000_000),
		),
	})
	defer srv.Close()

	_, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	assertVerifyError(t, err, types.CodeNotFound, types.MsgTransferEventNotFound)
}

func TestTokenClient_RecipientMismatch(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": receiptWithLogs(
			tokenTransferLog(DefaultUSDTContract, testSender, otherAddress, 100_000_000),
		),
	})
	defer srv.Close()

	_, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	assertVerifyError(t, err, types.CodeRecipientMismatch, types.MsgRecipientMismatch)
}

func TestTokenClient_PrefersLogPayingExpectedRecipient(t *testing.T) {
	// Two transfers in one transaction; the one paying the expected
	// recipient wins even when it is not first.
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": receiptWithLogs(
			tokenTransferLog(DefaultUSDTContract, testSender, otherAddress, 5_000_000),
			tokenTransferLog(DefaultUSDTContract, testSender, testRecipient, 100_000_000),
		),
	})
	defer srv.Close()

	tx, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	require.NoError(t, err)
	assert.Equal(t, "100", tx.Amount.String())
	assert.Equal(t, testSender, tx.Sender)
	assert.Equal(t, testRecipient, tx.Recipient)
}

func TestTokenClient_AmountWithinTolerance(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": receiptWithLogs(
			tokenTransferLog(DefaultUSDTContract, testSender, testRecipient, 99_990_000), // 99.99
		),
	})
	defer srv.Close()

	tx, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest("100"))
	require.NoError(t, err)
	assert.Equal(t, "99.99", tx.Amount.String())
}

func TestTokenClient_AmountBeyondTolerance(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": receiptWithLogs(
			tokenTransferLog(DefaultUSDTContract, testSender, testRecipient, 99_980_000), // 99.98
		),
	})
	defer srv.Close()

	_, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest("100"))
	require.Error(t, err)
	verr, ok := err.(*types.VerifyError)
	require.True(t, ok)
	assert.Equal(t, types.CodeAmountInsufficient, verr.Code)
	assert.Contains(t, verr.Message, "less than expected")
}

func TestTokenClient_MissingStatusLeniency(t *testing.T) {
	srv := ethRPCServer(t, map[string]any{
		"eth_getTransactionReceipt": map[string]any{
			"blockNumber": "0x10",
			"logs": []map[string]any{
				tokenTransferLog(DefaultUSDTContract, testSender, testRecipient, 100_000_000),
			},
		},
	})
	defer srv.Close()

	tx, err := newTokenClient(t, srv.URL).VerifyPayment(context.Background(), usdtRequest(""))
	require.NoError(t, err)
	assert.True(t, tx.Succeeded)
}
