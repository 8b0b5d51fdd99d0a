package chainproof

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-labs/chainproof/config"
	"github.com/paygate-labs/chainproof/types"
)

const (
	ethTxHash    = "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
	ethSender    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	ethRecipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// ethNode serves a one-transaction Ethereum JSON-RPC fixture.
func ethNode(t *testing.T) *httptest.Server {
	t.Helper()
	results := map[string]any{
		"eth_getTransactionByHash": map[string]any{
			"hash": ethTxHash, "from": ethSender, "to": ethRecipient,
			"value": "0xde0b6b3a7640000", "blockNumber": "0x10",
		},
		"eth_getTransactionReceipt": map[string]any{
			"status": "0x1", "blockNumber": "0x10",
		},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1, "result": results[req.Method],
		})
	}))
}

func testConfig(ethURL string) *config.Config {
	cfg := config.Default()
	cfg.Ethereum.RPCURL = ethURL
	cfg.Ethereum.FallbackRPCURLs = nil
	return cfg
}

func TestNew_EndToEndEthereumVerification(t *testing.T) {
	node := ethNode(t)
	defer node.Close()

	cp, err := New(testConfig(node.URL), WithTimeout(5*time.Second))
	require.NoError(t, err)
	defer cp.Close()

	result := cp.Verify(context.Background(), &types.VerificationRequest{
		Currency:         "ETH",
		TxHash:           ethTxHash,
		RecipientAddress: ethRecipient,
	})
	require.True(t, result.Valid, "error: %s", result.Error)
	assert.Equal(t, "1", result.Amount.String())
	assert.Equal(t, ethSender, result.From)
	assert.Equal(t, ethRecipient, result.To)
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	cp, err := New(nil)
	require.NoError(t, err)
	defer cp.Close()

	assert.Equal(t,
		[]types.Currency{types.CurrencyBTC, types.CurrencyETH, types.CurrencyUSDT, types.CurrencySOL},
		cp.SupportedCurrencies(),
	)
	assert.True(t, cp.IsCurrencySupported("usdt"))
	assert.False(t, cp.IsCurrencySupported("XRP"))
}

func TestNew_RejectsEmptyPrimaryEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Ethereum.RPCURL = ""
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestQuickVerify_NoNetwork(t *testing.T) {
	// QuickVerify must not dial anywhere, so a verifier pointed at an
	// unreachable endpoint still answers.
	cfg := testConfig("http://127.0.0.1:1")
	cp, err := New(cfg)
	require.NoError(t, err)
	defer cp.Close()

	result := cp.QuickVerify(&types.VerificationRequest{
		Currency:         "ETH",
		TxHash:           ethTxHash,
		RecipientAddress: ethRecipient,
	})
	assert.True(t, result.Valid)

	result = cp.QuickVerify(&types.VerificationRequest{
		Currency:         "ETH",
		TxHash:           "garbage",
		RecipientAddress: ethRecipient,
	})
	assert.False(t, result.Valid)
}

func TestBatchVerify_MixedOutcomes(t *testing.T) {
	node := ethNode(t)
	defer node.Close()

	cp, err := New(testConfig(node.URL))
	require.NoError(t, err)
	defer cp.Close()

	results := cp.BatchVerify(context.Background(), []*types.VerificationRequest{
		{Currency: "ETH", TxHash: ethTxHash, RecipientAddress: ethRecipient},
		{Currency: "XRP", TxHash: ethTxHash, RecipientAddress: ethRecipient},
	})
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.Equal(t, types.CodeUnsupportedCurrency, results[1].ErrorCode)
}
