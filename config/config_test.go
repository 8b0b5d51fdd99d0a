package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://ethereum.publicnode.com", cfg.Ethereum.RPCURL)
	assert.Len(t, cfg.Ethereum.FallbackRPCURLs, 3)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", cfg.Ethereum.TokenContract)
	assert.Equal(t, int32(6), cfg.Ethereum.TokenDecimals)
	assert.Equal(t, "https://blockstream.info/api", cfg.Bitcoin.ExplorerURL)
	assert.Equal(t, 0, cfg.Bitcoin.MinConfirmations)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.Solana.RPCURL)
	assert.False(t, cfg.Solana.StrictAmount)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ethereum:
  rpc_url: https://eth.example.com
bitcoin:
  min_confirmations: 2
solana:
  strict_amount: true
timeout_seconds: 5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://eth.example.com", cfg.Ethereum.RPCURL)
	assert.Equal(t, 2, cfg.Bitcoin.MinConfirmations)
	assert.True(t, cfg.Solana.StrictAmount)
	assert.Equal(t, 5*time.Second, cfg.Timeout())

	// Untouched sections keep their defaults.
	assert.Equal(t, "https://blockstream.info/api", cfg.Bitcoin.ExplorerURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "https://eth.internal")
	t.Setenv("ETH_FALLBACK_RPC_URLS", "https://a.example.com, https://b.example.com")
	t.Setenv("BTC_MIN_CONFIRMATIONS", "3")
	t.Setenv("SOL_STRICT_AMOUNT", "true")
	t.Setenv("VERIFY_TIMEOUT_SECONDS", "12")

	cfg := FromEnv()
	assert.Equal(t, "https://eth.internal", cfg.Ethereum.RPCURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Ethereum.FallbackRPCURLs)
	assert.Equal(t, 3, cfg.Bitcoin.MinConfirmations)
	assert.True(t, cfg.Solana.StrictAmount)
	assert.Equal(t, 12*time.Second, cfg.Timeout())
}

func TestEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("BTC_MIN_CONFIRMATIONS", "-1")
	t.Setenv("VERIFY_TIMEOUT_SECONDS", "abc")

	cfg := FromEnv()
	assert.Equal(t, 0, cfg.Bitcoin.MinConfirmations)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestEnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ethereum:\n  rpc_url: https://from-yaml.example.com\n"), 0o600))
	t.Setenv("ETH_RPC_URL", "https://from-env.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.com", cfg.Ethereum.RPCURL)
}
