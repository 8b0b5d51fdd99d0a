// Package config loads the chain endpoint and policy configuration from a
// yaml file and the environment. Defaults point at public mainnet endpoints.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EthereumConfig covers both the native and the token adapter.
type EthereumConfig struct {
	RPCURL          string   `yaml:"rpc_url"`
	FallbackRPCURLs []string `yaml:"fallback_rpc_urls"`
	TokenContract   string   `yaml:"token_contract"`
	TokenDecimals   int32    `yaml:"token_decimals"`
}

type BitcoinConfig struct {
	ExplorerURL      string `yaml:"explorer_url"`
	MinConfirmations int    `yaml:"min_confirmations"`
}

type SolanaConfig struct {
	RPCURL string `yaml:"rpc_url"`

	// StrictAmount switches the Solana adapter from echoing the caller's
	// claimed amount to computing the recipient's actual balance delta.
	StrictAmount bool `yaml:"strict_amount"`
}

type Config struct {
	Ethereum EthereumConfig `yaml:"ethereum"`
	Bitcoin  BitcoinConfig  `yaml:"bitcoin"`
	Solana   SolanaConfig   `yaml:"solana"`

	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogLevel       string `yaml:"log_level"`
	EnableMetrics  bool   `yaml:"enable_metrics"`
}

// Default returns the configuration used when nothing is provided: public
// mainnet endpoints and the mainnet USDT contract.
func Default() *Config {
	return &Config{
		Ethereum: EthereumConfig{
			RPCURL: "https://ethereum.publicnode.com",
			FallbackRPCURLs: []string{
				"https://rpc.ankr.com/eth",
				"https://eth.llamarpc.com",
				"https://cloudflare-eth.com",
			},
			TokenContract: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			TokenDecimals: 6,
		},
		Bitcoin: BitcoinConfig{
			ExplorerURL:      "https://blockstream.info/api",
			MinConfirmations: 0,
		},
		Solana: SolanaConfig{
			RPCURL:       "https://api.mainnet-beta.solana.com",
			StrictAmount: false,
		},
		TimeoutSeconds: 30,
		LogLevel:       "info",
	}
}

// Load reads a yaml file over the defaults and then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ETH_RPC_URL"); v != "" {
		c.Ethereum.RPCURL = v
	}
	if v := os.Getenv("ETH_FALLBACK_RPC_URLS"); v != "" {
		urls := strings.Split(v, ",")
		for i := range urls {
			urls[i] = strings.TrimSpace(urls[i])
		}
		c.Ethereum.FallbackRPCURLs = urls
	}
	if v := os.Getenv("USDT_CONTRACT_ADDRESS"); v != "" {
		c.Ethereum.TokenContract = v
	}
	if v := os.Getenv("BTC_EXPLORER_URL"); v != "" {
		c.Bitcoin.ExplorerURL = v
	}
	if v := os.Getenv("BTC_MIN_CONFIRMATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Bitcoin.MinConfirmations = n
		}
	}
	if v := os.Getenv("SOL_RPC_URL"); v != "" {
		c.Solana.RPCURL = v
	}
	if v := os.Getenv("SOL_STRICT_AMOUNT"); v != "" {
		c.Solana.StrictAmount = v == "true" || v == "1"
	}
	if v := os.Getenv("VERIFY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ENABLE_METRICS"); v != "" {
		c.EnableMetrics = v == "true" || v == "1"
	}
}

// Timeout returns the per-verification deadline.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
