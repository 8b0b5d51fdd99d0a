// Command chainproof verifies a single on-chain payment from the command
// line and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/paygate-labs/chainproof"
	"github.com/paygate-labs/chainproof/config"
	"github.com/paygate-labs/chainproof/logger"
	"github.com/paygate-labs/chainproof/types"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "path to yaml config (optional)")
		currency   = flag.String("currency", "", "currency code: BTC, ETH, USDT or SOL")
		txHash     = flag.String("tx", "", "transaction hash to verify")
		recipient  = flag.String("to", "", "expected recipient address")
		amount     = flag.String("amount", "", "expected amount in human units (optional)")
		quick      = flag.Bool("quick", false, "syntax checks only, no network calls")
	)
	flag.Parse()

	if *currency == "" || *txHash == "" || *recipient == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	verifier, err := chainproof.New(cfg, chainproof.WithLogger(logger.NewZapLogger(cfg.LogLevel)))
	if err != nil {
		log.Fatalf("init verifier: %v", err)
	}
	defer verifier.Close()

	req := &types.VerificationRequest{
		Currency:         *currency,
		TxHash:           *txHash,
		RecipientAddress: *recipient,
	}
	if *amount != "" {
		d, err := decimal.NewFromString(*amount)
		if err != nil {
			log.Fatalf("invalid amount %q: %v", *amount, err)
		}
		req.ExpectedAmount = &d
	}

	var result *types.VerificationResult
	if *quick {
		result = verifier.QuickVerify(req)
	} else {
		result = verifier.Verify(context.Background(), req)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Valid {
		os.Exit(1)
	}
}
