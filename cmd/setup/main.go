// Command setup provisions the platform's on-ledger resources: the reputation
// token, the audit topic and token associations for platform managed accounts.
// It runs once against an operator account; the printed identifiers go into
// the server environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/haki-platform/haki-backend/internal/config"
	"github.com/haki-platform/haki-backend/internal/ledger"
	"github.com/haki-platform/haki-backend/internal/logger"
)

// bootstrapLedger is the slice of ledger operations the setup command drives.
type bootstrapLedger interface {
	CreateReputationToken(ctx context.Context, name, symbol string) (string, error)
	CreateAuditTopic(ctx context.Context, memo string) (string, error)
	AssociateReputation(ctx context.Context, account, accountKey string) (string, error)
	BurnReputation(ctx context.Context, units int64) (string, error)
}

type options struct {
	createToken  bool
	tokenName    string
	tokenSymbol  string
	createTopic  bool
	topicMemo    string
	associate    string
	associateKey string
	burn         int64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts options
	flag.BoolVar(&opts.createToken, "create-token", false, "create the reputation token")
	flag.StringVar(&opts.tokenName, "token-name", "Haki Reputation", "reputation token name")
	flag.StringVar(&opts.tokenSymbol, "token-symbol", "HAKIREP", "reputation token symbol")
	flag.BoolVar(&opts.createTopic, "create-topic", false, "create the audit topic")
	flag.StringVar(&opts.topicMemo, "topic-memo", "haki document analysis audit", "audit topic memo")
	flag.StringVar(&opts.associate, "associate", "", "account id to associate with the reputation token")
	flag.StringVar(&opts.associateKey, "associate-key", "", "private key of the account being associated")
	flag.Int64Var(&opts.burn, "burn", 0, "burn this many reputation units from the treasury")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("setup: failed to load configuration: %v", err)
	}
	if !cfg.EnableBlockchain {
		log.Fatalf("setup: ENABLE_BLOCKCHAIN must be on to provision ledger resources")
	}

	logger.Init("info")
	logger.SetTextFormatter()

	client, err := ledger.NewClient(cfg)
	if err != nil {
		log.Fatalf("setup: failed to initialize hedera client: %v", err)
	}
	defer client.Close()

	if err := run(ctx, client, opts, os.Stdout); err != nil {
		log.Fatalf("setup: %v", err)
	}
}

// run executes the requested provisioning steps in a fixed order and prints
// the environment variables the server needs.
func run(ctx context.Context, lgr bootstrapLedger, opts options, out io.Writer) error {
	if !opts.createToken && !opts.createTopic && opts.associate == "" && opts.burn == 0 {
		return fmt.Errorf("nothing to do, pass -create-token, -create-topic, -associate or -burn")
	}

	if opts.createToken {
		tokenID, err := lgr.CreateReputationToken(ctx, opts.tokenName, opts.tokenSymbol)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "HEDERA_REPUTATION_TOKEN_ID=%s\n", tokenID)
	}

	if opts.createTopic {
		topicID, err := lgr.CreateAuditTopic(ctx, opts.topicMemo)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "HEDERA_AUDIT_TOPIC_ID=%s\n", topicID)
	}

	if opts.associate != "" {
		if opts.associateKey == "" {
			return fmt.Errorf("-associate requires -associate-key")
		}
		txID, err := lgr.AssociateReputation(ctx, opts.associate, opts.associateKey)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "associated %s (tx %s)\n", opts.associate, txID)
	}

	if opts.burn != 0 {
		if opts.burn < 0 {
			return fmt.Errorf("-burn expects a positive amount")
		}
		txID, err := lgr.BurnReputation(ctx, opts.burn)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "burned %d units (tx %s)\n", opts.burn, txID)
	}

	return nil
}
