// Package ledger wraps the Hedera SDK behind small interfaces so business
// logic never talks to the chain directly. A disabled no-op variant exists
// for deployments without blockchain features; main wires one or the other.
package ledger

import (
	"fmt"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/haki-platform/haki-backend/internal/config"
)

// Client holds the operator-configured Hedera client and the platform
// accounts used for escrow custody, the reputation token and the audit topic.
type Client struct {
	sdk         *hedera.Client
	operatorID  hedera.AccountID
	operatorKey hedera.PrivateKey

	escrowID  hedera.AccountID
	escrowKey hedera.PrivateKey
	hasEscrow bool

	tokenID  hedera.TokenID
	hasToken bool

	topicID  hedera.TopicID
	hasTopic bool
}

// NewClient builds a Hedera client from the environment configuration.
// The operator account signs and pays for every transaction the platform
// submits.
func NewClient(cfg *config.Config) (*Client, error) {
	operatorID, err := hedera.AccountIDFromString(cfg.HederaOperatorID)
	if err != nil {
		return nil, fmt.Errorf("ledger: invalid operator account id: %w", err)
	}

	operatorKey, err := hedera.PrivateKeyFromString(cfg.HederaOperatorKey)
	if err != nil {
		return nil, fmt.Errorf("ledger: invalid operator key: %w", err)
	}

	sdk, err := hedera.ClientForName(cfg.HederaNetwork)
	if err != nil {
		return nil, fmt.Errorf("ledger: unknown network %q: %w", cfg.HederaNetwork, err)
	}
	sdk.SetOperator(operatorID, operatorKey)

	c := &Client{
		sdk:         sdk,
		operatorID:  operatorID,
		operatorKey: operatorKey,
	}

	if cfg.HederaEscrowID != "" {
		c.escrowID, err = hedera.AccountIDFromString(cfg.HederaEscrowID)
		if err != nil {
			return nil, fmt.Errorf("ledger: invalid escrow account id: %w", err)
		}
		c.escrowKey, err = hedera.PrivateKeyFromString(cfg.HederaEscrowKey)
		if err != nil {
			return nil, fmt.Errorf("ledger: invalid escrow account key: %w", err)
		}
		c.hasEscrow = true
	}

	if cfg.HederaTokenID != "" {
		c.tokenID, err = hedera.TokenIDFromString(cfg.HederaTokenID)
		if err != nil {
			return nil, fmt.Errorf("ledger: invalid reputation token id: %w", err)
		}
		c.hasToken = true
	}

	if cfg.HederaTopicID != "" {
		c.topicID, err = hedera.TopicIDFromString(cfg.HederaTopicID)
		if err != nil {
			return nil, fmt.Errorf("ledger: invalid audit topic id: %w", err)
		}
		c.hasTopic = true
	}

	return c, nil
}

// Close shuts down the underlying SDK client.
func (c *Client) Close() error {
	return c.sdk.Close()
}

// confirm waits for the receipt of a submitted transaction and checks it
// reached consensus successfully.
func (c *Client) confirm(resp hedera.TransactionResponse, op string) (string, error) {
	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: %s receipt: %w", op, err)
	}
	if receipt.Status != hedera.StatusSuccess {
		return "", fmt.Errorf("ledger: %s failed with status %s", op, receipt.Status)
	}
	return resp.TransactionID.String(), nil
}
