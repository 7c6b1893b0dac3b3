package ledger

import (
	"context"
	"fmt"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/haki-platform/haki-backend/internal/logger"
)

// CreateReputationToken creates the fungible reputation token with the
// operator as treasury. Run once during platform setup; the resulting token
// ID goes into the environment.
func (c *Client) CreateReputationToken(ctx context.Context, name, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := hedera.NewTokenCreateTransaction().
		SetTokenName(name).
		SetTokenSymbol(symbol).
		SetDecimals(0).
		SetInitialSupply(0).
		SetTreasuryAccountID(c.operatorID).
		SetAdminKey(c.operatorKey.PublicKey()).
		SetSupplyKey(c.operatorKey.PublicKey()).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: create token: %w", err)
	}

	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: create token receipt: %w", err)
	}
	if receipt.Status != hedera.StatusSuccess || receipt.TokenID == nil {
		return "", fmt.Errorf("ledger: create token failed with status %s", receipt.Status)
	}

	logger.Log.WithField("token_id", receipt.TokenID.String()).Info("ledger: reputation token created")
	return receipt.TokenID.String(), nil
}

// MintReputation mints reputation units into the treasury.
func (c *Client) MintReputation(ctx context.Context, units int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasToken {
		return "", fmt.Errorf("ledger: reputation token is not configured")
	}
	if units <= 0 {
		return "", fmt.Errorf("ledger: mint amount must be positive")
	}

	resp, err := hedera.NewTokenMintTransaction().
		SetTokenID(c.tokenID).
		SetAmount(uint64(units)).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: mint: %w", err)
	}

	return c.confirm(resp, "mint")
}

// BurnReputation burns reputation units from the treasury.
func (c *Client) BurnReputation(ctx context.Context, units int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasToken {
		return "", fmt.Errorf("ledger: reputation token is not configured")
	}
	if units <= 0 {
		return "", fmt.Errorf("ledger: burn amount must be positive")
	}

	resp, err := hedera.NewTokenBurnTransaction().
		SetTokenID(c.tokenID).
		SetAmount(uint64(units)).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: burn: %w", err)
	}

	return c.confirm(resp, "burn")
}

// TransferReputation moves reputation units from the treasury to a lawyer's
// account. The account must already be associated with the token.
func (c *Client) TransferReputation(ctx context.Context, toAccount string, units int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasToken {
		return "", fmt.Errorf("ledger: reputation token is not configured")
	}

	to, err := hedera.AccountIDFromString(toAccount)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid account %q: %w", toAccount, err)
	}

	resp, err := hedera.NewTransferTransaction().
		AddTokenTransfer(c.tokenID, c.operatorID, -units).
		AddTokenTransfer(c.tokenID, to, units).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: token transfer: %w", err)
	}

	return c.confirm(resp, "token transfer")
}

// AssociateReputation associates the reputation token with a platform
// managed account so it can receive transfers. Only works for accounts whose
// key the operator controls.
func (c *Client) AssociateReputation(ctx context.Context, account string, accountKey string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasToken {
		return "", fmt.Errorf("ledger: reputation token is not configured")
	}

	accountID, err := hedera.AccountIDFromString(account)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid account %q: %w", account, err)
	}

	key, err := hedera.PrivateKeyFromString(accountKey)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid account key: %w", err)
	}

	tx, err := hedera.NewTokenAssociateTransaction().
		SetAccountID(accountID).
		SetTokenIDs(c.tokenID).
		FreezeWith(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: associate freeze: %w", err)
	}

	resp, err := tx.Sign(key).Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: associate: %w", err)
	}

	return c.confirm(resp, "associate")
}
