package ledger

import (
	"context"
	"fmt"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/haki-platform/haki-backend/internal/logger"
)

// HoldFunds moves the bounty total from the funder's account into the
// platform escrow account. One signed transfer, one receipt; a failure here
// means nothing was committed and the caller must not create local state.
func (c *Client) HoldFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasEscrow {
		return "", fmt.Errorf("ledger: escrow account is not configured")
	}

	funder, err := hedera.AccountIDFromString(funderAccount)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid funder account %q: %w", funderAccount, err)
	}

	resp, err := hedera.NewTransferTransaction().
		AddHbarTransfer(funder, hedera.NewHbar(-amount)).
		AddHbarTransfer(c.escrowID, hedera.NewHbar(amount)).
		SetTransactionMemo(memo).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: hold funds: %w", err)
	}

	txID, err := c.confirm(resp, "hold funds")
	if err != nil {
		return "", err
	}

	logger.Log.WithField("tx_id", txID).Info("ledger: escrow funded")
	return txID, nil
}

// ReleaseFunds pays a milestone amount from the escrow account to the
// lawyer's account. The escrow account key countersigns the transfer.
func (c *Client) ReleaseFunds(ctx context.Context, lawyerAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasEscrow {
		return "", fmt.Errorf("ledger: escrow account is not configured")
	}

	lawyer, err := hedera.AccountIDFromString(lawyerAccount)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid lawyer account %q: %w", lawyerAccount, err)
	}

	tx, err := hedera.NewTransferTransaction().
		AddHbarTransfer(c.escrowID, hedera.NewHbar(-amount)).
		AddHbarTransfer(lawyer, hedera.NewHbar(amount)).
		SetTransactionMemo(memo).
		FreezeWith(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: release funds freeze: %w", err)
	}

	resp, err := tx.Sign(c.escrowKey).Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: release funds: %w", err)
	}

	txID, err := c.confirm(resp, "release funds")
	if err != nil {
		return "", err
	}

	logger.Log.WithField("tx_id", txID).Info("ledger: milestone released")
	return txID, nil
}

// RefundFunds returns the remaining escrow balance to the funder.
func (c *Client) RefundFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasEscrow {
		return "", fmt.Errorf("ledger: escrow account is not configured")
	}

	funder, err := hedera.AccountIDFromString(funderAccount)
	if err != nil {
		return "", fmt.Errorf("ledger: invalid funder account %q: %w", funderAccount, err)
	}

	tx, err := hedera.NewTransferTransaction().
		AddHbarTransfer(c.escrowID, hedera.NewHbar(-amount)).
		AddHbarTransfer(funder, hedera.NewHbar(amount)).
		SetTransactionMemo(memo).
		FreezeWith(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: refund freeze: %w", err)
	}

	resp, err := tx.Sign(c.escrowKey).Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: refund: %w", err)
	}

	txID, err := c.confirm(resp, "refund")
	if err != nil {
		return "", err
	}

	logger.Log.WithField("tx_id", txID).Info("ledger: escrow refunded")
	return txID, nil
}
