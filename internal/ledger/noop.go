package ledger

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/haki-platform/haki-backend/internal/logger"
)

// Noop is the ledger implementation selected when blockchain features are
// disabled. Operations succeed locally and return synthetic transaction
// identifiers, so the rest of the system behaves identically in both modes.
type Noop struct {
	seq atomic.Int64
}

// NewNoop creates the disabled-mode ledger.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) txID(op string) string {
	return fmt.Sprintf("local-%s-%d-%d", op, time.Now().UnixNano(), n.seq.Add(1))
}

func (n *Noop) HoldFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	txID := n.txID("hold")
	logger.Log.WithField("tx_id", txID).Debug("ledger disabled: hold recorded locally")
	return txID, nil
}

func (n *Noop) ReleaseFunds(ctx context.Context, lawyerAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	txID := n.txID("release")
	logger.Log.WithField("tx_id", txID).Debug("ledger disabled: release recorded locally")
	return txID, nil
}

func (n *Noop) RefundFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	txID := n.txID("refund")
	logger.Log.WithField("tx_id", txID).Debug("ledger disabled: refund recorded locally")
	return txID, nil
}

func (n *Noop) MintReputation(ctx context.Context, units int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.txID("mint"), nil
}

func (n *Noop) TransferReputation(ctx context.Context, toAccount string, units int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.txID("transfer"), nil
}

func (n *Noop) SubmitAuditMessage(ctx context.Context, message []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return n.txID("audit"), nil
}
