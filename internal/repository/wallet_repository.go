package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haki-platform/haki-backend/internal/models"
)

// WalletRepository records ledger transactions and reputation awards
// locally for listing; the ledger itself stays authoritative.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository creates the repository.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// RecordTransaction stores a submitted ledger transaction.
func (r *WalletRepository) RecordTransaction(ctx context.Context, tx *models.LedgerTransaction) error {
	query := `
		INSERT INTO ledger_transactions (user_id, escrow_id, type, amount, ledger_tx_id, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		tx.UserID, tx.EscrowID, tx.Type, tx.Amount, tx.LedgerTxID, tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt); err != nil {
		return fmt.Errorf("wallet repository: record transaction %w", err)
	}
	return nil
}

// ListTransactions returns the user's transaction history.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LedgerTransaction, error) {
	var transactions []models.LedgerTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, escrow_id, type, amount, ledger_tx_id, description, created_at
		FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list transactions %w", err)
	}
	return transactions, nil
}

// CreateAward stores a reputation-token grant.
func (r *WalletRepository) CreateAward(ctx context.Context, award *models.ReputationAward) error {
	query := `
		INSERT INTO reputation_awards (lawyer_id, bounty_id, points, ledger_tx_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		award.LawyerID, award.BountyID, award.Points, award.LedgerTxID,
	).Scan(&award.ID, &award.CreatedAt); err != nil {
		return fmt.Errorf("wallet repository: create award %w", err)
	}
	return nil
}

// ListAwards returns reputation grants for a lawyer.
func (r *WalletRepository) ListAwards(ctx context.Context, lawyerID uuid.UUID, limit, offset int) ([]models.ReputationAward, error) {
	var awards []models.ReputationAward
	err := r.db.SelectContext(ctx, &awards, `
		SELECT id, lawyer_id, bounty_id, points, ledger_tx_id, created_at
		FROM reputation_awards
		WHERE lawyer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, lawyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: list awards %w", err)
	}
	return awards, nil
}

// TotalPoints sums the reputation points granted to a lawyer.
func (r *WalletRepository) TotalPoints(ctx context.Context, lawyerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(points), 0) FROM reputation_awards WHERE lawyer_id = $1`, lawyerID)
	if err != nil {
		return 0, fmt.Errorf("wallet repository: total points %w", err)
	}
	return total, nil
}
