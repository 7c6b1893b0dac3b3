package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

var (
	// ErrEscrowNotFound is returned when no escrow record matches.
	ErrEscrowNotFound = errors.New("escrow not found")
	// ErrEscrowExists is returned when the bounty already has an escrow.
	ErrEscrowExists = errors.New("escrow already exists for this bounty")
)

// EscrowRepository persists escrows and their milestones. All transitions go
// through a transaction with a version guard, so two sessions mutating the
// same escrow cannot both win.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository creates the repository.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Create inserts the escrow together with its milestones.
func (r *EscrowRepository) Create(ctx context.Context, escrow *models.Escrow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("escrow repository: begin %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM escrows WHERE bounty_id = $1)`, escrow.BountyID); err != nil {
		return fmt.Errorf("escrow repository: check bounty %w", err)
	}
	if exists {
		return ErrEscrowExists
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO escrows (id, bounty_id, funder_id, total_amount, released_amount, status, version, ledger_tx_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, escrow.ID, escrow.BountyID, escrow.FunderID, escrow.TotalAmount, escrow.ReleasedAmount,
		escrow.Status, escrow.Version, escrow.LedgerTxID, escrow.CreatedAt, escrow.UpdatedAt)
	if err != nil {
		return fmt.Errorf("escrow repository: insert escrow %w", err)
	}

	for _, m := range escrow.Milestones {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO milestones (id, escrow_id, position, amount, description, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, m.ID, m.EscrowID, m.Position, m.Amount, m.Description, m.Status)
		if err != nil {
			return fmt.Errorf("escrow repository: insert milestone %w", err)
		}
	}

	return tx.Commit()
}

// GetByID returns an escrow with its milestones in creation order.
func (r *EscrowRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return r.getBy(ctx, "id", id)
}

// GetByBountyID returns the escrow funding a bounty.
func (r *EscrowRepository) GetByBountyID(ctx context.Context, bountyID uuid.UUID) (*models.Escrow, error) {
	return r.getBy(ctx, "bounty_id", bountyID)
}

func (r *EscrowRepository) getBy(ctx context.Context, field string, value uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	query := fmt.Sprintf(`
		SELECT id, bounty_id, funder_id, total_amount, released_amount, status, version, ledger_tx_id, created_at, updated_at, refunded_at
		FROM escrows
		WHERE %s = $1
	`, field)
	if err := r.db.GetContext(ctx, &escrow, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("escrow repository: get by %s %w", field, err)
	}

	if err := r.db.SelectContext(ctx, &escrow.Milestones, `
		SELECT id, escrow_id, position, amount, description, status, released_at
		FROM milestones
		WHERE escrow_id = $1
		ORDER BY position
	`, escrow.ID); err != nil {
		return nil, fmt.Errorf("escrow repository: load milestones %w", err)
	}

	return &escrow, nil
}

// SaveTransition persists a mutated escrow. expectedVersion is the version
// the caller read before applying the transition; if the stored row has
// moved past it the write is rejected with apperror.ErrVersionConflict.
func (r *EscrowRepository) SaveTransition(ctx context.Context, escrow *models.Escrow, expectedVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("escrow repository: begin %w", err)
	}
	defer tx.Rollback()

	// Lock the row so the version check and the update are one step.
	var current int64
	err = tx.GetContext(ctx, &current,
		`SELECT version FROM escrows WHERE id = $1 FOR UPDATE`, escrow.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEscrowNotFound
		}
		return fmt.Errorf("escrow repository: lock escrow %w", err)
	}
	if current != expectedVersion {
		return apperror.ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE escrows
		SET released_amount = $2, status = $3, version = $4, ledger_tx_id = $5, updated_at = $6, refunded_at = $7
		WHERE id = $1
	`, escrow.ID, escrow.ReleasedAmount, escrow.Status, escrow.Version,
		escrow.LedgerTxID, escrow.UpdatedAt, escrow.RefundedAt)
	if err != nil {
		return fmt.Errorf("escrow repository: update escrow %w", err)
	}

	for _, m := range escrow.Milestones {
		_, err = tx.ExecContext(ctx, `
			UPDATE milestones SET status = $2, released_at = $3 WHERE id = $1
		`, m.ID, m.Status, m.ReleasedAt)
		if err != nil {
			return fmt.Errorf("escrow repository: update milestone %w", err)
		}
	}

	return tx.Commit()
}

// ListByFunder returns escrows created by the given NGO user.
func (r *EscrowRepository) ListByFunder(ctx context.Context, funderID uuid.UUID, limit, offset int) ([]models.Escrow, error) {
	var escrows []models.Escrow
	err := r.db.SelectContext(ctx, &escrows, `
		SELECT id, bounty_id, funder_id, total_amount, released_amount, status, version, ledger_tx_id, created_at, updated_at, refunded_at
		FROM escrows
		WHERE funder_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, funderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: list by funder %w", err)
	}
	return escrows, nil
}
