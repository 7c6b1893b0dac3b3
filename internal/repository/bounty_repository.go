package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haki-platform/haki-backend/internal/models"
)

// ErrBountyNotFound is returned when no bounty record matches.
var ErrBountyNotFound = errors.New("bounty not found")

// BountyRepository works with the bounties table.
type BountyRepository struct {
	db *sqlx.DB
}

// NewBountyRepository creates the repository.
func NewBountyRepository(db *sqlx.DB) *BountyRepository {
	return &BountyRepository{db: db}
}

// Create inserts a new bounty.
func (r *BountyRepository) Create(ctx context.Context, bounty *models.Bounty) error {
	query := `
		INSERT INTO bounties (ngo_id, title, description, category, required_skills, location, total_amount, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		bounty.NGOID, bounty.Title, bounty.Description, bounty.Category,
		bounty.RequiredSkills, bounty.Location, bounty.TotalAmount,
		bounty.Status, bounty.DueDate,
	).Scan(&bounty.ID, &bounty.CreatedAt, &bounty.UpdatedAt); err != nil {
		return fmt.Errorf("bounty repository: create %w", err)
	}
	return nil
}

// GetByID returns a bounty by identifier.
func (r *BountyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	var bounty models.Bounty
	query := `
		SELECT id, ngo_id, assigned_lawyer_id, title, description, category, required_skills, location, total_amount, status, due_date, created_at, updated_at
		FROM bounties
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &bounty, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBountyNotFound
		}
		return nil, fmt.Errorf("bounty repository: get by id %w", err)
	}
	return &bounty, nil
}

// List returns bounties matching the filter, newest first.
func (r *BountyRepository) List(ctx context.Context, filter models.BountyFilter) ([]models.Bounty, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", idx))
		args = append(args, filter.Category)
		idx++
	}
	if filter.NGOID != nil {
		conditions = append(conditions, fmt.Sprintf("ngo_id = $%d", idx))
		args = append(args, *filter.NGOID)
		idx++
	}
	if filter.LawyerID != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_lawyer_id = $%d", idx))
		args = append(args, *filter.LawyerID)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT id, ngo_id, assigned_lawyer_id, title, description, category, required_skills, location, total_amount, status, due_date, created_at, updated_at
		FROM bounties
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), idx, idx+1)

	var bounties []models.Bounty
	if err := r.db.SelectContext(ctx, &bounties, query, args...); err != nil {
		return nil, fmt.Errorf("bounty repository: list %w", err)
	}
	return bounties, nil
}

// Update stores editable bounty fields.
func (r *BountyRepository) Update(ctx context.Context, bounty *models.Bounty) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bounties
		SET title = $2, description = $3, category = $4, required_skills = $5, location = $6, total_amount = $7, due_date = $8, updated_at = NOW()
		WHERE id = $1
	`, bounty.ID, bounty.Title, bounty.Description, bounty.Category,
		bounty.RequiredSkills, bounty.Location, bounty.TotalAmount, bounty.DueDate)
	if err != nil {
		return fmt.Errorf("bounty repository: update %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBountyNotFound
	}
	return nil
}

// Assign sets the lawyer working on the bounty and moves it to assigned.
func (r *BountyRepository) Assign(ctx context.Context, bountyID, lawyerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bounties
		SET assigned_lawyer_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, bountyID, lawyerID, models.BountyStatusAssigned, models.BountyStatusOpen)
	if err != nil {
		return fmt.Errorf("bounty repository: assign %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBountyNotFound
	}
	return nil
}

// SetStatus updates the bounty status.
func (r *BountyRepository) SetStatus(ctx context.Context, bountyID uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bounties SET status = $2, updated_at = NOW() WHERE id = $1`, bountyID, status)
	if err != nil {
		return fmt.Errorf("bounty repository: set status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBountyNotFound
	}
	return nil
}

// Delete removes a bounty that has not been assigned yet.
func (r *BountyRepository) Delete(ctx context.Context, bountyID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bounties WHERE id = $1 AND status = $2`, bountyID, models.BountyStatusOpen)
	if err != nil {
		return fmt.Errorf("bounty repository: delete %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBountyNotFound
	}
	return nil
}
