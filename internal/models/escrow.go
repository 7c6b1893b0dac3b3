package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

// Escrow statuses.
const (
	EscrowStatusActive    = "active"
	EscrowStatusCompleted = "completed"
	EscrowStatusRefunded  = "refunded"
)

// Milestone statuses, strictly forward:
// pending -> in_progress -> completed -> released.
const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusCompleted  = "completed"
	MilestoneStatusReleased   = "released"
)

// amountEpsilon absorbs float accumulation error when comparing
// currency amounts.
const amountEpsilon = 0.005

// milestoneRank orders milestone statuses for the forward-only check.
var milestoneRank = map[string]int{
	MilestoneStatusPending:    0,
	MilestoneStatusInProgress: 1,
	MilestoneStatusCompleted:  2,
	MilestoneStatusReleased:   3,
}

// Milestone is a separately payable unit of work within a bounty escrow.
type Milestone struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EscrowID    uuid.UUID  `db:"escrow_id" json:"escrow_id"`
	Position    int        `db:"position" json:"position"`
	Amount      float64    `db:"amount" json:"amount"`
	Description string     `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"`
	ReleasedAt  *time.Time `db:"released_at" json:"released_at,omitempty"`
}

// Escrow holds bounty funds and releases them per milestone. Version is a
// monotonic counter used for optimistic concurrency: every mutating
// operation must carry the version the caller read.
type Escrow struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	BountyID       uuid.UUID  `db:"bounty_id" json:"bounty_id"`
	FunderID       uuid.UUID  `db:"funder_id" json:"funder_id"`
	TotalAmount    float64    `db:"total_amount" json:"total_amount"`
	ReleasedAmount float64    `db:"released_amount" json:"released_amount"`
	Status         string     `db:"status" json:"status"`
	Version        int64      `db:"version" json:"version"`
	LedgerTxID     *string    `db:"ledger_tx_id" json:"ledger_tx_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	RefundedAt     *time.Time `db:"refunded_at" json:"refunded_at,omitempty"`

	Milestones []Milestone `db:"-" json:"milestones"`
}

// MilestoneInput describes one milestone at escrow creation time.
type MilestoneInput struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// NewEscrow validates the creation invariants and builds an active escrow.
// Milestone amounts must be positive and sum to exactly the total.
func NewEscrow(bountyID, funderID uuid.UUID, totalAmount float64, milestones []MilestoneInput) (*Escrow, error) {
	if bountyID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "bounty id is required")
	}
	if totalAmount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "total amount must be positive")
	}
	if len(milestones) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "at least one milestone is required")
	}

	var sum float64
	for _, m := range milestones {
		if m.Amount <= 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "milestone amount must be positive")
		}
		sum += m.Amount
	}
	if sum > totalAmount+amountEpsilon || sum < totalAmount-amountEpsilon {
		return nil, apperror.New(apperror.ErrCodeValidation, "milestone amounts must sum to the total amount")
	}

	now := time.Now()
	escrow := &Escrow{
		ID:          uuid.New(),
		BountyID:    bountyID,
		FunderID:    funderID,
		TotalAmount: totalAmount,
		Status:      EscrowStatusActive,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i, m := range milestones {
		escrow.Milestones = append(escrow.Milestones, Milestone{
			ID:          uuid.New(),
			EscrowID:    escrow.ID,
			Position:    i,
			Amount:      m.Amount,
			Description: m.Description,
			Status:      MilestoneStatusPending,
		})
	}

	return escrow, nil
}

// RemainingAmount is the held balance not yet released.
func (e *Escrow) RemainingAmount() float64 {
	remaining := e.TotalAmount - e.ReleasedAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Milestone finds a milestone by ID.
func (e *Escrow) Milestone(milestoneID uuid.UUID) *Milestone {
	for i := range e.Milestones {
		if e.Milestones[i].ID == milestoneID {
			return &e.Milestones[i]
		}
	}
	return nil
}

// AdvanceMilestone moves a milestone forward to the given status without
// releasing funds. Backward transitions and transitions into released are
// rejected; release only happens through Release.
func (e *Escrow) AdvanceMilestone(milestoneID uuid.UUID, status string) error {
	if e.Status != EscrowStatusActive {
		return apperror.New(apperror.ErrCodeConflict, "escrow is no longer active")
	}

	rank, ok := milestoneRank[status]
	if !ok || status == MilestoneStatusReleased {
		return apperror.New(apperror.ErrCodeValidation, "invalid milestone status")
	}

	milestone := e.Milestone(milestoneID)
	if milestone == nil {
		return apperror.ErrMilestoneNotFound
	}
	if milestoneRank[milestone.Status] >= rank {
		return apperror.New(apperror.ErrCodeConflict, "milestone status can only move forward")
	}

	milestone.Status = status
	e.touch()
	return nil
}

// Release marks a milestone released and accounts its amount. When the last
// held amount is released the escrow transitions to completed in the same
// call, so no reader observes a fully released escrow still active.
func (e *Escrow) Release(milestoneID uuid.UUID) (*Milestone, error) {
	switch e.Status {
	case EscrowStatusCompleted:
		return nil, apperror.New(apperror.ErrCodeConflict, "escrow is already completed")
	case EscrowStatusRefunded:
		return nil, apperror.New(apperror.ErrCodeConflict, "escrow has been refunded")
	}

	milestone := e.Milestone(milestoneID)
	if milestone == nil {
		return nil, apperror.ErrMilestoneNotFound
	}
	if milestone.Status == MilestoneStatusReleased {
		return nil, apperror.ErrMilestoneReleased
	}
	if milestone.Status != MilestoneStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "milestone must be completed before release")
	}

	now := time.Now()
	milestone.Status = MilestoneStatusReleased
	milestone.ReleasedAt = &now
	e.ReleasedAmount += milestone.Amount

	if e.RemainingAmount() <= amountEpsilon {
		e.ReleasedAmount = e.TotalAmount
		e.Status = EscrowStatusCompleted
	}

	e.touch()
	return milestone, nil
}

// Refund returns the remaining balance to the funder and terminates the
// escrow. Completed and refunded escrows cannot be refunded.
func (e *Escrow) Refund() error {
	if e.Status != EscrowStatusActive {
		return apperror.New(apperror.ErrCodeConflict, "escrow is not active")
	}

	now := time.Now()
	e.Status = EscrowStatusRefunded
	e.RefundedAt = &now
	e.touch()
	return nil
}

// IsFundedBy reports whether the given user created and funded the escrow.
func (e *Escrow) IsFundedBy(userID uuid.UUID) bool {
	return e.FunderID == userID
}

func (e *Escrow) touch() {
	e.Version++
	e.UpdatedAt = time.Now()
}
