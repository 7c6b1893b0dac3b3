package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the signup payload
type RegisterRequest struct {
	Email         string `json:"email" binding:"required"`
	Password      string `json:"password" binding:"required"`
	Username      string `json:"username"`
	Role          string `json:"role" binding:"required"`
	DisplayName   string `json:"display_name"`
	Organization  string `json:"organization"`
	HederaAccount string `json:"hedera_account"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents editable profile fields
type UpdateProfileRequest struct {
	DisplayName    *string  `json:"display_name"`
	Bio            *string  `json:"bio"`
	Organization   *string  `json:"organization"`
	BarNumber      *string  `json:"bar_number"`
	Specialization []string `json:"specialization"`
	Location       *string  `json:"location"`
	HederaAccount  *string  `json:"hedera_account"`
}

// CreateBountyRequest represents the request to post a bounty
type CreateBountyRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	Category       string     `json:"category"`
	RequiredSkills []string   `json:"required_skills"`
	Location       string     `json:"location"`
	TotalAmount    float64    `json:"total_amount" binding:"required"`
	DueDate        *time.Time `json:"due_date"`
}

// UpdateBountyRequest represents editable bounty fields
type UpdateBountyRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Category       *string    `json:"category"`
	RequiredSkills []string   `json:"required_skills"`
	Location       *string    `json:"location"`
	DueDate        *time.Time `json:"due_date"`
}

// AssignBountyRequest picks a lawyer for a bounty
type AssignBountyRequest struct {
	LawyerID uuid.UUID `json:"lawyer_id" binding:"required"`
}

// MilestoneRequest describes one milestone at escrow creation
type MilestoneRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description"`
}

// CreateEscrowRequest represents the request to fund an escrow
type CreateEscrowRequest struct {
	BountyID    uuid.UUID          `json:"bounty_id" binding:"required"`
	TotalAmount float64            `json:"total_amount" binding:"required"`
	Milestones  []MilestoneRequest `json:"milestones" binding:"required"`
}

// AdvanceMilestoneRequest moves a milestone forward
type AdvanceMilestoneRequest struct {
	Status  string `json:"status" binding:"required"`
	Version int64  `json:"version" binding:"required"`
}

// ReleaseMilestoneRequest releases a completed milestone
type ReleaseMilestoneRequest struct {
	Version int64 `json:"version" binding:"required"`
}

// RefundEscrowRequest refunds the remaining balance
type RefundEscrowRequest struct {
	Version int64 `json:"version" binding:"required"`
}

// MatchLawyersRequest requests an AI match for a bounty
type MatchLawyersRequest struct {
	BountyID uuid.UUID `json:"bounty_id" binding:"required"`
}
