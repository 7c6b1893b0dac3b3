package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Bounty is a funded legal task posted by an NGO and fulfilled by a lawyer.
type Bounty struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	NGOID            uuid.UUID      `db:"ngo_id" json:"ngo_id"`
	AssignedLawyerID *uuid.UUID     `db:"assigned_lawyer_id" json:"assigned_lawyer_id,omitempty"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	Category         string         `db:"category" json:"category"`
	RequiredSkills   pq.StringArray `db:"required_skills" json:"required_skills"`
	Location         *string        `db:"location" json:"location,omitempty"`
	TotalAmount      float64        `db:"total_amount" json:"total_amount"`
	Status           string         `db:"status" json:"status"`
	DueDate          *time.Time     `db:"due_date" json:"due_date,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// IsOwnedBy reports whether the bounty belongs to the given NGO user.
func (b *Bounty) IsOwnedBy(userID uuid.UUID) bool {
	return b.NGOID == userID
}

// BountyFilter narrows bounty listings.
type BountyFilter struct {
	Status   string
	Category string
	NGOID    *uuid.UUID
	LawyerID *uuid.UUID
	Limit    int
	Offset   int
}
