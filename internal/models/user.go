package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User describes a platform account: an NGO, a lawyer or a donor.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile is the public profile attached to a user.
type Profile struct {
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	DisplayName    string         `db:"display_name" json:"display_name"`
	Bio            *string        `db:"bio" json:"bio,omitempty"`
	Organization   *string        `db:"organization" json:"organization,omitempty"`
	BarNumber      *string        `db:"bar_number" json:"bar_number,omitempty"`
	Specialization pq.StringArray `db:"specialization" json:"specialization"`
	Location       *string        `db:"location" json:"location,omitempty"`
	HederaAccount  *string        `db:"hedera_account" json:"hedera_account,omitempty"`
	Reputation     int            `db:"reputation" json:"reputation"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Session stores an issued refresh token.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
