package dto

import (
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/service"
)

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the uniform success envelope for operations without a
// natural resource body
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the registration/login result
type AuthResponse struct {
	User      *models.User       `json:"user"`
	Profile   *models.Profile    `json:"profile,omitempty"`
	TokenPair *service.TokenPair `json:"tokens"`
}

// NewAuthResponse builds an AuthResponse from a service result
func NewAuthResponse(result *service.AuthResult) *AuthResponse {
	return &AuthResponse{
		User:      result.User,
		Profile:   result.Profile,
		TokenPair: result.TokenPair,
	}
}

// BountyResponse represents a bounty together with its escrow, when funded
type BountyResponse struct {
	*models.Bounty
	Escrow *models.Escrow `json:"escrow,omitempty"`
}

// NewBountyResponse builds a BountyResponse
func NewBountyResponse(bounty *models.Bounty, escrow *models.Escrow) *BountyResponse {
	return &BountyResponse{
		Bounty: bounty,
		Escrow: escrow,
	}
}

// ListResponse is a generic paginated collection wrapper
type ListResponse struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
