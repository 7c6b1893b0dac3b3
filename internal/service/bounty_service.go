package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
	"github.com/haki-platform/haki-backend/internal/validation"
)

// BountyRepository lists the storage operations BountyService depends on.
type BountyRepository interface {
	Create(ctx context.Context, bounty *models.Bounty) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
	List(ctx context.Context, filter models.BountyFilter) ([]models.Bounty, error)
	Update(ctx context.Context, bounty *models.Bounty) error
	Assign(ctx context.Context, bountyID, lawyerID uuid.UUID) error
	Delete(ctx context.Context, bountyID uuid.UUID) error
}

// BountyUserRepository resolves users referenced by bounty operations.
type BountyUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CreateBountyInput carries the bounty creation payload.
type CreateBountyInput struct {
	Title          string
	Description    string
	Category       string
	RequiredSkills []string
	Location       string
	TotalAmount    float64
	DueDate        *time.Time
}

// UpdateBountyInput carries editable bounty fields. Nil means unchanged.
type UpdateBountyInput struct {
	Title          *string
	Description    *string
	Category       *string
	RequiredSkills []string
	Location       *string
	DueDate        *time.Time
}

// BountyService covers the bounty lifecycle up to escrow funding.
type BountyService struct {
	repo          BountyRepository
	users         BountyUserRepository
	notifications *NotificationService
}

func NewBountyService(repo BountyRepository, users BountyUserRepository, notifications *NotificationService) *BountyService {
	return &BountyService{
		repo:          repo,
		users:         users,
		notifications: notifications,
	}
}

// Create posts a new open bounty. NGO role only.
func (s *BountyService) Create(ctx context.Context, actorID uuid.UUID, role string, in CreateBountyInput) (*models.Bounty, error) {
	if role != models.RoleNGO {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only organizations can post bounties")
	}
	if err := validation.ValidateLength("title", in.Title, 3, 200); err != nil {
		return nil, fmt.Errorf("bounty service: %w", err)
	}
	if err := validation.ValidateLength("description", in.Description, 10, 10000); err != nil {
		return nil, fmt.Errorf("bounty service: %w", err)
	}
	if err := validation.ValidateAmount("total_amount", in.TotalAmount); err != nil {
		return nil, fmt.Errorf("bounty service: %w", err)
	}

	skills := in.RequiredSkills
	if skills == nil {
		skills = []string{}
	}

	bounty := &models.Bounty{
		NGOID:          actorID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		RequiredSkills: skills,
		TotalAmount:    in.TotalAmount,
		Status:         models.BountyStatusOpen,
		DueDate:        in.DueDate,
	}
	if in.Location != "" {
		bounty.Location = &in.Location
	}

	if err := s.repo.Create(ctx, bounty); err != nil {
		return nil, err
	}

	return bounty, nil
}

// Get returns one bounty.
func (s *BountyService) Get(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns bounties matching the filter.
func (s *BountyService) List(ctx context.Context, filter models.BountyFilter) ([]models.Bounty, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Update edits an open bounty. Owner only; funded or closed bounties are
// immutable.
func (s *BountyService) Update(ctx context.Context, actorID uuid.UUID, bountyID uuid.UUID, in UpdateBountyInput) (*models.Bounty, error) {
	bounty, err := s.repo.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if !bounty.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the bounty owner can edit it")
	}
	if bounty.Status != models.BountyStatusOpen {
		return nil, apperror.New(apperror.ErrCodeConflict, "only open bounties can be edited")
	}

	if in.Title != nil {
		if err := validation.ValidateLength("title", *in.Title, 3, 200); err != nil {
			return nil, fmt.Errorf("bounty service: %w", err)
		}
		bounty.Title = *in.Title
	}
	if in.Description != nil {
		if err := validation.ValidateLength("description", *in.Description, 10, 10000); err != nil {
			return nil, fmt.Errorf("bounty service: %w", err)
		}
		bounty.Description = *in.Description
	}
	if in.Category != nil {
		bounty.Category = *in.Category
	}
	if in.RequiredSkills != nil {
		bounty.RequiredSkills = in.RequiredSkills
	}
	if in.Location != nil {
		bounty.Location = in.Location
	}
	if in.DueDate != nil {
		bounty.DueDate = in.DueDate
	}

	if err := s.repo.Update(ctx, bounty); err != nil {
		return nil, err
	}

	return bounty, nil
}

// Assign picks a lawyer for an open bounty. Owner only; the assignee must
// hold the lawyer role.
func (s *BountyService) Assign(ctx context.Context, actorID uuid.UUID, bountyID, lawyerID uuid.UUID) (*models.Bounty, error) {
	bounty, err := s.repo.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if !bounty.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the bounty owner can assign a lawyer")
	}

	lawyer, err := s.users.GetByID(ctx, lawyerID)
	if err != nil {
		return nil, err
	}
	if lawyer.Role != models.RoleLawyer {
		return nil, apperror.New(apperror.ErrCodeValidation, "assignee must be a lawyer")
	}

	if err := s.repo.Assign(ctx, bountyID, lawyerID); err != nil {
		return nil, err
	}

	bounty.AssignedLawyerID = &lawyerID
	bounty.Status = models.BountyStatusAssigned

	s.notifications.NotifyQuiet(ctx, lawyerID, models.EventBountyAssigned, bounty)

	return bounty, nil
}

// Delete removes an open bounty. Owner only.
func (s *BountyService) Delete(ctx context.Context, actorID uuid.UUID, bountyID uuid.UUID) error {
	bounty, err := s.repo.GetByID(ctx, bountyID)
	if err != nil {
		return err
	}
	if !bounty.IsOwnedBy(actorID) {
		return apperror.New(apperror.ErrCodeForbidden, "only the bounty owner can delete it")
	}
	return s.repo.Delete(ctx, bountyID)
}
