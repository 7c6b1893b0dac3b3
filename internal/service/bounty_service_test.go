package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

type mockBountyRepo struct {
	mock.Mock
}

func (m *mockBountyRepo) Create(ctx context.Context, bounty *models.Bounty) error {
	args := m.Called(ctx, bounty)
	if args.Error(0) == nil {
		bounty.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockBountyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) List(ctx context.Context, filter models.BountyFilter) ([]models.Bounty, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Bounty), args.Error(1)
}

func (m *mockBountyRepo) Update(ctx context.Context, bounty *models.Bounty) error {
	args := m.Called(ctx, bounty)
	return args.Error(0)
}

func (m *mockBountyRepo) Assign(ctx context.Context, bountyID, lawyerID uuid.UUID) error {
	args := m.Called(ctx, bountyID, lawyerID)
	return args.Error(0)
}

func (m *mockBountyRepo) Delete(ctx context.Context, bountyID uuid.UUID) error {
	args := m.Called(ctx, bountyID)
	return args.Error(0)
}

type mockBountyUserRepo struct {
	mock.Mock
}

func (m *mockBountyUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newBountyService() (*BountyService, *mockBountyRepo, *mockBountyUserRepo, *mockNotificationRepo) {
	repo := new(mockBountyRepo)
	users := new(mockBountyUserRepo)
	notifs := new(mockNotificationRepo)
	svc := NewBountyService(repo, users, NewNotificationService(notifs, nil))
	return svc, repo, users, notifs
}

func TestBountyService_Create_Success(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()
	ngoID := uuid.New()

	repo.On("Create", ctx, mock.Anything).Return(nil)

	bounty, err := svc.Create(ctx, ngoID, models.RoleNGO, CreateBountyInput{
		Title:       "Eviction defense",
		Description: "Represent forty families facing eviction.",
		Category:    "land law",
		TotalAmount: 5000,
	})
	require.NoError(t, err)

	assert.Equal(t, ngoID, bounty.NGOID)
	assert.Equal(t, models.BountyStatusOpen, bounty.Status)
	assert.NotNil(t, bounty.RequiredSkills)
	repo.AssertExpectations(t)
}

func TestBountyService_Create_LawyerRejected(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), models.RoleLawyer, CreateBountyInput{
		Title:       "Eviction defense",
		Description: "Represent forty families facing eviction.",
		TotalAmount: 5000,
	})
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBountyService_Create_InvalidInputs(t *testing.T) {
	svc, _, _, _ := newBountyService()
	ctx := context.Background()
	ngoID := uuid.New()

	_, err := svc.Create(ctx, ngoID, models.RoleNGO, CreateBountyInput{
		Title:       "ab",
		Description: "long enough description",
		TotalAmount: 100,
	})
	assert.Error(t, err)

	_, err = svc.Create(ctx, ngoID, models.RoleNGO, CreateBountyInput{
		Title:       "Eviction defense",
		Description: "short",
		TotalAmount: 100,
	})
	assert.Error(t, err)

	_, err = svc.Create(ctx, ngoID, models.RoleNGO, CreateBountyInput{
		Title:       "Eviction defense",
		Description: "long enough description",
		TotalAmount: 0,
	})
	assert.Error(t, err)
}

func TestBountyService_Update_NotOwner(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()
	bountyID := uuid.New()

	repo.On("GetByID", ctx, bountyID).Return(&models.Bounty{ID: bountyID, NGOID: uuid.New(), Status: models.BountyStatusOpen}, nil)

	title := "New title"
	_, err := svc.Update(ctx, uuid.New(), bountyID, UpdateBountyInput{Title: &title})
	assert.True(t, apperror.IsForbidden(err))
}

func TestBountyService_Update_FundedBountyImmutable(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()
	ngoID := uuid.New()
	bountyID := uuid.New()

	repo.On("GetByID", ctx, bountyID).Return(&models.Bounty{ID: bountyID, NGOID: ngoID, Status: models.BountyStatusInProgress}, nil)

	title := "New title"
	_, err := svc.Update(ctx, ngoID, bountyID, UpdateBountyInput{Title: &title})
	assert.True(t, apperror.IsConflict(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestBountyService_Assign_Success(t *testing.T) {
	svc, repo, users, notifs := newBountyService()
	ctx := context.Background()
	ngoID := uuid.New()
	lawyerID := uuid.New()
	bountyID := uuid.New()

	repo.On("GetByID", ctx, bountyID).Return(&models.Bounty{ID: bountyID, NGOID: ngoID, Status: models.BountyStatusOpen}, nil)
	users.On("GetByID", ctx, lawyerID).Return(&models.User{ID: lawyerID, Role: models.RoleLawyer}, nil)
	repo.On("Assign", ctx, bountyID, lawyerID).Return(nil)
	notifs.On("Create", ctx, mock.Anything).Return(nil)

	bounty, err := svc.Assign(ctx, ngoID, bountyID, lawyerID)
	require.NoError(t, err)

	require.NotNil(t, bounty.AssignedLawyerID)
	assert.Equal(t, lawyerID, *bounty.AssignedLawyerID)
	assert.Equal(t, models.BountyStatusAssigned, bounty.Status)
	repo.AssertExpectations(t)
}

func TestBountyService_Assign_NonLawyerRejected(t *testing.T) {
	svc, repo, users, _ := newBountyService()
	ctx := context.Background()
	ngoID := uuid.New()
	assigneeID := uuid.New()
	bountyID := uuid.New()

	repo.On("GetByID", ctx, bountyID).Return(&models.Bounty{ID: bountyID, NGOID: ngoID, Status: models.BountyStatusOpen}, nil)
	users.On("GetByID", ctx, assigneeID).Return(&models.User{ID: assigneeID, Role: models.RoleNGO}, nil)

	_, err := svc.Assign(ctx, ngoID, bountyID, assigneeID)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Assign", mock.Anything, mock.Anything, mock.Anything)
}

func TestBountyService_List_ClampsPagination(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()

	repo.On("List", ctx, models.BountyFilter{Limit: 20, Offset: 0}).Return([]models.Bounty{}, nil)

	_, err := svc.List(ctx, models.BountyFilter{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBountyService_Delete_NotOwner(t *testing.T) {
	svc, repo, _, _ := newBountyService()
	ctx := context.Background()
	bountyID := uuid.New()

	repo.On("GetByID", ctx, bountyID).Return(&models.Bounty{ID: bountyID, NGOID: uuid.New()}, nil)

	err := svc.Delete(ctx, uuid.New(), bountyID)
	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
