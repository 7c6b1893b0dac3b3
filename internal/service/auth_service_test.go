package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockAuthRepo) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockAuthRepo) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, sessionID, userID)
	return args.Error(0)
}

func (m *mockAuthRepo) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	args := m.Called(ctx, userID, exceptRefreshToken)
	return args.Error(0)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "jane@haki.example").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	repo.On("UpsertProfile", ctx, mock.Anything).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "jane@haki.example",
		Password: "Str0ngPass!",
		Role:     models.RoleLawyer,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "jane", result.User.Username)
	assert.Equal(t, models.RoleLawyer, result.User.Role)
	assert.True(t, result.User.IsActive)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	assert.Equal(t, "jane", result.Profile.DisplayName)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	existing := &models.User{ID: uuid.New(), Email: "jane@haki.example"}
	repo.On("GetByEmail", ctx, "jane@haki.example").Return(existing, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "jane@haki.example",
		Password: "Str0ngPass!",
		Role:     models.RoleNGO,
	}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_InvalidInputs(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "Str0ngPass!", Role: models.RoleNGO}, nil)
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "short", Role: models.RoleNGO}, nil)
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "Str0ngPass!", Role: "admin"}, nil)
	assert.Error(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.example", Password: "Str0ngPass!", Role: models.RoleNGO, HederaAccount: "not-an-account"}, nil)
	assert.Error(t, err)
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        "jane@haki.example",
		PasswordHash: string(hash),
		Role:         models.RoleLawyer,
		IsActive:     true,
	}
	repo.On("GetByEmail", ctx, "jane@haki.example").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)
	repo.On("GetProfile", ctx, user.ID).Return(&models.Profile{UserID: user.ID}, nil)

	result, err := svc.Login(ctx, LoginInput{Email: "jane@haki.example", Password: "Str0ngPass!"}, map[string]string{"ip": "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{ID: uuid.New(), Email: "jane@haki.example", PasswordHash: string(hash), IsActive: true}
	repo.On("GetByEmail", ctx, "jane@haki.example").Return(user, nil)

	_, err = svc.Login(ctx, LoginInput{Email: "jane@haki.example", Password: "wrong"}, nil)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "nobody@haki.example").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{Email: "nobody@haki.example", Password: "Str0ngPass!"}, nil)
	assert.Error(t, err)
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "jane@haki.example", IsActive: false}
	repo.On("GetByEmail", ctx, "jane@haki.example").Return(user, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "jane@haki.example", Password: "Str0ngPass!"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Email: "jane@haki.example", Role: models.RoleNGO, IsActive: true}
	pair, _, _, err := tm.GeneratePair(user)
	require.NoError(t, err)

	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "garbage-token", nil)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "DeleteSession", mock.Anything, mock.Anything)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetProfile", ctx, userID).Return(&models.Profile{UserID: userID, DisplayName: "old"}, nil)
	repo.On("UpsertProfile", ctx, mock.Anything).Return(nil)

	name := "Jane Wanjiku"
	account := "0.0.31337"
	profile, err := svc.UpdateProfile(ctx, userID, UpdateProfileInput{
		DisplayName:    &name,
		Specialization: []string{"land law"},
		HederaAccount:  &account,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Wanjiku", profile.DisplayName)
	assert.Equal(t, []string{"land law"}, []string(profile.Specialization))
	require.NotNil(t, profile.HederaAccount)
	assert.Equal(t, "0.0.31337", *profile.HederaAccount)
}

func TestAuthService_UpdateProfile_BadHederaAccount(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()
	userID := uuid.New()

	repo.On("GetProfile", ctx, userID).Return(&models.Profile{UserID: userID}, nil)

	bad := "hedera-mainnet-1"
	_, err := svc.UpdateProfile(ctx, userID, UpdateProfileInput{HederaAccount: &bad})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
}

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "jane_doe", deriveUsername("Jane.Doe@haki.example"))
	assert.Equal(t, "jane_smith", deriveUsername("jane+smith@haki.example"))

	short := deriveUsername("a@b.example")
	assert.True(t, len(short) >= 3)
}
