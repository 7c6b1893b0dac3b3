package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haki-platform/haki-backend/internal/ai"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

// scriptedGenerator stands in for the model API.
type scriptedGenerator struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type mockLawyerDirectory struct {
	mock.Mock
}

func (m *mockLawyerDirectory) ListByRole(ctx context.Context, role string, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockLawyerDirectory) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockLawyerDirectory) CompletedCaseCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

type mockAIDocumentRepo struct {
	mock.Mock
}

func (m *mockAIDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Document), args.Error(1)
}

func (m *mockAIDocumentRepo) SaveAnalysis(ctx context.Context, analysis *models.DocumentAnalysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *mockAIDocumentRepo) GetLatestAnalysis(ctx context.Context, documentID uuid.UUID) (*models.DocumentAnalysis, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentAnalysis), args.Error(1)
}

type mockAuditLedger struct {
	mock.Mock
}

func (m *mockAuditLedger) SubmitAuditMessage(ctx context.Context, message []byte) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

type fakeDocumentReader struct {
	content []byte
	err     error
}

func (r *fakeDocumentReader) Read(path string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.content, nil
}

type aiFixture struct {
	gen       *scriptedGenerator
	bounties  *mockEscrowBountyRepo
	directory *mockLawyerDirectory
	documents *mockAIDocumentRepo
	reader    *fakeDocumentReader
	audit     *mockAuditLedger
	notifs    *mockNotificationRepo
	svc       *AIService
}

func newAIFixture() *aiFixture {
	f := &aiFixture{
		gen:       &scriptedGenerator{},
		bounties:  new(mockEscrowBountyRepo),
		directory: new(mockLawyerDirectory),
		documents: new(mockAIDocumentRepo),
		reader:    &fakeDocumentReader{content: []byte("TENANCY AGREEMENT ...")},
		audit:     new(mockAuditLedger),
		notifs:    new(mockNotificationRepo),
	}
	f.svc = NewAIService(
		ai.NewClient(f.gen), f.bounties, f.directory, f.documents,
		f.reader, f.audit, NewCacheService(), NewNotificationService(f.notifs, nil),
	)
	return f
}

func aiTestBounty(ngoID uuid.UUID) *models.Bounty {
	return &models.Bounty{
		ID:             uuid.New(),
		NGOID:          ngoID,
		Title:          "Eviction defense",
		Description:    "Represent residents facing eviction without a court order.",
		Category:       "land law",
		RequiredSkills: []string{"litigation"},
		Status:         models.BountyStatusOpen,
	}
}

func TestAIService_MatchLawyers_NotOwner(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	bounty := aiTestBounty(uuid.New())
	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := f.svc.MatchLawyers(ctx, uuid.New(), bounty.ID)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, 0, f.gen.calls)
}

func TestAIService_MatchLawyers_NoCandidates(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	ngoID := uuid.New()
	bounty := aiTestBounty(ngoID)

	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.directory.On("ListByRole", ctx, models.RoleLawyer, 200, 0).Return([]models.User{}, nil)
	f.notifs.On("Create", ctx, mock.Anything).Return(nil)

	matches, err := f.svc.MatchLawyers(ctx, ngoID, bounty.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 0, f.gen.calls)
}

func TestAIService_MatchLawyers_MalformedOutput(t *testing.T) {
	f := newAIFixture()
	f.gen.response = "Sure! Here are the best matches:"
	ctx := context.Background()
	ngoID := uuid.New()
	lawyerID := uuid.New()
	bounty := aiTestBounty(ngoID)

	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.directory.On("ListByRole", ctx, models.RoleLawyer, 200, 0).
		Return([]models.User{{ID: lawyerID, Username: "amina"}}, nil)
	f.directory.On("CompletedCaseCounts", ctx).Return(map[uuid.UUID]int{}, nil)
	f.directory.On("GetProfile", ctx, lawyerID).Return(&models.Profile{UserID: lawyerID, DisplayName: "Amina"}, nil)

	_, err := f.svc.MatchLawyers(ctx, ngoID, bounty.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeAIFailure, appErr.Code)
}

func TestAIService_MatchLawyers_CachesResult(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	ngoID := uuid.New()
	lawyerID := uuid.New()
	bounty := aiTestBounty(ngoID)
	f.gen.response = fmt.Sprintf(`{"matches":[{"lawyer_id":"%s","score":85,"reasoning":"fits"}]}`, lawyerID)

	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.directory.On("ListByRole", ctx, models.RoleLawyer, 200, 0).
		Return([]models.User{{ID: lawyerID, Username: "amina"}}, nil)
	f.directory.On("CompletedCaseCounts", ctx).Return(map[uuid.UUID]int{}, nil)
	f.directory.On("GetProfile", ctx, lawyerID).Return(&models.Profile{UserID: lawyerID, DisplayName: "Amina"}, nil)
	f.notifs.On("Create", ctx, mock.Anything).Return(nil)

	first, err := f.svc.MatchLawyers(ctx, ngoID, bounty.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.MatchLawyers(ctx, ngoID, bounty.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.gen.calls)
}

func TestAIService_MatchLawyers_PromptCarriesCaseHistory(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	ngoID := uuid.New()
	lawyerID := uuid.New()
	bounty := aiTestBounty(ngoID)
	f.gen.response = fmt.Sprintf(`{"matches":[{"lawyer_id":"%s","score":70,"reasoning":"ok"}]}`, lawyerID)

	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.directory.On("ListByRole", ctx, models.RoleLawyer, 200, 0).
		Return([]models.User{{ID: lawyerID, Username: "amina"}}, nil)
	f.directory.On("CompletedCaseCounts", ctx).Return(map[uuid.UUID]int{lawyerID: 7}, nil)
	f.directory.On("GetProfile", ctx, lawyerID).
		Return(&models.Profile{UserID: lawyerID, DisplayName: "Amina", Reputation: 40}, nil)
	f.notifs.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.svc.MatchLawyers(ctx, ngoID, bounty.ID)
	require.NoError(t, err)
	assert.Contains(t, f.gen.lastPrompt, `"cases_completed":7`)
	assert.Contains(t, f.gen.lastPrompt, `"reputation":40`)
}

func TestAIService_AnalyzeDocument_Success(t *testing.T) {
	f := newAIFixture()
	f.gen.response = `{"summary":"Tenancy agreement with an unlawful termination clause.","key_points":["clause 7 allows eviction without notice"],"legal_issues":["violates tenancy law"],"recommended_actions":["renegotiate clause 7"],"relevant_case_law":[]}`
	ctx := context.Background()
	uploaderID := uuid.New()
	bounty := aiTestBounty(uuid.New())
	doc := &models.Document{ID: uuid.New(), BountyID: bounty.ID, UploaderID: uploaderID, FilePath: "b/doc.pdf"}

	f.documents.On("GetByID", ctx, doc.ID).Return(doc, nil)
	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.audit.On("SubmitAuditMessage", ctx, mock.Anything).Return("0.0.777@123.456", nil)
	f.documents.On("SaveAnalysis", ctx, mock.Anything).Return(nil)
	f.notifs.On("Create", ctx, mock.Anything).Return(nil)

	analysis, err := f.svc.AnalyzeDocument(ctx, uploaderID, doc.ID)
	require.NoError(t, err)

	assert.Contains(t, analysis.Summary, "Tenancy agreement")
	assert.Len(t, analysis.InputHash, 64)
	require.NotNil(t, analysis.AuditTxID)
	assert.Equal(t, "0.0.777@123.456", *analysis.AuditTxID)
	f.documents.AssertExpectations(t)
}

func TestAIService_AnalyzeDocument_AuditFailureStillStores(t *testing.T) {
	f := newAIFixture()
	f.gen.response = `{"summary":"Short summary.","key_points":[],"legal_issues":[],"recommended_actions":[],"relevant_case_law":[]}`
	ctx := context.Background()
	uploaderID := uuid.New()
	bounty := aiTestBounty(uuid.New())
	doc := &models.Document{ID: uuid.New(), BountyID: bounty.ID, UploaderID: uploaderID, FilePath: "b/doc.pdf"}

	f.documents.On("GetByID", ctx, doc.ID).Return(doc, nil)
	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.audit.On("SubmitAuditMessage", ctx, mock.Anything).Return("", errors.New("topic unreachable"))
	f.documents.On("SaveAnalysis", ctx, mock.Anything).Return(nil)
	f.notifs.On("Create", ctx, mock.Anything).Return(nil)

	analysis, err := f.svc.AnalyzeDocument(ctx, uploaderID, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, analysis.AuditTxID)
}

func TestAIService_AnalyzeDocument_NoAccess(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	bounty := aiTestBounty(uuid.New())
	doc := &models.Document{ID: uuid.New(), BountyID: bounty.ID, UploaderID: uuid.New(), FilePath: "b/doc.pdf"}

	f.documents.On("GetByID", ctx, doc.ID).Return(doc, nil)
	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)

	_, err := f.svc.AnalyzeDocument(ctx, uuid.New(), doc.ID)
	assert.True(t, apperror.IsForbidden(err))
	assert.Equal(t, 0, f.gen.calls)
}

func TestAIService_LatestAnalysis_AssignedLawyerAllowed(t *testing.T) {
	f := newAIFixture()
	ctx := context.Background()
	lawyerID := uuid.New()
	bounty := aiTestBounty(uuid.New())
	bounty.AssignedLawyerID = &lawyerID
	doc := &models.Document{ID: uuid.New(), BountyID: bounty.ID, UploaderID: uuid.New()}

	stored := &models.DocumentAnalysis{ID: uuid.New(), DocumentID: doc.ID, Summary: "stored"}
	f.documents.On("GetByID", ctx, doc.ID).Return(doc, nil)
	f.bounties.On("GetByID", ctx, bounty.ID).Return(bounty, nil)
	f.documents.On("GetLatestAnalysis", ctx, doc.ID).Return(stored, nil)

	analysis, err := f.svc.LatestAnalysis(ctx, lawyerID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, analysis)
}
