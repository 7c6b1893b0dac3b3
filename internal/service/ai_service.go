package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/ai"
	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

const matchCacheTTL = 10 * time.Minute

// AIDocumentRepository lists the document storage operations for analysis.
type AIDocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	SaveAnalysis(ctx context.Context, analysis *models.DocumentAnalysis) error
	GetLatestAnalysis(ctx context.Context, documentID uuid.UUID) (*models.DocumentAnalysis, error)
}

// AILawyerDirectory resolves lawyer candidates for matching.
type AILawyerDirectory interface {
	ListByRole(ctx context.Context, role string, limit, offset int) ([]models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CompletedCaseCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

// AuditLedger anchors analysis hashes on the public ledger.
type AuditLedger interface {
	SubmitAuditMessage(ctx context.Context, message []byte) (string, error)
}

// DocumentReader loads stored document content for analysis.
type DocumentReader interface {
	Read(path string) ([]byte, error)
}

// AIService orchestrates lawyer matching and document analysis. Model
// failures come back as typed AI errors so handlers map them to a gateway
// failure rather than an internal one.
type AIService struct {
	client        *ai.Client
	bounties      EscrowBountyRepository
	directory     AILawyerDirectory
	documents     AIDocumentRepository
	reader        DocumentReader
	audit         AuditLedger
	cache         *CacheService
	notifications *NotificationService
}

func NewAIService(
	client *ai.Client,
	bounties EscrowBountyRepository,
	directory AILawyerDirectory,
	documents AIDocumentRepository,
	reader DocumentReader,
	audit AuditLedger,
	cache *CacheService,
	notifications *NotificationService,
) *AIService {
	return &AIService{
		client:        client,
		bounties:      bounties,
		directory:     directory,
		documents:     documents,
		reader:        reader,
		audit:         audit,
		cache:         cache,
		notifications: notifications,
	}
}

// MatchLawyers ranks registered lawyers against a bounty. Only the bounty
// owner may request a match. With no registered lawyers the result is an
// empty ranking and the model is never called.
func (s *AIService) MatchLawyers(ctx context.Context, actorID uuid.UUID, bountyID uuid.UUID) ([]ai.Match, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if !bounty.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the bounty owner can request matching")
	}

	if cached, found := s.cache.Get(MatchCacheKey(bountyID)); found {
		return cached.([]ai.Match), nil
	}

	candidates, err := s.collectCandidates(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := s.client.MatchLawyers(ctx, ai.MatchRequest{
		Title:          bounty.Title,
		Description:    bounty.Description,
		Category:       bounty.Category,
		RequiredSkills: bounty.RequiredSkills,
	}, candidates)
	if err != nil {
		return nil, wrapAIError(err)
	}

	s.cache.Set(MatchCacheKey(bountyID), matches, matchCacheTTL)
	s.notifications.NotifyQuiet(ctx, actorID, models.EventAIMatchReady, map[string]interface{}{
		"bounty_id": bountyID,
		"matches":   len(matches),
	})

	return matches, nil
}

// AnalyzeDocument runs the model over a stored document and persists the
// structured result. The SHA-256 of the input is anchored on the audit topic
// so the analysis can later be proven to match the document.
func (s *AIService) AnalyzeDocument(ctx context.Context, actorID uuid.UUID, documentID uuid.UUID) (*models.DocumentAnalysis, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	bounty, err := s.bounties.GetByID(ctx, doc.BountyID)
	if err != nil {
		return nil, err
	}
	allowed := doc.UploaderID == actorID || bounty.IsOwnedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID)
	if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "no access to this document")
	}

	content, err := s.reader.Read(doc.FilePath)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to read stored document")
	}

	result, err := s.client.AnalyzeDocument(ctx, string(content))
	if err != nil {
		return nil, wrapAIError(err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "failed to encode analysis")
	}

	hash := sha256.Sum256(content)
	inputHash := hex.EncodeToString(hash[:])

	analysis := &models.DocumentAnalysis{
		DocumentID: documentID,
		Summary:    result.Summary,
		Result:     resultJSON,
		InputHash:  inputHash,
	}

	if txID := s.anchorAnalysis(ctx, documentID, inputHash); txID != "" {
		analysis.AuditTxID = &txID
	}

	if err := s.documents.SaveAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	s.notifications.NotifyQuiet(ctx, actorID, models.EventAIAnalysisReady, map[string]interface{}{
		"document_id": documentID,
		"summary":     result.Summary,
	})

	return analysis, nil
}

// LatestAnalysis returns the stored analysis of a document.
func (s *AIService) LatestAnalysis(ctx context.Context, actorID uuid.UUID, documentID uuid.UUID) (*models.DocumentAnalysis, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	bounty, err := s.bounties.GetByID(ctx, doc.BountyID)
	if err != nil {
		return nil, err
	}
	allowed := doc.UploaderID == actorID || bounty.IsOwnedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID)
	if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "no access to this document")
	}
	return s.documents.GetLatestAnalysis(ctx, documentID)
}

func (s *AIService) collectCandidates(ctx context.Context) ([]ai.Candidate, error) {
	lawyers, err := s.directory.ListByRole(ctx, models.RoleLawyer, 200, 0)
	if err != nil {
		return nil, err
	}
	if len(lawyers) == 0 {
		return []ai.Candidate{}, nil
	}

	counts, err := s.directory.CompletedCaseCounts(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]ai.Candidate, 0, len(lawyers))
	for _, lawyer := range lawyers {
		cand := ai.Candidate{
			LawyerID:       lawyer.ID,
			DisplayName:    lawyer.Username,
			CasesCompleted: counts[lawyer.ID],
		}
		if profile, err := s.directory.GetProfile(ctx, lawyer.ID); err == nil {
			cand.DisplayName = profile.DisplayName
			cand.Specialization = profile.Specialization
			cand.Reputation = profile.Reputation
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// anchorAnalysis submits the input hash to the audit topic. Anchoring is
// best effort; the analysis is stored either way.
func (s *AIService) anchorAnalysis(ctx context.Context, documentID uuid.UUID, inputHash string) string {
	message, err := json.Marshal(map[string]interface{}{
		"type":        "document_analysis",
		"document_id": documentID,
		"input_hash":  inputHash,
		"at":          time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return ""
	}

	txID, err := s.audit.SubmitAuditMessage(ctx, message)
	if err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		}).Warn("ai service: audit anchoring failed")
		return ""
	}
	return txID
}

// wrapAIError maps typed AI failures onto app error codes.
func wrapAIError(err error) error {
	switch ai.KindOf(err) {
	case ai.ErrKindBadModelOutput:
		return apperror.Wrap(err, apperror.ErrCodeAIFailure, "model returned malformed output")
	case ai.ErrKindTimeout:
		return apperror.Wrap(err, apperror.ErrCodeAIFailure, "model call timed out")
	case ai.ErrKindUnavailable:
		return apperror.Wrap(err, apperror.ErrCodeAIFailure, "model is unavailable")
	default:
		return err
	}
}
