package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

// TokenLedger mints and moves reputation tokens on the ledger.
type TokenLedger interface {
	MintReputation(ctx context.Context, units int64) (string, error)
	TransferReputation(ctx context.Context, toAccount string, units int64) (string, error)
}

// ReputationRepository lists the storage operations for awards.
type ReputationRepository interface {
	CreateAward(ctx context.Context, award *models.ReputationAward) error
	ListAwards(ctx context.Context, lawyerID uuid.UUID, limit, offset int) ([]models.ReputationAward, error)
	TotalPoints(ctx context.Context, lawyerID uuid.UUID) (int64, error)
}

// ReputationProfileRepository updates the cached reputation counter.
type ReputationProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	AddReputation(ctx context.Context, userID uuid.UUID, points int64) error
}

// ReputationService grants reputation tokens to lawyers. Tokens are minted
// to the treasury and transferred to the lawyer's account when one is
// linked; the award row is the platform-side record either way.
type ReputationService struct {
	repo          ReputationRepository
	profiles      ReputationProfileRepository
	ledger        TokenLedger
	wallet        WalletRecorder
	notifications *NotificationService
}

func NewReputationService(
	repo ReputationRepository,
	profiles ReputationProfileRepository,
	ledger TokenLedger,
	wallet WalletRecorder,
	notifications *NotificationService,
) *ReputationService {
	return &ReputationService{
		repo:          repo,
		profiles:      profiles,
		ledger:        ledger,
		wallet:        wallet,
		notifications: notifications,
	}
}

// AwardForBounty mints and grants reputation for a completed bounty.
func (s *ReputationService) AwardForBounty(ctx context.Context, lawyerID, bountyID uuid.UUID, points int64) error {
	if points <= 0 {
		return apperror.New(apperror.ErrCodeValidation, "award points must be positive")
	}

	mintTxID, err := s.ledger.MintReputation(ctx, points)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "reputation mint failed")
	}

	txID := mintTxID
	profile, err := s.profiles.GetProfile(ctx, lawyerID)
	if err != nil {
		return err
	}
	if profile.HederaAccount != nil && *profile.HederaAccount != "" {
		transferTxID, err := s.ledger.TransferReputation(ctx, *profile.HederaAccount, points)
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "reputation transfer failed")
		}
		txID = transferTxID
	}

	award := &models.ReputationAward{
		LawyerID:   lawyerID,
		BountyID:   bountyID,
		Points:     points,
		LedgerTxID: &txID,
	}
	if err := s.repo.CreateAward(ctx, award); err != nil {
		return fmt.Errorf("reputation service: store award: %w", err)
	}

	if err := s.profiles.AddReputation(ctx, lawyerID, points); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"lawyer_id": lawyerID,
			"error":     err.Error(),
		}).Warn("reputation service: failed to bump profile reputation")
	}

	if s.wallet != nil {
		record := &models.LedgerTransaction{
			UserID:     lawyerID,
			Type:       models.LedgerOpTokenMint,
			Amount:     float64(points),
			LedgerTxID: txID,
		}
		if err := s.wallet.RecordTransaction(ctx, record); err != nil {
			logger.Log.WithFields(map[string]interface{}{
				"lawyer_id": lawyerID,
				"error":     err.Error(),
			}).Warn("reputation service: failed to record mint transaction")
		}
	}

	return nil
}

// Awards lists a lawyer's reputation awards, newest first.
func (s *ReputationService) Awards(ctx context.Context, lawyerID uuid.UUID, limit, offset int) ([]models.ReputationAward, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListAwards(ctx, lawyerID, limit, offset)
}

// TotalPoints returns the lifetime points of a lawyer.
func (s *ReputationService) TotalPoints(ctx context.Context, lawyerID uuid.UUID) (int64, error) {
	return s.repo.TotalPoints(ctx, lawyerID)
}
