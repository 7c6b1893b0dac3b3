package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/goroutine"
	"github.com/haki-platform/haki-backend/internal/logger"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

// EscrowRepository lists the storage operations EscrowService depends on.
type EscrowRepository interface {
	Create(ctx context.Context, escrow *models.Escrow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	GetByBountyID(ctx context.Context, bountyID uuid.UUID) (*models.Escrow, error)
	SaveTransition(ctx context.Context, escrow *models.Escrow, expectedVersion int64) error
	ListByFunder(ctx context.Context, funderID uuid.UUID, limit, offset int) ([]models.Escrow, error)
}

// EscrowBountyRepository is the bounty access the escrow flow needs.
type EscrowBountyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bounty, error)
	SetStatus(ctx context.Context, bountyID uuid.UUID, status string) error
}

// EscrowProfileRepository resolves ledger accounts of participants.
type EscrowProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// EscrowLedger moves held funds on the ledger. The Hedera client implements
// it in production and the noop implementation when blockchain features are
// disabled; the service never branches on which one it got.
type EscrowLedger interface {
	HoldFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error)
	ReleaseFunds(ctx context.Context, lawyerAccount string, amount float64, memo string) (string, error)
	RefundFunds(ctx context.Context, funderAccount string, amount float64, memo string) (string, error)
}

// WalletRecorder keeps the local transaction log.
type WalletRecorder interface {
	RecordTransaction(ctx context.Context, tx *models.LedgerTransaction) error
}

// ReputationAwarder grants reputation to a lawyer after escrow completion.
type ReputationAwarder interface {
	AwardForBounty(ctx context.Context, lawyerID, bountyID uuid.UUID, points int64) error
}

// CreateEscrowInput carries the escrow creation payload.
type CreateEscrowInput struct {
	BountyID    uuid.UUID
	TotalAmount float64
	Milestones  []models.MilestoneInput
}

// EscrowService orchestrates the escrow lifecycle: authorization, the pure
// state machine on the model, ledger submission and persistence. Ledger calls
// run before the state is saved, so a ledger failure leaves the stored escrow
// untouched.
type EscrowService struct {
	repo          EscrowRepository
	bounties      EscrowBountyRepository
	profiles      EscrowProfileRepository
	ledger        EscrowLedger
	wallet        WalletRecorder
	notifications *NotificationService
	reputation    ReputationAwarder

	completionAward int64
}

func NewEscrowService(
	repo EscrowRepository,
	bounties EscrowBountyRepository,
	profiles EscrowProfileRepository,
	ledger EscrowLedger,
	wallet WalletRecorder,
	notifications *NotificationService,
	reputation ReputationAwarder,
	completionAward int64,
) *EscrowService {
	return &EscrowService{
		repo:            repo,
		bounties:        bounties,
		profiles:        profiles,
		ledger:          ledger,
		wallet:          wallet,
		notifications:   notifications,
		reputation:      reputation,
		completionAward: completionAward,
	}
}

// Create funds a new escrow for a bounty. Only the NGO that owns the bounty
// may create it; milestone amounts must sum to the total. The hold is
// submitted to the ledger before anything is stored.
func (s *EscrowService) Create(ctx context.Context, actorID uuid.UUID, role string, in CreateEscrowInput) (*models.Escrow, error) {
	bounty, err := s.bounties.GetByID(ctx, in.BountyID)
	if err != nil {
		return nil, err
	}

	if role != models.RoleNGO || !bounty.IsOwnedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the bounty owner can fund an escrow")
	}
	if bounty.Status == models.BountyStatusCompleted || bounty.Status == models.BountyStatusCancelled {
		return nil, apperror.New(apperror.ErrCodeConflict, "bounty is closed")
	}

	escrow, err := models.NewEscrow(in.BountyID, actorID, in.TotalAmount, in.Milestones)
	if err != nil {
		return nil, err
	}

	funderAccount, err := s.ledgerAccount(ctx, actorID)
	if err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("haki escrow hold bounty=%s", bounty.ID)
	txID, err := s.ledger.HoldFunds(ctx, funderAccount, escrow.TotalAmount, memo)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "ledger hold failed")
	}
	escrow.LedgerTxID = &txID

	if err := s.repo.Create(ctx, escrow); err != nil {
		return nil, err
	}

	s.recordTransaction(ctx, actorID, escrow.ID, models.LedgerOpEscrowHold, escrow.TotalAmount, txID)
	s.notifications.NotifyQuiet(ctx, actorID, models.EventEscrowCreated, escrow)
	if bounty.AssignedLawyerID != nil {
		s.notifications.NotifyQuiet(ctx, *bounty.AssignedLawyerID, models.EventEscrowCreated, escrow)
	}

	return escrow, nil
}

// Get returns one escrow with its milestones.
func (s *EscrowService) Get(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByBounty returns the escrow funding a bounty.
func (s *EscrowService) GetByBounty(ctx context.Context, bountyID uuid.UUID) (*models.Escrow, error) {
	return s.repo.GetByBountyID(ctx, bountyID)
}

// ListByFunder returns escrows created by the given NGO.
func (s *EscrowService) ListByFunder(ctx context.Context, funderID uuid.UUID, limit, offset int) ([]models.Escrow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByFunder(ctx, funderID, limit, offset)
}

// AdvanceMilestone moves a milestone to in_progress or completed. The funder
// and the assigned lawyer may advance; expectedVersion is the escrow version
// the caller read, rejected with a conflict if stale.
func (s *EscrowService) AdvanceMilestone(ctx context.Context, actorID uuid.UUID, escrowID, milestoneID uuid.UUID, status string, expectedVersion int64) (*models.Escrow, error) {
	escrow, bounty, err := s.loadPair(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	allowed := escrow.IsFundedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID)
	if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only escrow participants can update milestones")
	}

	if escrow.Version != expectedVersion {
		return nil, apperror.ErrVersionConflict
	}

	if err := escrow.AdvanceMilestone(milestoneID, status); err != nil {
		return nil, err
	}

	if err := s.repo.SaveTransition(ctx, escrow, expectedVersion); err != nil {
		return nil, err
	}

	return escrow, nil
}

// ReleaseMilestone pays out one completed milestone to the assigned lawyer.
// Only the funding NGO may release. The payout is submitted to the ledger
// first; when the last milestone releases, the escrow completes in the same
// transition and the bounty closes.
func (s *EscrowService) ReleaseMilestone(ctx context.Context, actorID uuid.UUID, role string, escrowID, milestoneID uuid.UUID, expectedVersion int64) (*models.Escrow, error) {
	escrow, bounty, err := s.loadPair(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if role != models.RoleNGO || !escrow.IsFundedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the funding organization can release milestones")
	}
	if bounty.AssignedLawyerID == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "bounty has no assigned lawyer")
	}

	if escrow.Version != expectedVersion {
		return nil, apperror.ErrVersionConflict
	}

	// Validate the transition on a copy before touching the ledger, so an
	// invalid release never submits a transfer.
	target := escrow.Milestone(milestoneID)
	if target == nil {
		return nil, apperror.ErrMilestoneNotFound
	}
	if target.Status == models.MilestoneStatusReleased {
		return nil, apperror.ErrMilestoneReleased
	}
	if target.Status != models.MilestoneStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeConflict, "milestone must be completed before release")
	}
	if escrow.Status != models.EscrowStatusActive {
		return nil, apperror.New(apperror.ErrCodeConflict, "escrow is no longer active")
	}

	lawyerID := *bounty.AssignedLawyerID
	lawyerAccount, err := s.ledgerAccount(ctx, lawyerID)
	if err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("haki escrow release milestone=%s", milestoneID)
	txID, err := s.ledger.ReleaseFunds(ctx, lawyerAccount, target.Amount, memo)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "ledger release failed")
	}

	milestone, err := escrow.Release(milestoneID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveTransition(ctx, escrow, expectedVersion); err != nil {
		// The transfer already happened on the ledger; surface loudly so
		// reconciliation can pick it up.
		logger.Log.WithFields(map[string]interface{}{
			"escrow_id":    escrow.ID,
			"milestone_id": milestoneID,
			"ledger_tx_id": txID,
			"error":        err.Error(),
		}).Error("escrow service: release persisted on ledger but not locally")
		return nil, err
	}

	s.recordTransaction(ctx, lawyerID, escrow.ID, models.LedgerOpEscrowRelease, milestone.Amount, txID)
	s.notifications.NotifyQuiet(ctx, lawyerID, models.EventMilestoneReleased, milestone)
	s.notifications.NotifyQuiet(ctx, actorID, models.EventMilestoneReleased, milestone)

	if escrow.Status == models.EscrowStatusCompleted {
		s.finishBounty(ctx, escrow, bounty, lawyerID)
	}

	return escrow, nil
}

// Refund returns the remaining balance to the funder and closes the escrow.
// Only the funding NGO may refund, and only while the escrow is active.
func (s *EscrowService) Refund(ctx context.Context, actorID uuid.UUID, role string, escrowID uuid.UUID, expectedVersion int64) (*models.Escrow, error) {
	escrow, bounty, err := s.loadPair(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	if role != models.RoleNGO || !escrow.IsFundedBy(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only the funding organization can refund the escrow")
	}

	if escrow.Version != expectedVersion {
		return nil, apperror.ErrVersionConflict
	}
	if escrow.Status != models.EscrowStatusActive {
		return nil, apperror.New(apperror.ErrCodeConflict, "escrow is not active")
	}

	remaining := escrow.RemainingAmount()

	funderAccount, err := s.ledgerAccount(ctx, actorID)
	if err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("haki escrow refund escrow=%s", escrow.ID)
	txID, err := s.ledger.RefundFunds(ctx, funderAccount, remaining, memo)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "ledger refund failed")
	}

	if err := escrow.Refund(); err != nil {
		return nil, err
	}

	if err := s.repo.SaveTransition(ctx, escrow, expectedVersion); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"escrow_id":    escrow.ID,
			"ledger_tx_id": txID,
			"error":        err.Error(),
		}).Error("escrow service: refund persisted on ledger but not locally")
		return nil, err
	}

	if err := s.bounties.SetStatus(ctx, bounty.ID, models.BountyStatusCancelled); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"bounty_id": bounty.ID,
			"error":     err.Error(),
		}).Warn("escrow service: failed to cancel bounty after refund")
	}

	s.recordTransaction(ctx, actorID, escrow.ID, models.LedgerOpEscrowRefund, remaining, txID)
	s.notifications.NotifyQuiet(ctx, actorID, models.EventEscrowRefunded, escrow)
	if bounty.AssignedLawyerID != nil {
		s.notifications.NotifyQuiet(ctx, *bounty.AssignedLawyerID, models.EventEscrowRefunded, escrow)
	}

	return escrow, nil
}

func (s *EscrowService) loadPair(ctx context.Context, escrowID uuid.UUID) (*models.Escrow, *models.Bounty, error) {
	escrow, err := s.repo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, nil, err
	}
	bounty, err := s.bounties.GetByID(ctx, escrow.BountyID)
	if err != nil {
		return nil, nil, err
	}
	return escrow, bounty, nil
}

// ledgerAccount resolves the participant's ledger account. An empty account
// is passed through; the noop ledger ignores it and the Hedera client rejects
// it with a parse error.
func (s *EscrowService) ledgerAccount(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.HederaAccount == nil {
		return "", nil
	}
	return *profile.HederaAccount, nil
}

func (s *EscrowService) recordTransaction(ctx context.Context, userID, escrowID uuid.UUID, opType string, amount float64, txID string) {
	record := &models.LedgerTransaction{
		UserID:     userID,
		EscrowID:   &escrowID,
		Type:       opType,
		Amount:     amount,
		LedgerTxID: txID,
	}
	if err := s.wallet.RecordTransaction(ctx, record); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"escrow_id": escrowID,
			"type":      opType,
			"error":     err.Error(),
		}).Warn("escrow service: failed to record ledger transaction")
	}
}

func (s *EscrowService) finishBounty(ctx context.Context, escrow *models.Escrow, bounty *models.Bounty, lawyerID uuid.UUID) {
	if err := s.bounties.SetStatus(ctx, bounty.ID, models.BountyStatusCompleted); err != nil {
		logger.Log.WithFields(map[string]interface{}{
			"bounty_id": bounty.ID,
			"error":     err.Error(),
		}).Warn("escrow service: failed to complete bounty")
	}

	s.notifications.NotifyQuiet(ctx, escrow.FunderID, models.EventEscrowCompleted, escrow)
	s.notifications.NotifyQuiet(ctx, lawyerID, models.EventEscrowCompleted, escrow)

	if s.reputation != nil && s.completionAward > 0 {
		bountyID := bounty.ID
		goroutine.SafeGo(func() {
			if err := s.reputation.AwardForBounty(context.Background(), lawyerID, bountyID, s.completionAward); err != nil {
				logger.Log.WithFields(map[string]interface{}{
					"bounty_id": bountyID,
					"lawyer_id": lawyerID,
					"error":     err.Error(),
				}).Warn("escrow service: reputation award failed")
			}
		})
	}
}
