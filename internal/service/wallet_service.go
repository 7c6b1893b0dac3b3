package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/ledger"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
	"github.com/haki-platform/haki-backend/internal/validation"
)

const balanceCacheTTL = 30 * time.Second

// WalletTransactionRepository lists the local transaction log operations.
type WalletTransactionRepository interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LedgerTransaction, error)
}

// MirrorReader reads account and transaction state from the mirror node.
type MirrorReader interface {
	AccountBalance(ctx context.Context, account string) (*models.WalletBalance, error)
	Transaction(ctx context.Context, txID string) (*ledger.MirrorTransaction, error)
	TokenInfo(ctx context.Context) (*ledger.MirrorTokenInfo, error)
}

// WalletService answers wallet reads. The ledger is the source of truth for
// balances; the local transaction log only backs listings.
type WalletService struct {
	transactions WalletTransactionRepository
	profiles     EscrowProfileRepository
	mirror       MirrorReader
	cache        *CacheService
}

func NewWalletService(transactions WalletTransactionRepository, profiles EscrowProfileRepository, mirror MirrorReader, cache *CacheService) *WalletService {
	return &WalletService{
		transactions: transactions,
		profiles:     profiles,
		mirror:       mirror,
		cache:        cache,
	}
}

// Balance returns the live ledger balance of the user's linked account,
// cached briefly.
func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (*models.WalletBalance, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.HederaAccount == nil || *profile.HederaAccount == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "no ledger account linked to this profile")
	}
	account := *profile.HederaAccount

	value, err := s.cache.GetOrSet(ctx, BalanceCacheKey(account), balanceCacheTTL, func() (interface{}, error) {
		return s.mirror.AccountBalance(ctx, account)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "mirror node balance read failed")
	}

	return value.(*models.WalletBalance), nil
}

// Transactions lists the user's local transaction log, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.LedgerTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.transactions.ListTransactions(ctx, userID, limit, offset)
}

// ExplorerAccount looks up any ledger account by ID, uncached.
func (s *WalletService) ExplorerAccount(ctx context.Context, account string) (*models.WalletBalance, error) {
	if err := validation.ValidateHederaAccount(account); err != nil {
		return nil, err
	}
	balance, err := s.mirror.AccountBalance(ctx, account)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "mirror node account read failed")
	}
	return balance, nil
}

// ExplorerTransaction looks up a ledger transaction by ID.
func (s *WalletService) ExplorerTransaction(ctx context.Context, txID string) (*ledger.MirrorTransaction, error) {
	if txID == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "transaction id is required")
	}
	tx, err := s.mirror.Transaction(ctx, txID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "mirror node transaction read failed")
	}
	return tx, nil
}

// TokenInfo returns the reputation token metadata, cached.
func (s *WalletService) TokenInfo(ctx context.Context) (*ledger.MirrorTokenInfo, error) {
	value, err := s.cache.GetOrSet(ctx, TokenInfoCacheKey(), 5*time.Minute, func() (interface{}, error) {
		return s.mirror.TokenInfo(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeLedgerFailure, "mirror node token read failed")
	}
	return value.(*ledger.MirrorTokenInfo), nil
}
