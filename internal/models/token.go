package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger transaction types recorded against a wallet.
const (
	LedgerOpEscrowHold    = "escrow_hold"
	LedgerOpEscrowRelease = "escrow_release"
	LedgerOpEscrowRefund  = "escrow_refund"
	LedgerOpTokenMint     = "token_mint"
	LedgerOpTokenTransfer = "token_transfer"
	LedgerOpTokenBurn     = "token_burn"
)

// LedgerTransaction is the local record of a submitted ledger transaction.
// The ledger itself stays authoritative; this table exists for listing and
// reconciliation.
type LedgerTransaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	EscrowID    *uuid.UUID `db:"escrow_id" json:"escrow_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Amount      float64    `db:"amount" json:"amount"`
	LedgerTxID  string     `db:"ledger_tx_id" json:"ledger_tx_id"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ReputationAward is a reputation-token grant to a lawyer, minted on the
// ledger when blockchain features are enabled.
type ReputationAward struct {
	ID         uuid.UUID `db:"id" json:"id"`
	LawyerID   uuid.UUID `db:"lawyer_id" json:"lawyer_id"`
	BountyID   uuid.UUID `db:"bounty_id" json:"bounty_id"`
	Points     int64     `db:"points" json:"points"`
	LedgerTxID *string   `db:"ledger_tx_id" json:"ledger_tx_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WalletBalance is the mirror-node view of an account, cached briefly.
type WalletBalance struct {
	Account    string    `json:"account"`
	Hbar       float64   `json:"hbar"`
	TokenUnits int64     `json:"token_units"`
	FetchedAt  time.Time `json:"fetched_at"`
}
