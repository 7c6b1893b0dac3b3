package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded legal document attached to a bounty.
type Document struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BountyID   uuid.UUID `db:"bounty_id" json:"bounty_id"`
	UploaderID uuid.UUID `db:"uploader_id" json:"uploader_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FilePath   string    `db:"file_path" json:"-"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DocumentAnalysis is a stored AI analysis result for a document.
type DocumentAnalysis struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DocumentID uuid.UUID `db:"document_id" json:"document_id"`
	Summary    string    `db:"summary" json:"summary"`
	Result     []byte    `db:"result" json:"-"`
	InputHash  string    `db:"input_hash" json:"input_hash"`
	AuditTxID  *string   `db:"audit_tx_id" json:"audit_tx_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
