package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/haki-platform/haki-backend/internal/models"
)

// ErrDocumentNotFound is returned when no document record matches.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository works with the documents and document_analyses tables.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a document record for an uploaded file.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (bounty_id, uploader_id, file_name, file_path, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		doc.BountyID, doc.UploaderID, doc.FileName, doc.FilePath, doc.MimeType, doc.SizeBytes,
	).Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return fmt.Errorf("document repository: create %w", err)
	}
	return nil
}

// GetByID returns one document.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	query := `
		SELECT id, bounty_id, uploader_id, file_name, file_path, mime_type, size_bytes, created_at
		FROM documents
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document repository: get by id %w", err)
	}
	return &doc, nil
}

// ListByBounty returns documents attached to a bounty.
func (r *DocumentRepository) ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.SelectContext(ctx, &docs, `
		SELECT id, bounty_id, uploader_id, file_name, file_path, mime_type, size_bytes, created_at
		FROM documents
		WHERE bounty_id = $1
		ORDER BY created_at DESC
	`, bountyID)
	if err != nil {
		return nil, fmt.Errorf("document repository: list by bounty %w", err)
	}
	return docs, nil
}

// SaveAnalysis stores an AI analysis result for a document.
func (r *DocumentRepository) SaveAnalysis(ctx context.Context, analysis *models.DocumentAnalysis) error {
	query := `
		INSERT INTO document_analyses (document_id, summary, result, input_hash, audit_tx_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		analysis.DocumentID, analysis.Summary, analysis.Result, analysis.InputHash, analysis.AuditTxID,
	).Scan(&analysis.ID, &analysis.CreatedAt); err != nil {
		return fmt.Errorf("document repository: save analysis %w", err)
	}
	return nil
}

// GetLatestAnalysis returns the most recent analysis for a document.
func (r *DocumentRepository) GetLatestAnalysis(ctx context.Context, documentID uuid.UUID) (*models.DocumentAnalysis, error) {
	var analysis models.DocumentAnalysis
	query := `
		SELECT id, document_id, summary, result, input_hash, audit_tx_id, created_at
		FROM document_analyses
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &analysis, query, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("document repository: get analysis %w", err)
	}
	return &analysis, nil
}
