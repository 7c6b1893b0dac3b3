package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
)

// sniffLen is how many leading bytes the type check needs.
const sniffLen = 262

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword": true,
	"application/zip":    true, // docx et al. detect as zip containers
	"image/png":          true,
	"image/jpeg":         true,
}

var allowedTextExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// DocumentRepository lists the storage operations for document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByBounty(ctx context.Context, bountyID uuid.UUID) ([]models.Document, error)
}

// DocumentStore saves and removes stored files.
type DocumentStore interface {
	Save(ctx context.Context, bountyID uuid.UUID, originalName string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, relativePath string) error
	AbsolutePath(relativePath string) string
}

// DocumentService handles uploads attached to bounties. Content type is
// checked by magic bytes, not by the client-supplied header.
type DocumentService struct {
	repo     DocumentRepository
	bounties EscrowBountyRepository
	store    DocumentStore
}

func NewDocumentService(repo DocumentRepository, bounties EscrowBountyRepository, store DocumentStore) *DocumentService {
	return &DocumentService{
		repo:     repo,
		bounties: bounties,
		store:    store,
	}
}

// Upload stores a document for a bounty. The bounty owner and the assigned
// lawyer may upload.
func (s *DocumentService) Upload(ctx context.Context, actorID uuid.UUID, bountyID uuid.UUID, fileName string, r io.Reader) (*models.Document, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	allowed := bounty.IsOwnedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID)
	if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only bounty participants can upload documents")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "failed to read upload")
	}
	head = head[:n]

	mimeType, err := detectDocumentType(fileName, head)
	if err != nil {
		return nil, err
	}

	full := io.MultiReader(bytes.NewReader(head), r)
	path, size, err := s.store.Save(ctx, bountyID, fileName, full)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "failed to store document")
	}

	doc := &models.Document{
		BountyID:   bountyID,
		UploaderID: actorID,
		FileName:   fileName,
		FilePath:   path,
		MimeType:   mimeType,
		SizeBytes:  size,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		_ = s.store.Delete(ctx, path)
		return nil, err
	}

	return doc, nil
}

// Get returns one document if the actor participates in its bounty.
func (s *DocumentService) Get(ctx context.Context, actorID uuid.UUID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListByBounty returns documents of a bounty for its participants.
func (s *DocumentService) ListByBounty(ctx context.Context, actorID uuid.UUID, bountyID uuid.UUID) ([]models.Document, error) {
	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	allowed := bounty.IsOwnedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID)
	if !allowed {
		return nil, apperror.New(apperror.ErrCodeForbidden, "only bounty participants can list documents")
	}

	return s.repo.ListByBounty(ctx, bountyID)
}

// FilePath resolves the on-disk location for serving a document.
func (s *DocumentService) FilePath(doc *models.Document) string {
	return s.store.AbsolutePath(doc.FilePath)
}

func (s *DocumentService) authorize(ctx context.Context, actorID uuid.UUID, doc *models.Document) error {
	if doc.UploaderID == actorID {
		return nil
	}
	bounty, err := s.bounties.GetByID(ctx, doc.BountyID)
	if err != nil {
		return err
	}
	if bounty.IsOwnedBy(actorID) ||
		(bounty.AssignedLawyerID != nil && *bounty.AssignedLawyerID == actorID) {
		return nil
	}
	return apperror.New(apperror.ErrCodeForbidden, "no access to this document")
}

// detectDocumentType validates the upload by magic bytes, falling back to
// the extension for plain-text formats that have none.
func detectDocumentType(fileName string, head []byte) (string, error) {
	kind, _ := filetype.Match(head)
	if kind != filetype.Unknown {
		if !allowedDocumentTypes[kind.MIME.Value] {
			return "", apperror.New(apperror.ErrCodeValidation, "unsupported document type")
		}
		return kind.MIME.Value, nil
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if allowedTextExtensions[ext] {
		return "text/plain", nil
	}
	return "", apperror.New(apperror.ErrCodeValidation, "unsupported document type")
}
