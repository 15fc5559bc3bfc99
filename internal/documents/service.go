package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/swipetonpro/backend/internal/models"
	"github.com/swipetonpro/backend/internal/storage"
)

// maxDocumentBytes caps a single upload after base64 decoding.
const maxDocumentBytes = 10 << 20

var (
	ErrNotAPro         = errors.New("only professionals upload documents")
	ErrInvalidDocType  = errors.New("unknown document type")
	ErrEmptyDocument   = errors.New("empty document")
	ErrDocumentTooBig  = errors.New("document exceeds the size limit")
	ErrDocNotFound     = errors.New("document not found")
	ErrAlreadyReviewed = errors.New("document already reviewed")
)

// Store is the persistence surface the service needs. *Repository
// satisfies it.
type Store interface {
	Insert(ctx context.Context, d *models.Document) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Review(ctx context.Context, id, adminID uuid.UUID, status, comment string) (*models.Document, error)
}

type Service interface {
	Upload(ctx context.Context, owner *models.User, docType, fileName string, content []byte) (*models.Document, error)
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error)
	ListForReview(ctx context.Context, status string, limit int) ([]*models.Document, error)
	Review(ctx context.Context, adminID, docID uuid.UUID, approve bool, comment string) (*models.Document, error)
}

type service struct {
	store Store
	blobs storage.Store
	log   *slog.Logger
}

func NewService(store Store, blobs storage.Store, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, blobs: blobs, log: log}
}

var _ Service = (*service)(nil)

// Upload stores the blob and records a pending document. Uploading never
// touches the owner's verification status; an admin decides that
// separately.
func (s *service) Upload(ctx context.Context, owner *models.User, docType, fileName string, content []byte) (*models.Document, error) {
	if owner.Role != models.RoleProfessional {
		return nil, ErrNotAPro
	}
	if !models.ValidDocType(docType) {
		return nil, ErrInvalidDocType
	}
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}
	if len(content) > maxDocumentBytes {
		return nil, ErrDocumentTooBig
	}

	ref, err := s.blobs.Save(owner.ID.String(), fileName, content)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	doc := &models.Document{
		OwnerID:    owner.ID,
		DocType:    docType,
		FileName:   fileName,
		StorageRef: ref,
	}
	if err := s.store.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	s.log.Info("document uploaded", "document_id", doc.ID, "owner_id", owner.ID, "doc_type", docType)
	return doc, nil
}

func (s *service) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *service) ListForReview(ctx context.Context, status string, limit int) ([]*models.Document, error) {
	return s.store.ListByStatus(ctx, status, limit)
}

// Review applies the admin decision to a pending document.
func (s *service) Review(ctx context.Context, adminID, docID uuid.UUID, approve bool, comment string) (*models.Document, error) {
	status := models.DocumentRejected
	if approve {
		status = models.DocumentApproved
	}
	doc, err := s.store.Review(ctx, docID, adminID, status, comment)
	if err != nil {
		return nil, fmt.Errorf("review document: %w", err)
	}
	if doc == nil {
		existing, err := s.store.Get(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("load document: %w", err)
		}
		if existing == nil {
			return nil, ErrDocNotFound
		}
		return nil, ErrAlreadyReviewed
	}
	s.log.Info("document reviewed", "document_id", docID, "status", status, "admin_id", adminID)
	return doc, nil
}
