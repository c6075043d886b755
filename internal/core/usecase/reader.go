package usecase

import (
	"context"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
)

// DocumentReadModel serves document state and its audit trail to the API.
type DocumentReadModel struct {
	repo  ports.DocumentRepository
	audit ports.AuditRepository
}

func NewDocumentReadModel(repo ports.DocumentRepository, audit ports.AuditRepository) *DocumentReadModel {
	return &DocumentReadModel{repo: repo, audit: audit}
}

func (rm *DocumentReadModel) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return rm.repo.GetByID(ctx, id)
}

func (rm *DocumentReadModel) AuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	return rm.audit.ListByDocument(ctx, documentID)
}
