package ports

import (
	"context"
	"io"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, docType domain.DocumentType, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous pipeline runs.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	AuditTrail(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
}

// ReviewService applies reviewer decisions and retries.
type ReviewService interface {
	Review(ctx context.Context, cmd domain.ReviewCommand) (*domain.Document, error)
	ApplyCorrection(ctx context.Context, documentID, actorID string, edits map[string]any) (*domain.Document, error)
	Retry(ctx context.Context, documentID, actorID string) (*domain.Document, error)
}

// ResultExporter projects stored extraction and recommendation state into
// exportable shapes. Exports never trigger re-computation.
type ResultExporter interface {
	ExportFlat(ctx context.Context, documentID string) (map[string]string, error)
	ExportCSV(ctx context.Context, documentID string) ([]byte, error)
	ExportXLSX(ctx context.Context, documentID string) ([]byte, error)
}
