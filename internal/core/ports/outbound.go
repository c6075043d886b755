package ports

import (
	"context"
	"io"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	// TransitionStatus moves a document from one status to another only if it
	// still holds the expected status, returning ErrConflictingTransition
	// otherwise. This is the per-document mutual exclusion guarantee for
	// reviewer actions.
	TransitionStatus(ctx context.Context, id string, from, to domain.DocumentStatus) error
	MarkError(ctx context.Context, id string, errMessage string) error
	SaveRecognition(ctx context.Context, id string, rawText string, entities []domain.Entity) error
	SaveFields(ctx context.Context, id string, fields domain.FieldSet) error
	SaveAnalysis(ctx context.Context, id string, categorized domain.CategorizedFieldSet, quality *domain.QualityReport, rec *domain.Recommendation) error
}

// AuditRepository records status transitions. Append-only: entries are never
// updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEntry, error)
}

// ObjectStorage stores uploaded originals.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document pipeline events.
type MessageQueue interface {
	PublishDocumentQueued(ctx context.Context, documentID string) error
	SubscribeDocumentQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// Recognizer is the external OCR/NER collaborator.
type Recognizer interface {
	Recognize(ctx context.Context, filename, mimeType string, data io.Reader) (*domain.RecognitionResult, error)
}

// FieldExtractor maps raw recognized output to a typed field set. The bool
// return flags low extraction yield.
type FieldExtractor interface {
	Extract(docType domain.DocumentType, rawText string, entities []domain.Entity) (domain.FieldSet, bool)
}

// FieldCategorizer groups extracted fields into semantic categories.
type FieldCategorizer interface {
	Categorize(fields domain.FieldSet) domain.CategorizedFieldSet
}

// QualityAssessor scores an extraction result.
type QualityAssessor interface {
	Assess(docType domain.DocumentType, fields domain.FieldSet) domain.QualityReport
}

// SchemeEvaluator evaluates an applicant profile against the active scheme
// catalog snapshot.
type SchemeEvaluator interface {
	Evaluate(profile domain.ApplicantProfile) []domain.EligibilityResult
}

// RecommendationRanker orders eligibility results and derives the overall
// recommendation.
type RecommendationRanker interface {
	Rank(results []domain.EligibilityResult, extractionAccuracy int) domain.Recommendation
}

// CatalogReloader swaps in a new scheme catalog version without interrupting
// in-flight evaluations.
type CatalogReloader interface {
	Reload(ctx context.Context) (version string, schemes int, err error)
}
