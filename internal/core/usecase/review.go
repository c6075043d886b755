package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
)

// ReviewUseCase applies reviewer decisions. Transitions go through the
// repository's compare-and-set, so of two concurrent actions on the same
// document exactly one wins and the other gets ErrConflictingTransition.
type ReviewUseCase struct {
	repo     ports.DocumentRepository
	audit    ports.AuditRepository
	analyzer *Analyzer
	queue    ports.MessageQueue
}

func NewReviewUseCase(
	repo ports.DocumentRepository,
	audit ports.AuditRepository,
	analyzer *Analyzer,
	queue ports.MessageQueue,
) *ReviewUseCase {
	return &ReviewUseCase{
		repo:     repo,
		audit:    audit,
		analyzer: analyzer,
		queue:    queue,
	}
}

func (uc *ReviewUseCase) Review(ctx context.Context, cmd domain.ReviewCommand) (*domain.Document, error) {
	outcome, ok := domain.ReviewOutcome(cmd.Action)
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review document",
			fmt.Errorf("unknown review action %q", cmd.Action))
	}
	if cmd.ActorID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review document",
			fmt.Errorf("actor id is required"))
	}

	if err := uc.repo.TransitionStatus(ctx, cmd.DocumentID, domain.StatusNeedsReview, outcome); err != nil {
		return nil, err
	}
	if err := uc.appendAudit(ctx, cmd.DocumentID, cmd.ActorID, domain.StatusNeedsReview, outcome, cmd.Comments); err != nil {
		return nil, err
	}

	return uc.repo.GetByID(ctx, cmd.DocumentID)
}

// ApplyCorrection merges reviewer field edits into a correction_required
// document and re-runs the downstream pipeline stages on the edited fields.
// Reviewer-supplied values are authoritative, so they carry confidence 1.
func (uc *ReviewUseCase) ApplyCorrection(ctx context.Context, documentID, actorID string, edits map[string]any) (*domain.Document, error) {
	if len(edits) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "apply correction",
			fmt.Errorf("no field edits supplied"))
	}

	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if err := uc.step(ctx, documentID, actorID, domain.StatusCorrectionRequired, domain.StatusExtracting, ""); err != nil {
		return nil, err
	}

	fields := make(domain.FieldSet, len(doc.Fields)+len(edits))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	for key, value := range edits {
		fields[key] = domain.ExtractedField{Key: key, Value: value, Confidence: 1}
	}
	if err := uc.repo.SaveFields(ctx, documentID, fields); err != nil {
		return nil, fmt.Errorf("save corrected fields: %w", err)
	}

	if err := uc.step(ctx, documentID, actorID, domain.StatusExtracting, domain.StatusValidating, ""); err != nil {
		return nil, err
	}

	categorized, report, rec, err := uc.analyzer.Analyze(ctx, doc.Type, fields, len(fields) == 0)
	if err != nil {
		return nil, fmt.Errorf("analyze corrected fields: %w", err)
	}
	if err := uc.repo.SaveAnalysis(ctx, documentID, categorized, report, rec); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}

	if err := uc.step(ctx, documentID, actorID, domain.StatusValidating, domain.StatusNeedsReview, ""); err != nil {
		return nil, err
	}

	return uc.repo.GetByID(ctx, documentID)
}

// Retry re-queues a document stuck in error. The pipeline restarts from the
// stored original.
func (uc *ReviewUseCase) Retry(ctx context.Context, documentID, actorID string) (*domain.Document, error) {
	if err := uc.step(ctx, documentID, actorID, domain.StatusError, domain.StatusUploading, "manual retry"); err != nil {
		return nil, err
	}
	if err := uc.queue.PublishDocumentQueued(ctx, documentID); err != nil {
		return nil, fmt.Errorf("publish pipeline event: %w", err)
	}
	return uc.repo.GetByID(ctx, documentID)
}

func (uc *ReviewUseCase) step(ctx context.Context, documentID, actorID string, from, to domain.DocumentStatus, comment string) error {
	if err := uc.repo.TransitionStatus(ctx, documentID, from, to); err != nil {
		return err
	}
	return uc.appendAudit(ctx, documentID, actorID, from, to, comment)
}

func (uc *ReviewUseCase) appendAudit(ctx context.Context, documentID, actorID string, from, to domain.DocumentStatus, comment string) error {
	return uc.audit.Append(ctx, domain.AuditEntry{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Actor:      actorID,
		FromStatus: from,
		ToStatus:   to,
		Comment:    comment,
		At:         time.Now().UTC(),
	})
}
