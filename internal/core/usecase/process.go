package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
)

const systemActor = "system"

// PipelineObserver receives stage-level telemetry from document processing.
type PipelineObserver interface {
	ObserveStage(stage string, duration time.Duration)
	ObserveExtractedFields(docType domain.DocumentType, count int)
}

// ProcessDocumentUseCase drives one document through the full pipeline:
// recognition, field extraction, categorization, quality + eligibility, and
// ranking. Documents are processed independently; a failure here never
// touches any other document's state.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	audit      ports.AuditRepository
	storage    ports.ObjectStorage
	recognizer ports.Recognizer
	extractor  ports.FieldExtractor
	analyzer   *Analyzer
	observer   PipelineObserver

	recognizeTimeout time.Duration
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	audit ports.AuditRepository,
	storage ports.ObjectStorage,
	recognizer ports.Recognizer,
	extractor ports.FieldExtractor,
	analyzer *Analyzer,
	recognizeTimeout time.Duration,
) *ProcessDocumentUseCase {
	if recognizeTimeout <= 0 {
		recognizeTimeout = 2 * time.Minute
	}
	return &ProcessDocumentUseCase{
		repo:             repo,
		audit:            audit,
		storage:          storage,
		recognizer:       recognizer,
		extractor:        extractor,
		analyzer:         analyzer,
		recognizeTimeout: recognizeTimeout,
	}
}

// WithObserver attaches stage telemetry. Nil observers are allowed and make
// every observation a no-op.
func (uc *ProcessDocumentUseCase) WithObserver(observer PipelineObserver) *ProcessDocumentUseCase {
	uc.observer = observer
	return uc
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	if doc.Status != domain.StatusUploading {
		// A concurrent worker or a reviewer already moved it on.
		return domain.WrapError(domain.ErrConflictingTransition, "start pipeline",
			fmt.Errorf("document %s is %s, want %s", documentID, doc.Status, domain.StatusUploading))
	}

	if err := uc.runPipeline(ctx, doc); err != nil {
		if domain.IsKind(err, domain.ErrConflictingTransition) {
			return err
		}
		// The pipeline context may already be past its deadline. The error
		// status write must still land, otherwise the document is stuck in a
		// non-terminal status with no retry path.
		if failErr := uc.markError(context.WithoutCancel(ctx), doc, err); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}
	return nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) error {
	if err := uc.transition(ctx, doc, domain.StatusUploading, domain.StatusProcessing); err != nil {
		return err
	}

	stageStart := time.Now()
	recognition, err := uc.recognize(ctx, doc)
	if err != nil {
		return err
	}
	uc.observeStage("recognize", stageStart)
	if err := uc.repo.SaveRecognition(ctx, doc.ID, recognition.ExtractedText, recognition.Entities); err != nil {
		return fmt.Errorf("save recognition output: %w", err)
	}

	if err := uc.transition(ctx, doc, domain.StatusProcessing, domain.StatusExtracting); err != nil {
		return err
	}

	stageStart = time.Now()
	fields, lowYield := uc.extractor.Extract(doc.Type, recognition.ExtractedText, recognition.Entities)
	uc.observeStage("extract", stageStart)
	if uc.observer != nil {
		uc.observer.ObserveExtractedFields(doc.Type, len(fields))
	}
	if err := uc.repo.SaveFields(ctx, doc.ID, fields); err != nil {
		return fmt.Errorf("save extracted fields: %w", err)
	}

	if err := uc.transition(ctx, doc, domain.StatusExtracting, domain.StatusValidating); err != nil {
		return err
	}

	stageStart = time.Now()
	categorized, report, rec, err := uc.analyzer.Analyze(ctx, doc.Type, fields, lowYield)
	if err != nil {
		return fmt.Errorf("analyze extraction: %w", err)
	}
	uc.observeStage("analyze", stageStart)
	if err := uc.repo.SaveAnalysis(ctx, doc.ID, categorized, report, rec); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	// Extraction always lands in review, clean or not. Verification is a
	// human decision.
	return uc.transition(ctx, doc, domain.StatusValidating, domain.StatusNeedsReview)
}

func (uc *ProcessDocumentUseCase) recognize(ctx context.Context, doc *domain.Document) (*domain.RecognitionResult, error) {
	data, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer data.Close()

	recognizeCtx, cancel := context.WithTimeout(ctx, uc.recognizeTimeout)
	defer cancel()

	recognition, err := uc.recognizer.Recognize(recognizeCtx, doc.Filename, doc.MimeType, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.WrapError(domain.ErrUpstreamTimeout, "recognize document", err)
		}
		return nil, fmt.Errorf("recognize document: %w", err)
	}
	return recognition, nil
}

func (uc *ProcessDocumentUseCase) transition(ctx context.Context, doc *domain.Document, from, to domain.DocumentStatus) error {
	if err := uc.repo.TransitionStatus(ctx, doc.ID, from, to); err != nil {
		return err
	}
	return uc.audit.Append(ctx, domain.AuditEntry{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Actor:      systemActor,
		FromStatus: from,
		ToStatus:   to,
		At:         time.Now().UTC(),
	})
}

func (uc *ProcessDocumentUseCase) observeStage(stage string, start time.Time) {
	if uc.observer != nil {
		uc.observer.ObserveStage(stage, time.Since(start))
	}
}

func (uc *ProcessDocumentUseCase) markError(ctx context.Context, doc *domain.Document, cause error) error {
	if err := uc.repo.MarkError(ctx, doc.ID, cause.Error()); err != nil {
		return err
	}
	return uc.audit.Append(ctx, domain.AuditEntry{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		Actor:      systemActor,
		FromStatus: doc.Status,
		ToStatus:   domain.StatusError,
		Comment:    cause.Error(),
		At:         time.Now().UTC(),
	})
}
