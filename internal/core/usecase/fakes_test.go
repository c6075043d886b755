package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

type transitionCall struct {
	from domain.DocumentStatus
	to   domain.DocumentStatus
}

// repoFake enforces the same compare-and-set semantics as the real
// repository so usecase tests exercise genuine transition conflicts.
type repoFake struct {
	doc    *domain.Document
	getErr error

	created          *domain.Document
	statusCalls      []transitionCall
	markedError      string
	savedRawText     string
	savedFields      domain.FieldSet
	savedCategorized domain.CategorizedFieldSet
	savedQuality     *domain.QualityReport
	savedRec         *domain.Recommendation
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	f.created = doc
	return nil
}

func (f *repoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *repoFake) TransitionStatus(_ context.Context, id string, from, to domain.DocumentStatus) error {
	f.statusCalls = append(f.statusCalls, transitionCall{from: from, to: to})
	if f.doc.Status != from {
		return domain.WrapError(domain.ErrConflictingTransition, "transition status",
			fmt.Errorf("document %s is %s, wanted %s -> %s", id, f.doc.Status, from, to))
	}
	f.doc.Status = to
	return nil
}

func (f *repoFake) MarkError(ctx context.Context, _ string, errMessage string) error {
	// Mirror a real database call: a dead context means no write happens.
	if err := ctx.Err(); err != nil {
		return err
	}
	f.markedError = errMessage
	f.doc.Status = domain.StatusError
	return nil
}

func (f *repoFake) SaveRecognition(_ context.Context, _ string, rawText string, entities []domain.Entity) error {
	f.savedRawText = rawText
	f.doc.RawText = rawText
	f.doc.Entities = entities
	return nil
}

func (f *repoFake) SaveFields(_ context.Context, _ string, fields domain.FieldSet) error {
	f.savedFields = fields
	f.doc.Fields = fields
	return nil
}

func (f *repoFake) SaveAnalysis(
	_ context.Context,
	_ string,
	categorized domain.CategorizedFieldSet,
	quality *domain.QualityReport,
	rec *domain.Recommendation,
) error {
	f.savedCategorized = categorized
	f.savedQuality = quality
	f.savedRec = rec
	return nil
}

type auditFake struct {
	entries []domain.AuditEntry
}

func (f *auditFake) Append(_ context.Context, entry domain.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *auditFake) ListByDocument(context.Context, string) ([]domain.AuditEntry, error) {
	return f.entries, nil
}

type storageFake struct {
	content  string
	savedKey string
	openErr  error
}

func (f *storageFake) Save(_ context.Context, key string, _ io.Reader) error {
	f.savedKey = key
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishDocumentQueued(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentQueued(context.Context, func(context.Context, string) error) error {
	return nil
}

type recognizerFake struct {
	result *domain.RecognitionResult
	err    error
}

func (f *recognizerFake) Recognize(context.Context, string, string, io.Reader) (*domain.RecognitionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type extractorFake struct {
	fields   domain.FieldSet
	lowYield bool
}

func (f *extractorFake) Extract(domain.DocumentType, string, []domain.Entity) (domain.FieldSet, bool) {
	return f.fields, f.lowYield
}

type categorizerFake struct{}

func (categorizerFake) Categorize(fields domain.FieldSet) domain.CategorizedFieldSet {
	if len(fields) == 0 {
		return domain.CategorizedFieldSet{}
	}
	bucket := make([]domain.ExtractedField, 0, len(fields))
	for _, f := range fields {
		bucket = append(bucket, f)
	}
	return domain.CategorizedFieldSet{{Name: "All", Fields: bucket}}
}

type assessorFake struct {
	report domain.QualityReport
}

func (f *assessorFake) Assess(domain.DocumentType, domain.FieldSet) domain.QualityReport {
	return f.report
}

type evaluatorFake struct {
	results  []domain.EligibilityResult
	profiles []domain.ApplicantProfile
}

func (f *evaluatorFake) Evaluate(profile domain.ApplicantProfile) []domain.EligibilityResult {
	f.profiles = append(f.profiles, profile)
	return f.results
}

type rankerFake struct {
	rec domain.Recommendation
}

func (f *rankerFake) Rank([]domain.EligibilityResult, int) domain.Recommendation {
	return f.rec
}

func newAnalyzerWithFakes() *Analyzer {
	return NewAnalyzer(
		categorizerFake{},
		&assessorFake{report: domain.QualityReport{Completeness: 50, Accuracy: 80, Consistency: 100, Warnings: []string{}}},
		&evaluatorFake{results: []domain.EligibilityResult{
			{SchemeID: "pm-kisan", State: domain.StateEvaluated, Eligible: true},
		}},
		&rankerFake{rec: domain.Recommendation{Confidence: domain.ConfidenceMedium, ConfidenceScore: 60}},
	)
}
