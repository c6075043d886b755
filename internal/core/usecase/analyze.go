package usecase

import (
	"context"
	"fmt"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
)

// Analyzer runs the downstream half of the pipeline: categorization, quality
// assessment, eligibility evaluation and ranking. Quality and eligibility
// only depend on the categorizer's output, so they run concurrently.
type Analyzer struct {
	categorizer ports.FieldCategorizer
	assessor    ports.QualityAssessor
	evaluator   ports.SchemeEvaluator
	ranker      ports.RecommendationRanker
}

func NewAnalyzer(
	categorizer ports.FieldCategorizer,
	assessor ports.QualityAssessor,
	evaluator ports.SchemeEvaluator,
	ranker ports.RecommendationRanker,
) *Analyzer {
	return &Analyzer{
		categorizer: categorizer,
		assessor:    assessor,
		evaluator:   evaluator,
		ranker:      ranker,
	}
}

func (a *Analyzer) Analyze(
	ctx context.Context,
	docType domain.DocumentType,
	fields domain.FieldSet,
	lowYield bool,
) (domain.CategorizedFieldSet, *domain.QualityReport, *domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	categorized := a.categorizer.Categorize(fields)

	var report domain.QualityReport
	assessed := make(chan struct{})
	go func() {
		defer close(assessed)
		report = a.assessor.Assess(docType, fields)
	}()

	profile := domain.ProfileFromFields(categorized)
	results := a.evaluator.Evaluate(profile)

	<-assessed
	if lowYield {
		report.Warnings = append([]string{
			fmt.Sprintf("low extraction yield: no fields recovered for document type %s", docType),
		}, report.Warnings...)
	}

	rec := a.ranker.Rank(results, report.Accuracy)
	return categorized, &report, &rec, nil
}
