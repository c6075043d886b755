package eligibility

import (
	"context"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// Service binds the rule engine to the live catalog store. Each Evaluate
// call snapshots the catalog pointer once, so a concurrent reload cannot mix
// scheme versions within a single run.
type Service struct {
	engine *Engine
	store  *CatalogStore
}

func NewService(engine *Engine, store *CatalogStore) *Service {
	return &Service{engine: engine, store: store}
}

func (s *Service) Evaluate(profile domain.ApplicantProfile) []domain.EligibilityResult {
	return s.engine.Evaluate(profile, s.store.Current())
}

func (s *Service) Rank(results []domain.EligibilityResult, extractionAccuracy int) domain.Recommendation {
	return Rank(results, extractionAccuracy)
}

func (s *Service) Reload(_ context.Context) (string, int, error) {
	catalog, err := s.store.Reload()
	if err != nil {
		return "", 0, err
	}
	return catalog.Version, len(catalog.Schemes), nil
}
