package eligibility

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// Catalog is one immutable version of the scheme reference data. Evaluations
// snapshot the catalog they start with, so a reload never affects runs
// already in flight.
type Catalog struct {
	Version  string
	Schemes  []domain.SchemeDefinition
	LoadedAt time.Time
}

type catalogFile struct {
	Version string                    `yaml:"version"`
	Schemes []domain.SchemeDefinition `yaml:"schemes"`
}

var validOperators = map[string]bool{
	"eq": true, "ne": true, "lt": true, "lte": true,
	"gt": true, "gte": true, "in": true, "contains": true, "exists": true,
}

// LoadCatalog reads and validates a scheme catalog. Any defect makes the
// whole load fail: the engine must never evaluate against a partial catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalogLoad, "read catalog", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.WrapError(domain.ErrCatalogLoad, "parse catalog", err)
	}
	if err := validateCatalog(file.Schemes); err != nil {
		return nil, domain.WrapError(domain.ErrCatalogLoad, "validate catalog", err)
	}
	return &Catalog{
		Version:  file.Version,
		Schemes:  file.Schemes,
		LoadedAt: time.Now().UTC(),
	}, nil
}

func validateCatalog(schemes []domain.SchemeDefinition) error {
	if len(schemes) == 0 {
		return fmt.Errorf("no schemes declared")
	}
	seen := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("scheme with empty id or name")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate scheme id %q", s.ID)
		}
		seen[s.ID] = true

		for _, cond := range append(append([]domain.RuleCondition{}, s.Conditions...), s.Urgency...) {
			if cond.Attribute == "" {
				return fmt.Errorf("scheme %s: condition with empty attribute", s.ID)
			}
			if !validOperators[cond.Operator] {
				return fmt.Errorf("scheme %s: unknown operator %q", s.ID, cond.Operator)
			}
		}

		switch s.Benefit.Type {
		case domain.BenefitFixed, domain.BenefitPerHa, domain.BenefitPerMember:
		default:
			return fmt.Errorf("scheme %s: unknown benefit type %q", s.ID, s.Benefit.Type)
		}
		switch s.Benefit.Period {
		case domain.PeriodAnnual, domain.PeriodOneTime:
		default:
			return fmt.Errorf("scheme %s: unknown benefit period %q", s.ID, s.Benefit.Period)
		}
		if s.Benefit.Max > 0 && s.Benefit.Max < s.Benefit.Min {
			return fmt.Errorf("scheme %s: benefit max below min", s.ID)
		}
	}
	return nil
}

// CatalogStore holds the current catalog behind an atomic pointer so reads
// never lock and reloads swap a fully validated replacement in one step.
type CatalogStore struct {
	path    string
	current atomic.Pointer[Catalog]
}

func NewCatalogStore(path string) (*CatalogStore, error) {
	catalog, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	store := &CatalogStore{path: path}
	store.current.Store(catalog)
	return store, nil
}

func (s *CatalogStore) Current() *Catalog {
	return s.current.Load()
}

// Reload re-reads the catalog file. On failure the previous version stays
// active.
func (s *CatalogStore) Reload() (*Catalog, error) {
	catalog, err := LoadCatalog(s.path)
	if err != nil {
		return nil, err
	}
	s.current.Store(catalog)
	return catalog, nil
}
