package eligibility

import (
	"math"
	"sort"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// Rank orders eligibility results and derives the overall recommendation.
// Ordering: eligible schemes by priority then estimated benefit, both
// descending, with scheme id as the final tiebreak so re-runs over the same
// input always produce the same order. Evaluated-but-ineligible schemes
// follow, not_evaluated schemes last. Pure function of its inputs.
func Rank(results []domain.EligibilityResult, extractionAccuracy int) domain.Recommendation {
	ranked := make([]domain.EligibilityResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ga, gb := rankGroup(a), rankGroup(b); ga != gb {
			return ga < gb
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.BenefitAmount != b.BenefitAmount {
			return a.BenefitAmount > b.BenefitAmount
		}
		return a.SchemeID < b.SchemeID
	})

	rec := domain.Recommendation{Results: ranked}

	for i := range ranked {
		if ranked[i].Eligible {
			primary := ranked[i]
			rec.Primary = &primary
			break
		}
	}

	evaluated, eligible := 0, 0
	for _, r := range ranked {
		if r.State == domain.StateEvaluated {
			evaluated++
			if r.Eligible {
				eligible++
			}
		}
	}

	// Confidence combines how accurate the extraction was with how much of
	// the catalog could actually be evaluated against it.
	evaluatedFraction := 0.0
	if len(ranked) > 0 {
		evaluatedFraction = float64(evaluated) / float64(len(ranked))
	}
	rec.ConfidenceScore = int(math.Round(float64(extractionAccuracy) * evaluatedFraction))
	rec.Confidence = confidenceLevel(rec.ConfidenceScore)

	if evaluated > 0 {
		rec.SuccessProbability = math.Round(float64(rec.ConfidenceScore)/100*float64(eligible)/float64(evaluated)*100) / 100
	}

	return rec
}

func rankGroup(r domain.EligibilityResult) int {
	switch {
	case r.Eligible:
		return 0
	case r.State == domain.StateEvaluated:
		return 1
	default:
		return 2
	}
}

func confidenceLevel(score int) domain.ConfidenceLevel {
	switch {
	case score >= 75:
		return domain.ConfidenceHigh
	case score >= 50:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
