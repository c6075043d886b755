package eligibility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

func eligibleResult(id string, priority domain.PriorityLevel, benefit float64) domain.EligibilityResult {
	return domain.EligibilityResult{
		SchemeID: id, SchemeName: id, State: domain.StateEvaluated,
		Eligible: true, Priority: priority, BenefitAmount: benefit,
	}
}

func TestRankOrdersByGroupPriorityBenefitThenID(t *testing.T) {
	results := []domain.EligibilityResult{
		{SchemeID: "skipped", State: domain.StateNotEvaluated},
		{SchemeID: "failed", State: domain.StateEvaluated, Eligible: false},
		eligibleResult("low-benefit", domain.PriorityHigh, 1000),
		eligibleResult("critical", domain.PriorityCritical, 500),
		eligibleResult("b-tie", domain.PriorityHigh, 5000),
		eligibleResult("a-tie", domain.PriorityHigh, 5000),
	}

	rec := Rank(results, 90)

	order := make([]string, len(rec.Results))
	for i, r := range rec.Results {
		order[i] = r.SchemeID
	}
	require.Equal(t, []string{"critical", "a-tie", "b-tie", "low-benefit", "failed", "skipped"}, order)

	require.NotNil(t, rec.Primary)
	require.Equal(t, "critical", rec.Primary.SchemeID)
}

func TestRankIsDeterministicAcrossRuns(t *testing.T) {
	results := []domain.EligibilityResult{
		eligibleResult("beta", domain.PriorityMedium, 6000),
		eligibleResult("alpha", domain.PriorityMedium, 6000),
	}

	first := Rank(results, 80)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Rank(results, 80))
	}
	require.Equal(t, "alpha", first.Primary.SchemeID)
}

func TestRankConfidenceScalesWithEvaluatedFraction(t *testing.T) {
	results := []domain.EligibilityResult{
		eligibleResult("a", domain.PriorityMedium, 6000),
		{SchemeID: "b", State: domain.StateNotEvaluated},
	}

	rec := Rank(results, 90)
	require.Equal(t, 45, rec.ConfidenceScore, "half the catalog evaluated halves the score")
	require.Equal(t, domain.ConfidenceLow, rec.Confidence)

	full := Rank([]domain.EligibilityResult{eligibleResult("a", domain.PriorityMedium, 6000)}, 90)
	require.Equal(t, 90, full.ConfidenceScore)
	require.Equal(t, domain.ConfidenceHigh, full.Confidence)
}

func TestRankConfidenceBands(t *testing.T) {
	require.Equal(t, domain.ConfidenceHigh, confidenceLevel(75))
	require.Equal(t, domain.ConfidenceMedium, confidenceLevel(74))
	require.Equal(t, domain.ConfidenceMedium, confidenceLevel(50))
	require.Equal(t, domain.ConfidenceLow, confidenceLevel(49))
}

func TestRankSuccessProbability(t *testing.T) {
	results := []domain.EligibilityResult{
		eligibleResult("a", domain.PriorityMedium, 6000),
		{SchemeID: "b", State: domain.StateEvaluated, Eligible: false},
	}

	rec := Rank(results, 100)
	// Score 100, one of two evaluated schemes eligible.
	require.Equal(t, 0.5, rec.SuccessProbability)

	none := Rank([]domain.EligibilityResult{{SchemeID: "b", State: domain.StateNotEvaluated}}, 100)
	require.Zero(t, none.SuccessProbability)
	require.Nil(t, none.Primary)
}

func TestRankEmptyInput(t *testing.T) {
	rec := Rank(nil, 90)
	require.Empty(t, rec.Results)
	require.Nil(t, rec.Primary)
	require.Zero(t, rec.ConfidenceScore)
	require.Equal(t, domain.ConfidenceLow, rec.Confidence)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	results := []domain.EligibilityResult{
		eligibleResult("z", domain.PriorityLow, 100),
		eligibleResult("a", domain.PriorityHigh, 100),
	}
	_ = Rank(results, 90)
	require.Equal(t, "z", results[0].SchemeID, "ranking must work on a copy")
}
