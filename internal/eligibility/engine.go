package eligibility

import (
	"fmt"
	"strings"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// Thresholds tune priority assignment without code changes. Amounts compare
// against the estimated benefit in rupees.
type Thresholds struct {
	HighBenefit   float64
	MediumBenefit float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		HighBenefit:   150000,
		MediumBenefit: 10000,
	}
}

type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	if thresholds.HighBenefit <= 0 || thresholds.MediumBenefit <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Engine{thresholds: thresholds}
}

// Evaluate runs every scheme of the catalog against the profile, one result
// per scheme in catalog order. Rules are declarative predicates: a missing
// profile attribute marks the scheme not_evaluated with the attribute named,
// never silently ineligible. Pure function of its inputs.
func (e *Engine) Evaluate(profile domain.ApplicantProfile, catalog *Catalog) []domain.EligibilityResult {
	results := make([]domain.EligibilityResult, 0, len(catalog.Schemes))
	for _, scheme := range catalog.Schemes {
		results = append(results, e.evaluateScheme(profile, scheme))
	}
	return results
}

func (e *Engine) evaluateScheme(profile domain.ApplicantProfile, scheme domain.SchemeDefinition) domain.EligibilityResult {
	result := domain.EligibilityResult{
		SchemeID:   scheme.ID,
		SchemeName: scheme.Name,
		State:      domain.StateEvaluated,
	}

	for _, cond := range scheme.Conditions {
		ok, err := evalCondition(profile, cond)
		if err != nil {
			result.State = domain.StateNotEvaluated
			result.Reason = err.Error()
			return result
		}
		if !ok {
			result.Eligible = false
			result.Reason = failureReason(profile, cond)
			return result
		}
	}

	benefit, err := computeBenefit(scheme.Benefit, profile)
	if err != nil {
		result.State = domain.StateNotEvaluated
		result.Reason = err.Error()
		return result
	}

	result.Eligible = true
	result.BenefitAmount = benefit
	result.BenefitPeriod = scheme.Benefit.Period
	result.Priority = e.priority(scheme, profile, benefit)
	result.Reason = fmt.Sprintf("meets all %d eligibility conditions", len(scheme.Conditions))
	return result
}

// evalCondition evaluates one clause. The error return is reserved for
// missing attributes and unsupported operators; a false verdict means the
// clause was evaluated and failed.
func evalCondition(profile domain.ApplicantProfile, cond domain.RuleCondition) (bool, error) {
	value, present := profile.Attribute(cond.Attribute)

	if cond.Operator == "exists" {
		return present, nil
	}
	if !present {
		return false, domain.WrapError(domain.ErrMissingAttribute,
			fmt.Sprintf("evaluate %s", cond.Attribute),
			fmt.Errorf("attribute %q not in profile", cond.Attribute))
	}

	switch cond.Operator {
	case "eq":
		return looseEqual(value, cond.Value), nil
	case "ne":
		return !looseEqual(value, cond.Value), nil
	case "lt", "lte", "gt", "gte":
		return compareNumeric(cond.Operator, value, cond.Value)
	case "in":
		list, ok := cond.Value.([]any)
		if !ok {
			return false, fmt.Errorf("condition on %s: 'in' needs a list value", cond.Attribute)
		}
		for _, item := range list {
			if looseEqual(value, item) {
				return true, nil
			}
		}
		return false, nil
	case "contains":
		have, _ := value.(string)
		want := fmt.Sprintf("%v", cond.Value)
		return strings.Contains(strings.ToLower(have), strings.ToLower(want)), nil
	default:
		return false, fmt.Errorf("condition on %s: unsupported operator %q", cond.Attribute, cond.Operator)
	}
}

func looseEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return strings.EqualFold(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func compareNumeric(op string, a, b any) (bool, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return false, fmt.Errorf("operator %q needs numeric operands, got %T and %T", op, a, b)
	}
	switch op {
	case "lt":
		return af < bf, nil
	case "lte":
		return af <= bf, nil
	case "gt":
		return af > bf, nil
	default:
		return af >= bf, nil
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func failureReason(profile domain.ApplicantProfile, cond domain.RuleCondition) string {
	value, _ := profile.Attribute(cond.Attribute)
	return fmt.Sprintf("%s %s %v not satisfied (have %v)", cond.Attribute, cond.Operator, cond.Value, value)
}

// computeBenefit applies the scheme's declared formula and clamps the result
// to the published range.
func computeBenefit(formula domain.BenefitFormula, profile domain.ApplicantProfile) (float64, error) {
	var amount float64
	switch formula.Type {
	case domain.BenefitFixed:
		amount = formula.Rate
	case domain.BenefitPerHa:
		if profile.LandHolding == nil {
			return 0, domain.WrapError(domain.ErrMissingAttribute, "compute benefit",
				fmt.Errorf("attribute %q not in profile", "landHolding"))
		}
		amount = formula.Rate * *profile.LandHolding
	case domain.BenefitPerMember:
		if profile.FamilySize == nil {
			return 0, domain.WrapError(domain.ErrMissingAttribute, "compute benefit",
				fmt.Errorf("attribute %q not in profile", "familySize"))
		}
		amount = formula.Rate * float64(*profile.FamilySize)
	default:
		return 0, fmt.Errorf("unknown benefit formula %q", formula.Type)
	}

	if amount < formula.Min {
		amount = formula.Min
	}
	if formula.Max > 0 && amount > formula.Max {
		amount = formula.Max
	}
	return amount, nil
}

// priority is Critical only when the scheme serves an immediate need and the
// profile demonstrably shows the gap; otherwise it follows the configured
// benefit thresholds.
func (e *Engine) priority(scheme domain.SchemeDefinition, profile domain.ApplicantProfile, benefit float64) domain.PriorityLevel {
	if scheme.ImmediateNeed && len(scheme.Urgency) > 0 {
		urgent := true
		for _, cond := range scheme.Urgency {
			ok, err := evalCondition(profile, cond)
			if err != nil || !ok {
				urgent = false
				break
			}
		}
		if urgent {
			return domain.PriorityCritical
		}
	}
	switch {
	case benefit >= e.thresholds.HighBenefit:
		return domain.PriorityHigh
	case benefit >= e.thresholds.MediumBenefit:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
