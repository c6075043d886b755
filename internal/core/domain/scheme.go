package domain

import (
	"encoding/json"
	"fmt"
)

type PriorityLevel int

const (
	PriorityLow PriorityLevel = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p PriorityLevel) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

func (p PriorityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PriorityLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Critical":
		*p = PriorityCritical
	case "High":
		*p = PriorityHigh
	case "Medium":
		*p = PriorityMedium
	case "Low":
		*p = PriorityLow
	default:
		return fmt.Errorf("unknown priority level %q", s)
	}
	return nil
}

// RuleCondition is one declarative clause of a scheme's eligibility predicate.
// Supported operators: eq, ne, lt, lte, gt, gte, in, contains, exists.
type RuleCondition struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Operator  string `json:"operator" yaml:"operator"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// BenefitFormula computes the estimated benefit from profile attributes.
// Type is one of: fixed, per_hectare (rate scaled by landHolding),
// per_member (rate scaled by familySize). Amounts are clamped to [Min,Max]
// when Max > 0.
type BenefitFormula struct {
	Type   string  `json:"type" yaml:"type"`
	Rate   float64 `json:"rate" yaml:"rate"`
	Min    float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Period string  `json:"period" yaml:"period"`
}

const (
	BenefitFixed     = "fixed"
	BenefitPerHa     = "per_hectare"
	BenefitPerMember = "per_member"

	PeriodAnnual  = "annual"
	PeriodOneTime = "one_time"
)

// SchemeDefinition is static reference data describing one government benefit
// scheme. Loaded once per catalog version, immutable afterwards.
type SchemeDefinition struct {
	ID            string          `json:"id" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Ministries    []string        `json:"ministries" yaml:"ministries"`
	Category      string          `json:"category" yaml:"category"`
	Agency        string          `json:"agency" yaml:"agency"`
	TimelineDays  int             `json:"timeline_days" yaml:"timeline_days"`
	ImmediateNeed bool            `json:"immediate_need" yaml:"immediate_need"`
	Conditions    []RuleCondition `json:"conditions" yaml:"conditions"`
	Urgency       []RuleCondition `json:"urgency,omitempty" yaml:"urgency,omitempty"`
	Benefit       BenefitFormula  `json:"benefit" yaml:"benefit"`
}

type EvaluationState string

const (
	StateEvaluated    EvaluationState = "evaluated"
	StateNotEvaluated EvaluationState = "not_evaluated"
)

// EligibilityResult is the outcome of evaluating one scheme against one
// applicant profile. A missing profile attribute yields State=not_evaluated
// with the attribute named in Reason; that is distinct from ineligibility.
type EligibilityResult struct {
	SchemeID      string          `json:"scheme_id"`
	SchemeName    string          `json:"scheme_name"`
	State         EvaluationState `json:"state"`
	Eligible      bool            `json:"eligible"`
	Priority      PriorityLevel   `json:"priority,omitempty"`
	BenefitAmount float64         `json:"benefit_amount"`
	BenefitPeriod string          `json:"benefit_period,omitempty"`
	Reason        string          `json:"reason"`
}

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// Recommendation is the ranked eligibility outcome attached to a document for
// a single analysis run.
type Recommendation struct {
	Results            []EligibilityResult `json:"results"`
	Primary            *EligibilityResult  `json:"primary,omitempty"`
	Confidence         ConfidenceLevel     `json:"confidence"`
	ConfidenceScore    int                 `json:"confidence_score"`
	SuccessProbability float64             `json:"success_probability"`
}
