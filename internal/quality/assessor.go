package quality

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/extraction"
)

// Deduction weights per detected consistency conflict. Consistency starts at
// 100 and floors at 0.
const (
	deductFutureDate     = 20
	deductZeroAreaSurvey = 15
	deductAreaOutOfRange = 10
	deductFamilySize     = 10
)

const maxPlausibleArea = 4000 // hectares, largest community claims on record are far below

var ifscFormat = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

type Config struct {
	// LowConfidenceThreshold flags fields extracted below this source
	// confidence. Tunable per deployment; 0.6 by convention.
	LowConfidenceThreshold float64
}

type Assessor struct {
	cfg Config
	now func() time.Time
}

func NewAssessor(cfg Config) *Assessor {
	if cfg.LowConfidenceThreshold <= 0 {
		cfg.LowConfidenceThreshold = 0.6
	}
	return &Assessor{cfg: cfg, now: time.Now}
}

// Assess scores one extraction pass. Read-only and idempotent: the same
// fields always produce the same report. Absent fields hurt completeness
// only, never accuracy.
func (a *Assessor) Assess(docType domain.DocumentType, fields domain.FieldSet) domain.QualityReport {
	report := domain.QualityReport{
		Consistency: 100,
		Warnings:    []string{},
	}

	expected := extraction.ExpectedKeys(docType)
	if len(expected) > 0 {
		present := 0
		for _, key := range expected {
			if _, ok := fields[key]; ok {
				present++
			}
		}
		report.Completeness = int(math.Round(float64(present) / float64(len(expected)) * 100))
	}

	if len(fields) > 0 {
		sum := 0.0
		for _, f := range fields {
			sum += f.Confidence
		}
		report.Accuracy = int(math.Round(sum / float64(len(fields)) * 100))
	}

	for _, key := range extraction.MandatoryKeys(docType) {
		if _, ok := fields[key]; !ok {
			report.Warnings = append(report.Warnings, fmt.Sprintf("mandatory field missing: %s", key))
		}
	}

	for _, key := range expected {
		f, ok := fields[key]
		if ok && f.Confidence < a.cfg.LowConfidenceThreshold {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low confidence for %s: %.2f", key, f.Confidence))
		}
	}

	deduction := a.checkConflicts(fields, &report)
	report.Consistency = max(0, 100-deduction)

	return report
}

func (a *Assessor) checkConflicts(fields domain.FieldSet, report *domain.QualityReport) int {
	deduction := 0

	for _, key := range []string{"applicationDate", "registrationDate", "issueDate", "resolutionDate"} {
		if raw, ok := stringValue(fields, key); ok {
			if t, err := time.Parse("2006-01-02", raw); err == nil && t.After(a.now()) {
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s is in the future: %s", key, raw))
				deduction += deductFutureDate
			}
		}
	}

	area, hasArea := numberValue(fields, "landArea")
	_, hasSurvey := fields["surveyNumber"]
	switch {
	case hasArea && area == 0 && hasSurvey:
		report.Warnings = append(report.Warnings, "declared land area is zero but a survey number is present")
		deduction += deductZeroAreaSurvey
	case hasArea && (area < 0 || area > maxPlausibleArea):
		report.Warnings = append(report.Warnings, fmt.Sprintf("land area out of plausible range: %v", area))
		deduction += deductAreaOutOfRange
	}

	if size, ok := numberValue(fields, "familySize"); ok && (size < 1 || size > 30) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("family size out of plausible range: %v", size))
		deduction += deductFamilySize
	}

	if ifsc, ok := stringValue(fields, "ifscCode"); ok && !ifscFormat.MatchString(ifsc) {
		report.Warnings = append(report.Warnings, fmt.Sprintf("malformed IFSC code: %s", ifsc))
		deduction += deductAreaOutOfRange
	}

	return deduction
}

func stringValue(fields domain.FieldSet, key string) (string, bool) {
	f, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := f.Value.(string)
	return s, ok
}

func numberValue(fields domain.FieldSet, key string) (float64, bool) {
	f, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
