package extraction

import (
	"sort"
	"strings"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// textFallbackConfidence is assigned to fields recovered from raw text when
// the entity list carried nothing usable. Regex matches are reliable but
// carry no model confidence of their own.
const textFallbackConfidence = 0.7

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract walks the field schema for the document type and fills each
// expected key from the best-confidence matching entity, falling back to
// raw-text patterns. Keys with no usable source are omitted, never
// defaulted. The second return reports low yield: nothing could be
// extracted, which the pipeline surfaces as a warning instead of an error.
// Pure function of its inputs.
func (e *Extractor) Extract(docType domain.DocumentType, rawText string, entities []domain.Entity) (domain.FieldSet, bool) {
	specs := Schema(docType)
	fields := make(domain.FieldSet, len(specs))

	for _, spec := range specs {
		if field, ok := extractField(spec, rawText, entities); ok {
			fields[spec.Key] = field
		}
	}

	return fields, len(fields) == 0
}

func extractField(spec FieldSpec, rawText string, entities []domain.Entity) (domain.ExtractedField, bool) {
	if spec.Kind == KindBoundaries {
		b, ok := extractBoundaries(rawText)
		if !ok {
			return domain.ExtractedField{}, false
		}
		return domain.ExtractedField{Key: spec.Key, Value: b, Confidence: textFallbackConfidence}, true
	}

	for _, ent := range candidates(spec.EntityTag, entities) {
		value, err := coerce(spec.Kind, ent.Value)
		if err != nil {
			continue
		}
		if !formatOK(spec, ent.Value) {
			continue
		}
		return domain.ExtractedField{Key: spec.Key, Value: value, Confidence: ent.Confidence}, true
	}

	if spec.TextPattern != nil {
		if m := spec.TextPattern.FindStringSubmatch(rawText); m != nil {
			raw := m[0]
			if len(m) > 1 {
				raw = m[1]
			}
			if value, err := coerce(spec.Kind, raw); err == nil && formatOK(spec, raw) {
				return domain.ExtractedField{Key: spec.Key, Value: value, Confidence: textFallbackConfidence}, true
			}
		}
	}

	return domain.ExtractedField{}, false
}

// candidates returns entities carrying the wanted tag, best confidence
// first. Sorting falls back to the original index so equal-confidence runs
// stay deterministic.
func candidates(tag string, entities []domain.Entity) []domain.Entity {
	if tag == "" {
		return nil
	}
	var matched []domain.Entity
	for _, ent := range entities {
		if strings.EqualFold(ent.Tag, tag) {
			matched = append(matched, ent)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Confidence > matched[j].Confidence
	})
	return matched
}

func formatOK(spec FieldSpec, raw string) bool {
	if spec.Format == nil {
		return true
	}
	return spec.Format.MatchString(strings.TrimSpace(raw))
}
