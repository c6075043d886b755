package categorize

import (
	"sort"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

type Categorizer struct {
	table *Table
}

func New(table *Table) *Categorizer {
	if table == nil {
		table = DefaultTable()
	}
	return &Categorizer{table: table}
}

// Categorize groups extracted fields into the table's categories, preserving
// the table's declared field order. Keys the table does not know land in the
// "Other Information" bucket, alphabetically, so no field is ever dropped.
// Deterministic and side-effect-free.
func (c *Categorizer) Categorize(fields domain.FieldSet) domain.CategorizedFieldSet {
	if len(fields) == 0 {
		return domain.CategorizedFieldSet{}
	}

	placed := make(map[string]bool, len(fields))
	var out domain.CategorizedFieldSet

	for _, cat := range c.table.Categories {
		var bucket []domain.ExtractedField
		for _, key := range cat.Keys {
			field, ok := fields[key]
			if !ok || placed[key] {
				continue
			}
			bucket = append(bucket, field)
			placed[key] = true
		}
		if len(bucket) > 0 {
			out = append(out, domain.FieldCategory{Name: cat.Name, Fields: bucket})
		}
	}

	var leftover []string
	for key := range fields {
		if !placed[key] {
			leftover = append(leftover, key)
		}
	}
	if len(leftover) > 0 {
		sort.Strings(leftover)
		bucket := make([]domain.ExtractedField, 0, len(leftover))
		for _, key := range leftover {
			bucket = append(bucket, fields[key])
		}
		out = append(out, domain.FieldCategory{Name: domain.CategoryOther, Fields: bucket})
	}

	return out
}
