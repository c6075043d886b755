package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
)

// ExportUseCase projects stored pipeline output into exportable shapes. It
// only reads: an export never recomputes extraction or eligibility.
type ExportUseCase struct {
	repo ports.DocumentRepository
}

func NewExportUseCase(repo ports.DocumentRepository) *ExportUseCase {
	return &ExportUseCase{repo: repo}
}

// ExportFlat flattens the document's fields, quality scores and
// recommendation into a single key/value map suitable for CSV columns.
func (uc *ExportUseCase) ExportFlat(ctx context.Context, documentID string) (map[string]string, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	flat := map[string]string{
		"documentId":   doc.ID,
		"documentType": string(doc.Type),
		"status":       string(doc.Status),
		"createdAt":    doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	for _, cat := range doc.Categorized {
		for _, f := range cat.Fields {
			flat["field."+f.Key] = formatFieldValue(f.Value)
			flat["confidence."+f.Key] = strconv.FormatFloat(f.Confidence, 'f', 2, 64)
		}
	}

	if doc.Quality != nil {
		flat["quality.completeness"] = strconv.Itoa(doc.Quality.Completeness)
		flat["quality.accuracy"] = strconv.Itoa(doc.Quality.Accuracy)
		flat["quality.consistency"] = strconv.Itoa(doc.Quality.Consistency)
		flat["quality.warnings"] = strconv.Itoa(len(doc.Quality.Warnings))
	}

	if rec := doc.Recommendation; rec != nil {
		flat["recommendation.confidence"] = string(rec.Confidence)
		flat["recommendation.confidenceScore"] = strconv.Itoa(rec.ConfidenceScore)
		flat["recommendation.successProbability"] = strconv.FormatFloat(rec.SuccessProbability, 'f', 2, 64)
		if rec.Primary != nil {
			flat["recommendation.primaryScheme"] = rec.Primary.SchemeID
			flat["recommendation.primaryBenefit"] = strconv.FormatFloat(rec.Primary.BenefitAmount, 'f', 0, 64)
			flat["recommendation.primaryPriority"] = rec.Primary.Priority.String()
		}
	}

	return flat, nil
}

// ExportCSV renders the flat projection as two-column CSV with keys sorted
// for a stable layout.
func (uc *ExportUseCase) ExportCSV(ctx context.Context, documentID string) ([]byte, error) {
	flat, err := uc.ExportFlat(ctx, documentID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"key", "value"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, k := range keys {
		if err := w.Write([]string{k, flat[k]}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders a workbook with one sheet of categorized fields and one
// of the ranked schemes.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context, documentID string) ([]byte, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer book.Close()

	const fieldsSheet = "Fields"
	if err := book.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(book, fieldsSheet, 1, []any{"Category", "Field", "Value", "Confidence"}); err != nil {
		return nil, err
	}
	row := 2
	for _, cat := range doc.Categorized {
		for _, f := range cat.Fields {
			if err := writeRow(book, fieldsSheet, row, []any{cat.Name, f.Key, formatFieldValue(f.Value), f.Confidence}); err != nil {
				return nil, err
			}
			row++
		}
	}

	if rec := doc.Recommendation; rec != nil {
		const schemesSheet = "Schemes"
		if _, err := book.NewSheet(schemesSheet); err != nil {
			return nil, fmt.Errorf("add sheet: %w", err)
		}
		if err := writeRow(book, schemesSheet, 1, []any{"Scheme", "State", "Eligible", "Priority", "Benefit", "Period", "Reason"}); err != nil {
			return nil, err
		}
		for i, r := range rec.Results {
			values := []any{r.SchemeName, string(r.State), r.Eligible, r.Priority.String(), r.BenefitAmount, r.BenefitPeriod, r.Reason}
			if err := writeRow(book, schemesSheet, i+2, values); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(book *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := book.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write sheet row: %w", err)
	}
	return nil
}

// formatFieldValue renders a field value in its canonical export form.
// Values read back from the database arrive JSON-decoded, so structured
// fields show up as generic maps and slices and must render identically to
// their typed in-memory counterparts.
func formatFieldValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case domain.Coordinates:
		return fmt.Sprintf("%v,%v", value.Lat, value.Lng)
	case domain.Boundaries:
		return fmt.Sprintf("north=%s; south=%s; east=%s; west=%s", value.North, value.South, value.East, value.West)
	case map[string]any:
		if c, ok := coordinatesFromMap(value); ok {
			return formatFieldValue(c)
		}
		if b, ok := boundariesFromMap(value); ok {
			return formatFieldValue(b)
		}
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+formatFieldValue(value[k]))
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(value, "; ")
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, formatFieldValue(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coordinatesFromMap(m map[string]any) (domain.Coordinates, bool) {
	if len(m) != 2 {
		return domain.Coordinates{}, false
	}
	lat, okLat := m["lat"].(float64)
	lng, okLng := m["lng"].(float64)
	if !okLat || !okLng {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, true
}

func boundariesFromMap(m map[string]any) (domain.Boundaries, bool) {
	if len(m) != 4 {
		return domain.Boundaries{}, false
	}
	north, okN := m["north"].(string)
	south, okS := m["south"].(string)
	east, okE := m["east"].(string)
	west, okW := m["west"].(string)
	if !okN || !okS || !okE || !okW {
		return domain.Boundaries{}, false
	}
	return domain.Boundaries{North: north, South: south, East: east, West: west}, true
}
