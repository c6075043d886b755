package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

var (
	reNumeric = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	reBoundaryNorth = regexp.MustCompile(`(?i)north\s*[:\-]\s*([^\n,;]+)`)
	reBoundarySouth = regexp.MustCompile(`(?i)south\s*[:\-]\s*([^\n,;]+)`)
	reBoundaryEast  = regexp.MustCompile(`(?i)east\s*[:\-]\s*([^\n,;]+)`)
	reBoundaryWest  = regexp.MustCompile(`(?i)west\s*[:\-]\s*([^\n,;]+)`)
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2/1/2006",
	"2 January 2006",
	"January 2, 2006",
}

// normalizeDate converts the many date shapes seen in scanned records to
// ISO-8601 so downstream consumers never branch on raw formats.
func normalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format %q", raw)
}

// normalizeNumber strips grouping commas and currency markers.
func normalizeNumber(raw string) (float64, error) {
	s := strings.NewReplacer(",", "", "₹", "", "Rs.", "", "Rs", "", "INR", "").Replace(raw)
	s = strings.TrimSpace(s)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		m := reNumeric.FindString(s)
		if m == "" {
			return 0, fmt.Errorf("no numeric value in %q", raw)
		}
		return strconv.ParseFloat(m, 64)
	}
	return n, nil
}

// normalizeArea keeps the declared magnitude ("2.5 acres" -> 2.5). Unit
// reconciliation is a consistency concern, not an extraction one.
func normalizeArea(raw string) (float64, error) {
	m := reNumeric.FindString(raw)
	if m == "" {
		return 0, fmt.Errorf("no area value in %q", raw)
	}
	return strconv.ParseFloat(m, 64)
}

func normalizeCoordinates(raw string) (domain.Coordinates, error) {
	m := reCoordinates.FindStringSubmatch(raw)
	if m == nil {
		return domain.Coordinates{}, fmt.Errorf("no coordinate pair in %q", raw)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	lng, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Coordinates{}, fmt.Errorf("coordinates out of range: %v,%v", lat, lng)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}

// extractBoundaries pulls the four cardinal boundary descriptions out of raw
// text. All four must be present for the field to materialize.
func extractBoundaries(text string) (domain.Boundaries, bool) {
	north := reBoundaryNorth.FindStringSubmatch(text)
	south := reBoundarySouth.FindStringSubmatch(text)
	east := reBoundaryEast.FindStringSubmatch(text)
	west := reBoundaryWest.FindStringSubmatch(text)
	if north == nil || south == nil || east == nil || west == nil {
		return domain.Boundaries{}, false
	}
	return domain.Boundaries{
		North: strings.TrimSpace(north[1]),
		South: strings.TrimSpace(south[1]),
		East:  strings.TrimSpace(east[1]),
		West:  strings.TrimSpace(west[1]),
	}, true
}

// coerce applies kind-specific normalization to a raw value.
func coerce(kind ValueKind, raw string) (any, error) {
	switch kind {
	case KindNumber:
		return normalizeNumber(raw)
	case KindArea:
		return normalizeArea(raw)
	case KindDate:
		return normalizeDate(raw)
	case KindCoordinates:
		return normalizeCoordinates(raw)
	default:
		v := strings.TrimSpace(raw)
		if v == "" {
			return nil, fmt.Errorf("empty value")
		}
		return v, nil
	}
}
