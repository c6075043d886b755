package extraction

import (
	"testing"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

func TestNormalizeDateAcceptsCommonLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-03-12":     "2024-03-12",
		"12/03/2024":     "2024-03-12",
		"12-03-2024":     "2024-03-12",
		"12.03.2024":     "2024-03-12",
		"2/1/2024":       "2024-01-02",
		"12 March 2024":  "2024-03-12",
		"March 12, 2024": "2024-03-12",
	}
	for raw, want := range cases {
		got, err := normalizeDate(raw)
		if err != nil {
			t.Fatalf("normalizeDate(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("normalizeDate(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := normalizeDate("sometime last year"); err == nil {
		t.Fatalf("expected error for unparseable date")
	}
}

func TestNormalizeNumberStripsCurrencyAndGrouping(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"48,000", 48000},
		{"Rs. 1,20,000", 120000},
		{"₹6000", 6000},
		{"INR 2500", 2500},
		{"6", 6},
	}
	for _, c := range cases {
		raw, want := c.raw, c.want
		got, err := normalizeNumber(raw)
		if err != nil {
			t.Fatalf("normalizeNumber(%q) error = %v", raw, err)
		}
		if got != want {
			t.Fatalf("normalizeNumber(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNormalizeAreaKeepsDeclaredMagnitude(t *testing.T) {
	got, err := normalizeArea("2.5 acres")
	if err != nil || got != 2.5 {
		t.Fatalf("normalizeArea = %v, %v; want 2.5", got, err)
	}
	got, err = normalizeArea("3 hectares")
	if err != nil || got != 3 {
		t.Fatalf("normalizeArea = %v, %v; want 3", got, err)
	}
	if _, err := normalizeArea("some land"); err == nil {
		t.Fatalf("expected error when no numeric value present")
	}
}

func TestNormalizeCoordinatesRangeChecked(t *testing.T) {
	got, err := normalizeCoordinates("20.4625, 84.2316")
	if err != nil {
		t.Fatalf("normalizeCoordinates error = %v", err)
	}
	if got != (domain.Coordinates{Lat: 20.4625, Lng: 84.2316}) {
		t.Fatalf("coordinates = %+v", got)
	}

	if _, err := normalizeCoordinates("120.5, 84.2"); err == nil {
		t.Fatalf("expected out-of-range latitude to fail")
	}
}

func TestExtractBoundariesRequiresAllFourSides(t *testing.T) {
	text := "North: road; South: stream; East: plot 12; West: forest"
	b, ok := extractBoundaries(text)
	if !ok {
		t.Fatalf("expected boundaries")
	}
	if b.North != "road" || b.South != "stream" || b.East != "plot 12" || b.West != "forest" {
		t.Fatalf("boundaries = %+v", b)
	}

	if _, ok := extractBoundaries("North: road; South: stream"); ok {
		t.Fatalf("partial boundary descriptions must not materialize")
	}
}
