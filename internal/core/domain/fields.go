package domain

// ExtractedField is a single structured field pulled out of a document.
// Value holds one of the normalized forms produced by extraction: string,
// float64, Coordinates, Boundaries or []string.
type ExtractedField struct {
	Key        string  `json:"key"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

type FieldSet map[string]ExtractedField

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Boundaries struct {
	North string `json:"north"`
	South string `json:"south"`
	East  string `json:"east"`
	West  string `json:"west"`
}

// CategoryOther collects field keys absent from the category table.
const CategoryOther = "Other Information"

// FieldCategory is one named bucket of fields, ordered per the category table.
type FieldCategory struct {
	Name   string           `json:"name"`
	Fields []ExtractedField `json:"fields"`
}

// CategorizedFieldSet is an ordered list of non-empty categories. Every field
// of the source FieldSet appears in exactly one bucket.
type CategorizedFieldSet []FieldCategory

func (c CategorizedFieldSet) Lookup(key string) (ExtractedField, bool) {
	for _, cat := range c {
		for _, f := range cat.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return ExtractedField{}, false
}

func (c CategorizedFieldSet) FieldCount() int {
	n := 0
	for _, cat := range c {
		n += len(cat.Fields)
	}
	return n
}

// Flatten returns all fields keyed by canonical name, losing category order.
func (c CategorizedFieldSet) Flatten() FieldSet {
	out := make(FieldSet, c.FieldCount())
	for _, cat := range c {
		for _, f := range cat.Fields {
			out[f.Key] = f
		}
	}
	return out
}
