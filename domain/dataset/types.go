package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"goinsight/domain/core"
)

// FieldType is the visual-analytic type of a column
type FieldType string

const (
	TypeNominal      FieldType = "nominal"
	TypeOrdinal      FieldType = "ordinal"
	TypeQuantitative FieldType = "quantitative"
	TypeTemporal     FieldType = "temporal"
)

// IsDimension reports whether fields of this type group data rather than being aggregated
func (t FieldType) IsDimension() bool {
	return t == TypeNominal || t == TypeOrdinal || t == TypeTemporal
}

// IsMeasure reports whether fields of this type are aggregated within a grouping
func (t FieldType) IsMeasure() bool {
	return t == TypeQuantitative
}

// ContinuousLike reports whether values have a natural order suited to line marks
func (t FieldType) ContinuousLike() bool {
	return t == TypeTemporal || t == TypeOrdinal
}

// ParseFieldType parses a declared type name
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeNominal:
		return TypeNominal, nil
	case TypeOrdinal:
		return TypeOrdinal, nil
	case TypeQuantitative:
		return TypeQuantitative, nil
	case TypeTemporal:
		return TypeTemporal, nil
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// Field is a column identity. Immutable once assigned.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Record maps field name to raw value
type Record map[string]interface{}

// Dataset is a read-only tabular dataset handed over by the data-source collaborator.
// Nothing in the pipeline mutates Fields or Records after construction.
type Dataset struct {
	Name    string   `json:"name"`
	Fields  []Field  `json:"fields"`
	Records []Record `json:"records"`
}

// New creates a dataset
func New(name string, fields []Field, records []Record) *Dataset {
	return &Dataset{Name: name, Fields: fields, Records: records}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Field looks up a declared field by name
func (d *Dataset) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether any record carries the field. A declaration alone
// does not count; a key holding nil does.
func (d *Dataset) HasField(name string) bool {
	for _, r := range d.Records {
		if _, ok := r[name]; ok {
			return true
		}
	}
	return false
}

// Dimensions returns declared dimension fields in declaration order
func (d *Dataset) Dimensions() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Type.IsDimension() {
			out = append(out, f)
		}
	}
	return out
}

// Measures returns declared measure fields in declaration order
func (d *Dataset) Measures() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Type.IsMeasure() {
			out = append(out, f)
		}
	}
	return out
}

// Column returns the canonical value keys of a field, one per record.
// Missing values are reported through the second slice.
func (d *Dataset) Column(name string) ([]string, []bool) {
	keys := make([]string, len(d.Records))
	present := make([]bool, len(d.Records))
	for i, r := range d.Records {
		keys[i], present[i] = ValueKey(r[name])
	}
	return keys, present
}

// NumericColumn returns the numeric values of a field; non-numeric cells are NaN
func (d *Dataset) NumericColumn(name string) []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		if v, ok := ToFloat(r[name]); ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Fingerprint hashes the name, the field declarations and every cell in field
// order. Equal fingerprints mean equal content.
func (d *Dataset) Fingerprint() core.Hash {
	var b strings.Builder
	b.WriteString(d.Name)
	for _, f := range d.Fields {
		b.WriteString(unitSep)
		b.WriteString(f.Name + ":" + string(f.Type))
	}
	for _, r := range d.Records {
		b.WriteString(recordSep)
		for i, f := range d.Fields {
			if i > 0 {
				b.WriteString(unitSep)
			}
			if key, ok := ValueKey(r[f.Name]); ok {
				b.WriteString("=" + key)
			} else {
				b.WriteString("-")
			}
		}
	}
	return core.NewHash([]byte(b.String()))
}

const (
	unitSep   = "\x1f"
	recordSep = "\x1e"
)

// ValueKey canonicalizes a raw cell into a distribution key.
// nil and blank strings are missing.
func ValueKey(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case float64:
		if math.IsNaN(val) {
			return "", false
		}
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case float32:
		return ValueKey(float64(val))
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case bool:
		return strconv.FormatBool(val), true
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return val.UTC().Format(time.RFC3339), true
	default:
		return fmt.Sprint(val), true
	}
}

// ToFloat converts a raw cell to float64 when it holds a number
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val)
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
