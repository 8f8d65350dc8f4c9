// Package insight holds the immutable entities exchanged by the recommendation pipeline
package insight

import (
	"strings"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
)

// Granularity labels which dataset variant a summary was computed over
type Granularity string

const (
	GranularityOrigin  Granularity = "origin"
	GranularityGrouped Granularity = "grouped"
)

// FieldSummary is the statistical profile of one field at one granularity
type FieldSummary struct {
	FieldName   string            `json:"fieldName"`
	Entropy     float64           `json:"entropy"`
	MaxEntropy  float64           `json:"maxEntropy"`
	Type        dataset.FieldType `json:"type"`
	Distinct    int               `json:"distinct"`
	Granularity Granularity       `json:"granularity"`
	// SourceField names the raw field a grouped field was derived from
	SourceField string `json:"sourceField,omitempty"`
}

// NormalizedEntropy returns entropy/maxEntropy, or 0 when the field has at most one value
func (s FieldSummary) NormalizedEntropy() float64 {
	if s.MaxEntropy <= 0 {
		return 0
	}
	n := s.Entropy / s.MaxEntropy
	if n > 1 {
		return 1
	}
	return n
}

// SummarySet is the pair of summary lists computed per dataset load
type SummarySet struct {
	Origin  []FieldSummary `json:"origin"`
	Grouped []FieldSummary `json:"grouped"`
}

// All returns origin summaries followed by grouped summaries
func (s SummarySet) All() []FieldSummary {
	out := make([]FieldSummary, 0, len(s.Origin)+len(s.Grouped))
	out = append(out, s.Origin...)
	return append(out, s.Grouped...)
}

// IsEmpty reports whether no summaries were computed
func (s SummarySet) IsEmpty() bool {
	return len(s.Origin) == 0 && len(s.Grouped) == 0
}

// Lookup finds a summary by field name, preferring the origin granularity
func (s SummarySet) Lookup(name string) (FieldSummary, bool) {
	for _, fs := range s.Origin {
		if fs.FieldName == name {
			return fs, true
		}
	}
	for _, fs := range s.Grouped {
		if fs.FieldName == name {
			return fs, true
		}
	}
	return FieldSummary{}, false
}

// FieldScore is one row of the field-score table consumed by synthesis
type FieldScore struct {
	Name       string        `json:"name"`
	Entropy    float64       `json:"entropy"`
	MaxEntropy float64       `json:"maxEntropy"`
	Field      dataset.Field `json:"field"`
	Distinct   int           `json:"distinct"`
}

// FieldScores flattens origin then grouped summaries into score rows
func FieldScores(s SummarySet) []FieldScore {
	all := s.All()
	out := make([]FieldScore, len(all))
	for i, fs := range all {
		out[i] = FieldScore{
			Name:       fs.FieldName,
			Entropy:    fs.Entropy,
			MaxEntropy: fs.MaxEntropy,
			Field:      dataset.Field{Name: fs.FieldName, Type: fs.Type},
			Distinct:   fs.Distinct,
		}
	}
	return out
}

// FilterScores keeps the rows whose field is one of the given dimensions or measures
func FilterScores(scores []FieldScore, dimensions, measures []string) []FieldScore {
	wanted := make(map[string]bool, len(dimensions)+len(measures))
	for _, d := range dimensions {
		wanted[d] = true
	}
	for _, m := range measures {
		wanted[m] = true
	}
	var out []FieldScore
	for _, fs := range scores {
		if wanted[fs.Name] {
			out = append(out, fs)
		}
	}
	return out
}

// Measure is a measure's aggregate score within a grouping
type Measure struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Subspace is a scored (dimensions, measures) grouping
type Subspace struct {
	Dimensions        []string    `json:"dimensions"`
	Measures          []Measure   `json:"measures"`
	CorrelationMatrix [][]float64 `json:"correlationMatrix"`
	Score             float64     `json:"score"`
}

// MeasureNames lists measure names in matrix order
func (s Subspace) MeasureNames() []string {
	return measureNames(s.Measures)
}

// DimensionKey identifies the dimension set; order is ignored
func (s Subspace) DimensionKey() string {
	return core.SetKey(s.Dimensions)
}

// Key identifies the subspace by dimension set and measure set
func (s Subspace) Key() string {
	return s.DimensionKey() + core.PartSeparator + core.SetKey(s.MeasureNames())
}

// Clone returns a deep copy so callers outside the pipeline cannot alias internal slices
func (s Subspace) Clone() Subspace {
	return Subspace{
		Dimensions:        append([]string(nil), s.Dimensions...),
		Measures:          append([]Measure(nil), s.Measures...),
		CorrelationMatrix: cloneMatrix(s.CorrelationMatrix),
		Score:             s.Score,
	}
}

// ViewSpace is a cluster representative; it has the shape of a Subspace
type ViewSpace struct {
	Dimensions        []string    `json:"dimensions"`
	Measures          []Measure   `json:"measures"`
	CorrelationMatrix [][]float64 `json:"correlationMatrix"`
	Score             float64     `json:"score"`
	// Members are the keys of every subspace folded into this cluster
	Members []string `json:"members"`
}

// MeasureNames lists measure names
func (v ViewSpace) MeasureNames() []string {
	return measureNames(v.Measures)
}

// DimensionKey identifies the dimension set
func (v ViewSpace) DimensionKey() string {
	return core.SetKey(v.Dimensions)
}

// Clone returns a deep copy
func (v ViewSpace) Clone() ViewSpace {
	return ViewSpace{
		Dimensions:        append([]string(nil), v.Dimensions...),
		Measures:          append([]Measure(nil), v.Measures...),
		CorrelationMatrix: cloneMatrix(v.CorrelationMatrix),
		Score:             v.Score,
		Members:           append([]string(nil), v.Members...),
	}
}

// ViewSpaceFromSubspace promotes a subspace to a single-member view space
func ViewSpaceFromSubspace(s Subspace) ViewSpace {
	c := s.Clone()
	return ViewSpace{
		Dimensions:        c.Dimensions,
		Measures:          c.Measures,
		CorrelationMatrix: c.CorrelationMatrix,
		Score:             c.Score,
		Members:           []string{s.Key()},
	}
}

func measureNames(ms []Measure) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return names
}

func cloneMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// JoinNames renders a name list for logs and labels
func JoinNames(names []string) string {
	return strings.Join(names, ",")
}

// ProfileResult carries the summaries of one dataset load together with the working
// dataset: the origin records extended with every grouped field, so that later
// stages can read grouped columns by name.
type ProfileResult struct {
	Summaries SummarySet       `json:"summaries"`
	Working   *dataset.Dataset `json:"-"`
}
