package profiling

import (
	"fmt"
	"math"
	"strconv"

	"goinsight/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Suffixes of derived grouped fields
const (
	GroupSuffix = "(group)"
	BinSuffix   = "(bin)"
	OthersLabel = "others"
)

// Grouper builds the coarse-grained variant of a dataset: high-cardinality
// dimensions keep their most frequent values and fold the rest into "others",
// quantitative fields are cut into equal-width bins.
type Grouper struct {
	BinCount         int
	GroupCardinality int
}

// Variant is the grouped dataset plus the raw field each derived field came from
type Variant struct {
	Fields  []dataset.Field
	Columns map[string][]interface{}
	Sources map[string]string
}

// NewGrouper creates a grouper
func NewGrouper(binCount, groupCardinality int) *Grouper {
	return &Grouper{BinCount: binCount, GroupCardinality: groupCardinality}
}

// Group derives grouped fields from ds. Fields that need no grouping are skipped.
func (g *Grouper) Group(ds *dataset.Dataset) Variant {
	v := Variant{
		Columns: make(map[string][]interface{}),
		Sources: make(map[string]string),
	}
	for _, f := range ds.Fields {
		var (
			derived dataset.Field
			column  []interface{}
			ok      bool
		)
		switch {
		case f.Type.IsDimension():
			derived, column, ok = g.foldDimension(ds, f)
		case f.Type.IsMeasure():
			derived, column, ok = g.binMeasure(ds, f)
		}
		if !ok {
			continue
		}
		v.Fields = append(v.Fields, derived)
		v.Columns[derived.Name] = column
		v.Sources[derived.Name] = f.Name
	}
	return v
}

// Apply returns a new dataset holding the origin records extended with the variant columns.
// The input dataset is not modified.
func (v Variant) Apply(ds *dataset.Dataset) *dataset.Dataset {
	fields := make([]dataset.Field, 0, len(ds.Fields)+len(v.Fields))
	fields = append(fields, ds.Fields...)
	fields = append(fields, v.Fields...)

	records := make([]dataset.Record, len(ds.Records))
	for i, r := range ds.Records {
		rec := make(dataset.Record, len(r)+len(v.Fields))
		for k, val := range r {
			rec[k] = val
		}
		for _, f := range v.Fields {
			rec[f.Name] = v.Columns[f.Name][i]
		}
		records[i] = rec
	}
	return dataset.New(ds.Name, fields, records)
}

// Only is the variant on its own, used for profiling grouped fields
func (v Variant) Only(name string, n int) *dataset.Dataset {
	records := make([]dataset.Record, n)
	for i := range records {
		rec := make(dataset.Record, len(v.Fields))
		for _, f := range v.Fields {
			rec[f.Name] = v.Columns[f.Name][i]
		}
		records[i] = rec
	}
	return dataset.New(name, append([]dataset.Field(nil), v.Fields...), records)
}

func (g *Grouper) foldDimension(ds *dataset.Dataset, f dataset.Field) (dataset.Field, []interface{}, bool) {
	keys, present := ds.Column(f.Name)
	dist := NewDistribution(keys, present)
	if dist.Distinct() <= g.GroupCardinality {
		return dataset.Field{}, nil, false
	}

	keep := make(map[string]bool, g.GroupCardinality-1)
	for _, k := range dist.Ranked()[:g.GroupCardinality-1] {
		keep[k] = true
	}

	column := make([]interface{}, len(keys))
	for i, k := range keys {
		switch {
		case !present[i]:
			column[i] = nil
		case keep[k]:
			column[i] = k
		default:
			column[i] = OthersLabel
		}
	}
	// Folding breaks any natural order, so the derived field is nominal
	return dataset.Field{Name: f.Name + GroupSuffix, Type: dataset.TypeNominal}, column, true
}

func (g *Grouper) binMeasure(ds *dataset.Dataset, f dataset.Field) (dataset.Field, []interface{}, bool) {
	raw := ds.NumericColumn(f.Name)
	values := make([]float64, 0, len(raw))
	for _, x := range raw {
		if !math.IsNaN(x) {
			values = append(values, x)
		}
	}
	if len(values) == 0 {
		return dataset.Field{}, nil, false
	}

	lo, err := stats.Min(values)
	if err != nil {
		return dataset.Field{}, nil, false
	}
	hi, err := stats.Max(values)
	if err != nil || hi == lo {
		return dataset.Field{}, nil, false
	}

	width := (hi - lo) / float64(g.BinCount)
	labels := make([]string, g.BinCount)
	for b := range labels {
		labels[b] = binLabel(lo+float64(b)*width, lo+float64(b+1)*width)
	}

	column := make([]interface{}, len(raw))
	for i, x := range raw {
		if math.IsNaN(x) {
			continue
		}
		b := int((x - lo) / width)
		if b >= g.BinCount {
			b = g.BinCount - 1
		}
		column[i] = labels[b]
	}
	return dataset.Field{Name: f.Name + BinSuffix, Type: dataset.TypeOrdinal}, column, true
}

func binLabel(lo, hi float64) string {
	return fmt.Sprintf("[%s, %s)", strconv.FormatFloat(lo, 'g', 4, 64), strconv.FormatFloat(hi, 'g', 4, 64))
}
