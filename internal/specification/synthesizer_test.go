package specification

import (
	"encoding/json"
	"testing"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(name string, typ dataset.FieldType, entropy float64, distinct int) insight.FieldScore {
	return insight.FieldScore{
		Name:       name,
		Entropy:    entropy,
		MaxEntropy: entropy + 0.1,
		Field:      dataset.Field{Name: name, Type: typ},
		Distinct:   distinct,
	}
}

var fieldScores = []insight.FieldScore{
	score("region", dataset.TypeNominal, 1.5, 3),
	score("category", dataset.TypeNominal, 1.2, 3),
	score("store", dataset.TypeNominal, 3.1, 20),
	score("segment", dataset.TypeNominal, 0.9, 2),
	score("channel", dataset.TypeNominal, 0.4, 2),
	score("year", dataset.TypeTemporal, 2.0, 4),
	score("size", dataset.TypeOrdinal, 1.0, 3),
	score("week", dataset.TypeOrdinal, 3.5, 12),
	score("sales", dataset.TypeQuantitative, 6.0, 300),
	score("profit", dataset.TypeQuantitative, 5.8, 280),
	score("quantity", dataset.TypeQuantitative, 3.1, 9),
}

func yearTable(years ...interface{}) *dataset.Dataset {
	return testkit.Table("t", []dataset.Field{{Name: "year", Type: dataset.TypeTemporal}}, map[string][]interface{}{
		"year": years,
	})
}

func newSynthesizer() *SpecificationSynthesizer {
	return NewSpecificationSynthesizer("sum", 7, nil)
}

func assertExclusive(t *testing.T, s insight.Specification) {
	t.Helper()
	seen := map[string]bool{}
	for _, f := range s.Fields() {
		assert.False(t, seen[f], "%s assigned twice", f)
		seen[f] = true
		_, ok := s.ChannelOf(f)
		assert.True(t, ok, "%s has no channel", f)
	}
}

func TestNominalDimensionWithMeasureIsBar(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), []string{"region"}, []string{"sales"})

	assert.Equal(t, []string{"region", "sales"}, got.Schema.Position)
	assert.Contains(t, got.Schema.GeomType, insight.GeomBar)
	assert.Equal(t, insight.VisualConfig{Aggregator: "sum", DefaultAggregated: true, DefaultStack: true}, got.VisualConfig)
	assert.Equal(t, []dataset.Field{
		{Name: "region", Type: dataset.TypeNominal},
		{Name: "sales", Type: dataset.TypeQuantitative},
	}, got.FieldFeatures)
	assert.False(t, got.Failed())
	assert.Empty(t, got.Degradations)
}

func TestTwoMeasuresWithoutDimensionsArePoints(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), nil, []string{"sales", "profit"})

	assert.Equal(t, []string{"sales", "profit"}, got.Schema.Position)
	assert.Contains(t, got.Schema.GeomType, insight.GeomPoint)
	assert.False(t, got.VisualConfig.DefaultAggregated)
}

func TestTemporalDimension(t *testing.T) {
	s := newSynthesizer()

	repeated := s.SynthesizeFields(fieldScores, yearTable("2020", "2020", "2021"), []string{"year"}, []string{"sales"})
	assert.Equal(t, []string{"year", "sales"}, repeated.Schema.Position)
	assert.Equal(t, []string{insight.GeomLine}, repeated.Schema.GeomType)
	assert.True(t, repeated.VisualConfig.DefaultAggregated)

	unique := s.SynthesizeFields(fieldScores, yearTable("2019", "2020", "2021"), []string{"year"}, []string{"sales"})
	assert.Equal(t, []string{insight.GeomLine, insight.GeomPoint}, unique.Schema.GeomType)
	assert.False(t, unique.VisualConfig.DefaultAggregated)
}

func TestOrdinalCardinalityPicksMark(t *testing.T) {
	s := newSynthesizer()
	assert.Equal(t, []string{insight.GeomLine},
		s.SynthesizeFields(fieldScores, yearTable(), []string{"week"}, []string{"sales"}).Schema.GeomType)
	assert.Equal(t, []string{insight.GeomBar},
		s.SynthesizeFields(fieldScores, yearTable(), []string{"size"}, []string{"sales"}).Schema.GeomType)
}

func TestDimensionsFillByEntropy(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(),
		[]string{"region", "category", "store"}, []string{"sales"})

	assert.Equal(t, []string{"store", "region"}, got.Schema.Position)
	assert.Equal(t, []string{"category"}, got.Schema.Color)
	assert.Empty(t, got.Schema.Opacity)
	assert.Equal(t, []string{insight.GeomRect}, got.Schema.GeomType)
	assert.Equal(t, []insight.Degradation{{Field: "sales", Reason: insight.ReasonCapacityExceeded}}, got.Degradations)
	assertExclusive(t, got.Schema)
}

func TestDimensionOverflowIsDropped(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(),
		[]string{"channel", "segment", "region", "category", "store"}, []string{"sales", "profit"})

	assert.Equal(t, []string{"store", "region"}, got.Schema.Position)
	assert.Equal(t, []string{"category"}, got.Schema.Color)
	assert.Equal(t, []string{"segment"}, got.Schema.Opacity)

	dropped := map[string]insight.DegradationReason{}
	for _, d := range got.Degradations {
		dropped[d.Field] = d.Reason
	}
	assert.Equal(t, map[string]insight.DegradationReason{
		"channel": insight.ReasonCapacityExceeded,
		"sales":   insight.ReasonCapacityExceeded,
		"profit":  insight.ReasonCapacityExceeded,
	}, dropped)
	assertExclusive(t, got.Schema)
}

func TestTwoDimensionsColorTheMeasure(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), []string{"region", "category"}, []string{"sales", "profit"})

	assert.Equal(t, []string{"region", "category"}, got.Schema.Position)
	assert.Equal(t, []string{"sales"}, got.Schema.Color)
	assert.Equal(t, []insight.Degradation{{Field: "profit", Reason: insight.ReasonCapacityExceeded}}, got.Degradations)
}

func TestMeasureOverflowGoesToColor(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), []string{"region"}, []string{"sales", "profit", "quantity"})

	assert.Equal(t, []string{"region", "sales"}, got.Schema.Position)
	assert.Equal(t, []string{"profit"}, got.Schema.Color)
	assert.Equal(t, "quantity", got.Degradations[0].Field)
	assertExclusive(t, got.Schema)
}

func TestDuplicateFieldIsAssignedOnce(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), []string{"region", "region"}, []string{"region", "sales"})

	assert.Equal(t, []string{"region", "sales"}, got.Schema.Position)
	assert.Len(t, got.Degradations, 2)
	for _, d := range got.Degradations {
		assert.Equal(t, insight.ReasonDuplicate, d.Reason)
	}
	assertExclusive(t, got.Schema)
}

func TestNoSurvivingFieldIsEmptySchema(t *testing.T) {
	got := newSynthesizer().SynthesizeFields(fieldScores, yearTable(), []string{"unknown"}, []string{"ghost"})

	assert.True(t, got.Failed())
	assert.True(t, got.Schema.IsEmpty())
	assert.Empty(t, got.Schema.GeomType)
	assert.Len(t, got.Degradations, 2)

	raw, err := json.Marshal(got.Schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":[],"color":[],"opacity":[],"geomType":[]}`, string(raw))
}

func TestSynthesisIsDeterministic(t *testing.T) {
	s := newSynthesizer()
	dims, measures := []string{"category", "region", "year"}, []string{"profit", "sales"}

	a, err := json.Marshal(s.SynthesizeFields(fieldScores, yearTable("2020"), dims, measures))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		b, err := json.Marshal(s.SynthesizeFields(fieldScores, yearTable("2020"), dims, measures))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestSynthesizeViewSpace(t *testing.T) {
	summaries := insight.SummarySet{
		Origin: []insight.FieldSummary{
			{FieldName: "region", Type: dataset.TypeNominal, Entropy: 1.5, MaxEntropy: 1.58, Distinct: 3},
			{FieldName: "sales", Type: dataset.TypeQuantitative, Entropy: 6, MaxEntropy: 8, Distinct: 300},
		},
		Grouped: []insight.FieldSummary{
			{FieldName: "sales(bin)", Type: dataset.TypeOrdinal, Entropy: 2.5, MaxEntropy: 3, Distinct: 8,
				Granularity: insight.GranularityGrouped, SourceField: "sales"},
		},
	}
	space := insight.ViewSpace{
		Dimensions: []string{"sales(bin)", "region"},
		Measures:   []insight.Measure{{Name: "sales", Value: 0.9}},
	}

	got := newSynthesizer().Synthesize(yearTable(), summaries, space)
	assert.Equal(t, []string{"sales(bin)", "region"}, got.Schema.Position)
	assert.Equal(t, []string{"sales"}, got.Schema.Color)
	assert.Equal(t, []string{"sales(bin)", "region"}, got.Dimensions)
	assert.Equal(t, []string{"sales"}, got.Measures)
}

func TestVisualConfigFor(t *testing.T) {
	point := insight.Specification{GeomType: []string{insight.GeomPoint}}
	bar := insight.Specification{GeomType: []string{insight.GeomBar}}

	assert.Equal(t, insight.VisualConfig{Aggregator: "mean", DefaultAggregated: false, DefaultStack: true}, VisualConfigFor(point, "mean"))
	assert.Equal(t, insight.VisualConfig{Aggregator: "sum", DefaultAggregated: true, DefaultStack: true}, VisualConfigFor(bar, "sum"))
}
