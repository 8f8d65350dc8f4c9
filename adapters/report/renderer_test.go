package report

import (
	"strings"
	"testing"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSubspace() insight.Subspace {
	return insight.Subspace{
		Dimensions: []string{"region", "year"},
		Measures: []insight.Measure{
			{Name: "sales", Value: 0.91},
			{Name: "profit", Value: 0.77},
		},
		CorrelationMatrix: [][]float64{{1, 0.6}, {0.6, 1}},
		Score:             0.82,
	}
}

func sampleInput() ports.ReportInput {
	sub := sampleSubspace()
	syn := insight.Synthesis{
		Schema: insight.Specification{
			Position: []string{"region", "year"},
			Color:    []string{"sales"},
			Opacity:  []string{},
			GeomType: []string{insight.GeomRect},
		},
		VisualConfig: insight.VisualConfig{Aggregator: "sum", DefaultAggregated: true, DefaultStack: true},
		Degradations: []insight.Degradation{{Field: "profit", Reason: insight.ReasonCapacityExceeded}},
	}
	return ports.ReportInput{
		DatasetName: "retail",
		PageLabel:   "Page No. 1 of 3",
		Summaries: insight.SummarySet{
			Origin: []insight.FieldSummary{
				{FieldName: "region", Type: dataset.TypeNominal, Entropy: 1.5, MaxEntropy: 1.585, Distinct: 3, Granularity: insight.GranularityOrigin},
			},
		},
		Subspace:  &sub,
		Synthesis: &syn,
	}
}

func TestMeasureRows(t *testing.T) {
	rows := MeasureRows([]insight.Subspace{sampleSubspace(), {Dimensions: []string{"store"}, Measures: []insight.Measure{{Name: "quantity", Value: 0.4}}, Score: 0.3}})
	require.Len(t, rows, 3)
	assert.Equal(t, MeasureRow{Index: 0, Score: 0.82, Dimensions: "region,year", Measure: "sales", Value: 0.91}, rows[0])
	assert.Equal(t, MeasureRow{Index: 1, Score: 0.3, Dimensions: "store", Measure: "quantity", Value: 0.4}, rows[2])
}

func TestCorrelationCells(t *testing.T) {
	cells := CorrelationCells(sampleSubspace())
	assert.Equal(t, []CorrelationCell{
		{X: "sales", Y: "sales", Correlation: 1},
		{X: "sales", Y: "profit", Correlation: 0.6},
		{X: "profit", Y: "sales", Correlation: 0.6},
		{X: "profit", Y: "profit", Correlation: 1},
	}, cells)

	ragged := sampleSubspace()
	ragged.CorrelationMatrix = [][]float64{{1, 0.6, 0.2}, {0.6, 1}, {0.2}}
	assert.Len(t, CorrelationCells(ragged), 4)
}

func TestMarkdown(t *testing.T) {
	md := NewRenderer(nil).Markdown(sampleInput())

	assert.True(t, strings.HasPrefix(md, "# retail\n"))
	assert.Contains(t, md, "Page No. 1 of 3")
	assert.Contains(t, md, "| position | `region`, `year` |")
	assert.Contains(t, md, "| geometry | `rect` |")
	assert.Contains(t, md, "- `profit`: capacity exceeded")
	assert.Contains(t, md, "| sales | profit | 0.600 |")
	assert.Contains(t, md, "| region | nominal | origin | 3 | 1.500 | 1.585 | position |")
	assert.NotContains(t, md, "Notice")
}

func TestMarkdownWithoutRecommendation(t *testing.T) {
	in := sampleInput()
	empty := insight.EmptySynthesis()
	in.Synthesis = &empty
	in.Subspace = nil
	in.Notice = "no recommendation for this view"

	md := NewRenderer(nil).Markdown(in)
	assert.Contains(t, md, "> **Notice:** no recommendation for this view")
	assert.Contains(t, md, "No recommendation for this view.")
	assert.Contains(t, md, "| region | nominal | origin | 3 | 1.500 | 1.585 | - |")
	assert.NotContains(t, md, "## Subspace")
}

func TestHTML(t *testing.T) {
	out := string(NewRenderer(nil).HTML(sampleInput()))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>retail</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>region</code>")
	assert.Contains(t, out, "<h2 id=\"recommended-view\">Recommended view</h2>")
}
