package report

import (
	"goinsight/domain/insight"
)

// MeasureRow is one measure of one subspace, flattened for tabular display
type MeasureRow struct {
	Index      int     `json:"index"`
	Score      float64 `json:"score"`
	Dimensions string  `json:"dimensions"`
	Measure    string  `json:"measure"`
	Value      float64 `json:"value"`
}

// CorrelationCell is one entry of a subspace's correlation matrix
type CorrelationCell struct {
	X           string  `json:"x"`
	Y           string  `json:"y"`
	Correlation float64 `json:"correlation"`
}

// MeasureRows flattens subspaces into one row per measure, keeping subspace order
func MeasureRows(subspaces []insight.Subspace) []MeasureRow {
	var rows []MeasureRow
	for i, s := range subspaces {
		dims := insight.JoinNames(s.Dimensions)
		for _, m := range s.Measures {
			rows = append(rows, MeasureRow{Index: i, Score: s.Score, Dimensions: dims, Measure: m.Name, Value: m.Value})
		}
	}
	return rows
}

// CorrelationCells flattens the matrix of s row by row. Ragged rows are cut to
// the measures that exist.
func CorrelationCells(s insight.Subspace) []CorrelationCell {
	names := s.MeasureNames()
	var cells []CorrelationCell
	for i, row := range s.CorrelationMatrix {
		if i >= len(names) {
			break
		}
		for j, r := range row {
			if j >= len(names) {
				break
			}
			cells = append(cells, CorrelationCell{X: names[i], Y: names[j], Correlation: r})
		}
	}
	return cells
}
