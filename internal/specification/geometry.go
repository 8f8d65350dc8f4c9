package specification

import (
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
)

// geometry infers marks from what ended up on the position channel
func (s *SpecificationSynthesizer) geometry(schema insight.Specification, byName map[string]insight.FieldScore, ds *dataset.Dataset) []string {
	var dims, measures []insight.FieldScore
	for _, name := range schema.Position {
		fs := byName[name]
		if fs.Field.Type.IsMeasure() {
			measures = append(measures, fs)
		} else {
			dims = append(dims, fs)
		}
	}

	switch {
	case len(dims) == 0 && len(measures) > 0:
		return []string{insight.GeomPoint}
	case len(dims) == 2:
		return []string{insight.GeomRect}
	case len(dims) == 1 && len(measures) == 1:
		d := dims[0]
		if !s.continuous(d) {
			return []string{insight.GeomBar}
		}
		if d.Field.Type == dataset.TypeTemporal && uniqueValues(ds, d.Name) {
			// One record per x value: raw points sit exactly on the line
			return []string{insight.GeomLine, insight.GeomPoint}
		}
		return []string{insight.GeomLine}
	case len(dims) == 1:
		return []string{insight.GeomBar}
	}
	return []string{}
}

// continuous reports whether a dimension reads as an ordered axis: temporal, or
// ordinal with more values than a bar chart shows comfortably
func (s *SpecificationSynthesizer) continuous(fs insight.FieldScore) bool {
	if !fs.Field.Type.ContinuousLike() {
		return false
	}
	return fs.Field.Type == dataset.TypeTemporal || fs.Distinct > s.highCardinality
}

func uniqueValues(ds *dataset.Dataset, field string) bool {
	if ds.Len() == 0 {
		return false
	}
	keys, present := ds.Column(field)
	seen := make(map[string]bool, len(keys))
	for i, k := range keys {
		if !present[i] {
			continue
		}
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}
