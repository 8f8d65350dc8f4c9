package specification

import (
	"sort"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal"
)

// SpecificationSynthesizer assigns view-space fields to encoding channels and picks geometry
type SpecificationSynthesizer struct {
	aggregator      string
	highCardinality int
	logger          *internal.Logger
}

// NewSpecificationSynthesizer creates a synthesizer. Ordinal dimensions with more than
// highCardinality distinct values are drawn as lines.
func NewSpecificationSynthesizer(aggregator string, highCardinality int, logger *internal.Logger) *SpecificationSynthesizer {
	if !insight.ValidAggregator(aggregator) {
		aggregator = insight.DefaultVisualConfig().Aggregator
	}
	return &SpecificationSynthesizer{
		aggregator:      aggregator,
		highCardinality: highCardinality,
		logger:          logger.Named("synthesizer"),
	}
}

// Synthesize builds the specification for one view space
func (s *SpecificationSynthesizer) Synthesize(ds *dataset.Dataset, summaries insight.SummarySet, space insight.ViewSpace) insight.Synthesis {
	measures := space.MeasureNames()
	scores := insight.FilterScores(insight.FieldScores(summaries), space.Dimensions, measures)
	return s.SynthesizeFields(scores, ds, space.Dimensions, measures)
}

// SynthesizeFields applies the channel rules to dimensions and measures using their
// field scores. Identical inputs always produce identical output. When no field
// survives, the schema is empty and Failed reports true.
func (s *SpecificationSynthesizer) SynthesizeFields(scores []insight.FieldScore, ds *dataset.Dataset, dimensions, measures []string) insight.Synthesis {
	byName := make(map[string]insight.FieldScore, len(scores))
	for _, fs := range scores {
		if _, ok := byName[fs.Name]; !ok {
			byName[fs.Name] = fs
		}
	}

	a := newAssignment()
	dims := a.admit(dimensions, byName)
	ms := a.admit(measures, byName)

	// Rule 1: a lone temporal dimension leads the x axis
	if len(dims) == 1 && dims[0].Field.Type == dataset.TypeTemporal {
		a.place(dims[0].Name, insight.ChannelPosition)
		dims = nil
	}

	// Rule 2: dimensions by descending entropy into position, color, opacity
	sort.SliceStable(dims, func(i, j int) bool {
		if dims[i].Entropy != dims[j].Entropy {
			return dims[i].Entropy > dims[j].Entropy
		}
		return dims[i].Name < dims[j].Name
	})
	for _, d := range dims {
		a.placeFirst(d.Name, insight.ChannelPosition, insight.ChannelColor, insight.ChannelOpacity)
	}

	// Rule 3: measures into what is left of position, then color
	for _, m := range ms {
		a.placeFirst(m.Name, insight.ChannelPosition, insight.ChannelColor)
	}

	a.schema.GeomType = s.geometry(a.schema, byName, ds)

	features := make([]dataset.Field, 0, len(a.schema.Fields()))
	for _, name := range a.schema.Fields() {
		features = append(features, byName[name].Field)
	}

	out := insight.Synthesis{
		Schema:        a.schema,
		FieldFeatures: features,
		Dimensions:    append([]string{}, dimensions...),
		Measures:      append([]string{}, measures...),
		VisualConfig:  VisualConfigFor(a.schema, s.aggregator),
		Degradations:  a.degradations,
	}

	for _, d := range out.Degradations {
		s.logger.Warn("degraded specification: %s", d)
	}
	if out.Failed() {
		s.logger.Warn("no field survived channel assignment for %s | %s",
			insight.JoinNames(dimensions), insight.JoinNames(measures))
	}
	return out
}

// VisualConfigFor derives rendering defaults from a schema. Point marks show raw
// records, so they are never aggregated by default.
func VisualConfigFor(schema insight.Specification, aggregator string) insight.VisualConfig {
	if schema.HasGeom(insight.GeomPoint) {
		return insight.VisualConfig{Aggregator: aggregator, DefaultAggregated: false, DefaultStack: true}
	}
	return insight.VisualConfig{Aggregator: aggregator, DefaultAggregated: true, DefaultStack: true}
}

type assignment struct {
	schema       insight.Specification
	used         map[string]bool
	degradations []insight.Degradation
}

func newAssignment() *assignment {
	return &assignment{schema: insight.EmptySpecification(), used: make(map[string]bool)}
}

// admit filters names down to profiled, not yet seen fields
func (a *assignment) admit(names []string, byName map[string]insight.FieldScore) []insight.FieldScore {
	var out []insight.FieldScore
	for _, n := range names {
		fs, ok := byName[n]
		switch {
		case a.used[n]:
			a.degrade(n, insight.ReasonDuplicate)
		case !ok:
			a.degrade(n, insight.ReasonNoProfile)
		default:
			a.used[n] = true
			out = append(out, fs)
		}
	}
	return out
}

func (a *assignment) degrade(name string, reason insight.DegradationReason) {
	a.degradations = append(a.degradations, insight.Degradation{Field: name, Reason: reason})
}

func (a *assignment) slot(ch insight.Channel) (*[]string, int) {
	switch ch {
	case insight.ChannelPosition:
		return &a.schema.Position, insight.PositionCapacity
	case insight.ChannelColor:
		return &a.schema.Color, insight.ColorCapacity
	default:
		return &a.schema.Opacity, insight.OpacityCapacity
	}
}

func (a *assignment) place(name string, ch insight.Channel) bool {
	fields, capacity := a.slot(ch)
	if len(*fields) >= capacity {
		return false
	}
	*fields = append(*fields, name)
	return true
}

// placeFirst puts name on the first channel with room, or records it as dropped
func (a *assignment) placeFirst(name string, channels ...insight.Channel) {
	for _, ch := range channels {
		if a.place(name, ch) {
			return
		}
	}
	a.degrade(name, insight.ReasonCapacityExceeded)
}
