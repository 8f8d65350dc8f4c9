package insight

import (
	"fmt"

	"goinsight/domain/dataset"
)

// Channel is a visual encoding channel
type Channel string

const (
	ChannelPosition Channel = "position"
	ChannelColor    Channel = "color"
	ChannelOpacity  Channel = "opacity"
)

// Channel capacities
const (
	PositionCapacity = 2
	ColorCapacity    = 1
	OpacityCapacity  = 1
)

// Geometry names produced by synthesis
const (
	GeomPoint = "point"
	GeomBar   = "bar"
	GeomLine  = "line"
	GeomRect  = "rect"
)

// Specification is a declarative chart encoding
type Specification struct {
	Position []string `json:"position"`
	Color    []string `json:"color"`
	Opacity  []string `json:"opacity"`
	GeomType []string `json:"geomType"`
}

// EmptySpecification returns a schema with every channel empty (non-nil, so it encodes as [])
func EmptySpecification() Specification {
	return Specification{
		Position: []string{},
		Color:    []string{},
		Opacity:  []string{},
		GeomType: []string{},
	}
}

// IsEmpty reports whether no field was assigned to any channel
func (s Specification) IsEmpty() bool {
	return len(s.Position) == 0 && len(s.Color) == 0 && len(s.Opacity) == 0
}

// HasGeom reports whether geomType includes g
func (s Specification) HasGeom(g string) bool {
	for _, x := range s.GeomType {
		if x == g {
			return true
		}
	}
	return false
}

// ChannelOf returns the channel a field is encoded on
func (s Specification) ChannelOf(field string) (Channel, bool) {
	for _, f := range s.Position {
		if f == field {
			return ChannelPosition, true
		}
	}
	for _, f := range s.Color {
		if f == field {
			return ChannelColor, true
		}
	}
	for _, f := range s.Opacity {
		if f == field {
			return ChannelOpacity, true
		}
	}
	return "", false
}

// Fields lists every encoded field, position first
func (s Specification) Fields() []string {
	out := make([]string, 0, len(s.Position)+len(s.Color)+len(s.Opacity))
	out = append(out, s.Position...)
	out = append(out, s.Color...)
	return append(out, s.Opacity...)
}

// Aggregators accepted for VisualConfig
var Aggregators = []string{"sum", "mean", "count", "median", "max", "min"}

// ValidAggregator reports whether name is a supported reduction
func ValidAggregator(name string) bool {
	for _, a := range Aggregators {
		if a == name {
			return true
		}
	}
	return false
}

// VisualConfig holds rendering defaults derived from a schema
type VisualConfig struct {
	Aggregator        string `json:"aggregator"`
	DefaultAggregated bool   `json:"defaultAggregated"`
	DefaultStack      bool   `json:"defaultStack"`
}

// DefaultVisualConfig is the config before any schema has been synthesized
func DefaultVisualConfig() VisualConfig {
	return VisualConfig{Aggregator: "sum", DefaultAggregated: true, DefaultStack: true}
}

// VisualOverride is a user override layered over the derived config; nil fields keep the default
type VisualOverride struct {
	Aggregator *string `json:"aggregator,omitempty"`
	Aggregated *bool   `json:"defaultAggregated,omitempty"`
	Stack      *bool   `json:"defaultStack,omitempty"`
}

// Validate checks the override aggregator
func (o VisualOverride) Validate() error {
	if o.Aggregator != nil && !ValidAggregator(*o.Aggregator) {
		return fmt.Errorf("unsupported aggregator %q", *o.Aggregator)
	}
	return nil
}

// IsZero reports whether the override changes nothing
func (o VisualOverride) IsZero() bool {
	return o.Aggregator == nil && o.Aggregated == nil && o.Stack == nil
}

// Apply layers the override onto cfg
func (o VisualOverride) Apply(cfg VisualConfig) VisualConfig {
	if o.Aggregator != nil {
		cfg.Aggregator = *o.Aggregator
	}
	if o.Aggregated != nil {
		cfg.DefaultAggregated = *o.Aggregated
	}
	if o.Stack != nil {
		cfg.DefaultStack = *o.Stack
	}
	return cfg
}

// DegradationReason explains why a field was left out of a schema
type DegradationReason string

const (
	ReasonCapacityExceeded DegradationReason = "capacity_exceeded"
	ReasonNoProfile        DegradationReason = "no_profile"
	ReasonDuplicate        DegradationReason = "duplicate"
)

// Degradation records one field dropped during synthesis
type Degradation struct {
	Field  string            `json:"field"`
	Reason DegradationReason `json:"reason"`
}

func (d Degradation) String() string {
	return fmt.Sprintf("%s dropped (%s)", d.Field, d.Reason)
}

// Synthesis is the output of specification synthesis for one view space
type Synthesis struct {
	Schema        Specification   `json:"schema"`
	FieldFeatures []dataset.Field `json:"fieldFeatures"`
	Dimensions    []string        `json:"dimensions"`
	Measures      []string        `json:"measures"`
	VisualConfig  VisualConfig    `json:"visualConfig"`
	Degradations  []Degradation   `json:"degradations,omitempty"`
}

// Failed reports the synthesis-failure outcome: nothing survived assignment
func (s Synthesis) Failed() bool {
	return s.Schema.IsEmpty()
}

// Clone returns a deep copy
func (s Synthesis) Clone() Synthesis {
	return Synthesis{
		Schema: Specification{
			Position: append([]string{}, s.Schema.Position...),
			Color:    append([]string{}, s.Schema.Color...),
			Opacity:  append([]string{}, s.Schema.Opacity...),
			GeomType: append([]string{}, s.Schema.GeomType...),
		},
		FieldFeatures: append([]dataset.Field{}, s.FieldFeatures...),
		Dimensions:    append([]string{}, s.Dimensions...),
		Measures:      append([]string{}, s.Measures...),
		VisualConfig:  s.VisualConfig,
		Degradations:  append([]Degradation(nil), s.Degradations...),
	}
}

// EmptySynthesis is what a page shows when there is nothing to recommend
func EmptySynthesis() Synthesis {
	return Synthesis{
		Schema:        EmptySpecification(),
		FieldFeatures: []dataset.Field{},
		Dimensions:    []string{},
		Measures:      []string{},
		VisualConfig:  DefaultVisualConfig(),
	}
}

// Clone copies the override so the caller's pointers are not shared
func (o VisualOverride) Clone() VisualOverride {
	var out VisualOverride
	if o.Aggregator != nil {
		v := *o.Aggregator
		out.Aggregator = &v
	}
	if o.Aggregated != nil {
		v := *o.Aggregated
		out.Aggregated = &v
	}
	if o.Stack != nil {
		v := *o.Stack
		out.Stack = &v
	}
	return out
}
