package session

import (
	"fmt"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/errors"
	"goinsight/internal/specification"
)

// SetVisualOverride layers o over the derived visual config until cleared.
// Unset fields of o keep their current override.
func (s *Session) SetVisualOverride(o insight.VisualOverride) (Snapshot, error) {
	if err := o.Validate(); err != nil {
		return s.Snapshot(), errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%w: %v", core.ErrInvalidOverride, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o = o.Clone()
	if o.Aggregator != nil {
		s.override.Aggregator = o.Aggregator
	}
	if o.Aggregated != nil {
		s.override.Aggregated = o.Aggregated
	}
	if o.Stack != nil {
		s.override.Stack = o.Stack
	}
	s.publishLocked(EventState)
	return s.snapshotLocked(), nil
}

// ClearVisualOverride returns to the derived visual config
func (s *Session) ClearVisualOverride() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = insight.VisualOverride{}
	s.publishLocked(EventState)
	return s.snapshotLocked()
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	syn := insight.EmptySynthesis()
	if s.display != nil {
		syn = s.display.Clone()
	}

	snap := Snapshot{
		State:          s.state,
		Pending:        s.latest != nil && !s.latest.finished,
		Page:           s.page,
		PageCount:      len(s.viewSpaces),
		PageLabel:      PageLabel(s.page, len(s.viewSpaces)),
		DisplayedPage:  s.displayedPage,
		Synthesis:      syn,
		VisualConfig:   s.override.Apply(syn.VisualConfig),
		Override:       s.override.Clone(),
		MaxGroupNumber: s.groups,
	}
	if s.notice != nil {
		snap.Notice = s.notice.Error()
		snap.NoticeCode = errors.GetCode(s.notice)
		snap.Retryable = errors.IsRetryable(s.notice)
	}
	if s.latest != nil {
		snap.Run = s.latest.token
	}
	if s.origin != nil {
		snap.Dataset = s.origin.Name
	}
	return snap
}

// Summaries returns the field summaries of the applied run
func (s *Session) Summaries() insight.SummarySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insight.SummarySet{
		Origin:  append([]insight.FieldSummary{}, s.summaries.Origin...),
		Grouped: append([]insight.FieldSummary{}, s.summaries.Grouped...),
	}
}

// Subspaces returns every scored subspace of the applied run, best first
func (s *Session) Subspaces() []insight.Subspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]insight.Subspace, len(s.subspaces))
	for i, sub := range s.subspaces {
		out[i] = sub.Clone()
	}
	return out
}

// ViewSpaces returns the page list of the applied run
func (s *Session) ViewSpaces() []insight.ViewSpace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]insight.ViewSpace, len(s.viewSpaces))
	for i, vs := range s.viewSpaces {
		out[i] = vs.Clone()
	}
	return out
}

// CurrentSubspace returns the best subspace sharing the current page's dimension set
func (s *Session) CurrentSubspace() (insight.Subspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.viewSpaces) == 0 {
		return insight.Subspace{}, false
	}
	key := s.viewSpaces[s.page].DimensionKey()
	for _, sub := range s.subspaces {
		if sub.DimensionKey() == key {
			return sub.Clone(), true
		}
	}
	return insight.Subspace{}, false
}

// PageData returns the rows behind the displayed specification: aggregated per
// the effective visual config, or raw records projected onto the encoded fields
func (s *Session) PageData() ([]dataset.Record, error) {
	s.mu.Lock()
	ds := s.working
	var syn insight.Synthesis
	if s.display != nil {
		syn = s.display.Clone()
	}
	cfg := s.override.Apply(syn.VisualConfig)
	s.mu.Unlock()

	if ds.Len() == 0 || syn.Failed() {
		return []dataset.Record{}, nil
	}

	var dims, measures []string
	for _, f := range syn.FieldFeatures {
		if f.Type.IsMeasure() {
			measures = append(measures, f.Name)
		} else {
			dims = append(dims, f.Name)
		}
	}

	if cfg.DefaultAggregated {
		return specification.Aggregate(ds, dims, measures, cfg.Aggregator)
	}

	rows := make([]dataset.Record, len(ds.Records))
	for i, r := range ds.Records {
		row := make(dataset.Record, len(syn.FieldFeatures))
		for _, f := range syn.FieldFeatures {
			row[f.Name] = r[f.Name]
		}
		rows[i] = row
	}
	return rows, nil
}
