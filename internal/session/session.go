package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/domain/run"
	"goinsight/internal"
	"goinsight/internal/errors"
	"goinsight/ports"
)

type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeRun
	noticeSynthesis
)

// Session is the single owner of recommendation state for one dataset.
// Profiling, scoring and clustering run in the background; only the most
// recently initiated run may apply its result. Navigation and overrides are
// synchronous and stay available while a run is in flight.
type Session struct {
	profiler  ports.ProfilerPort
	scorer    ports.ScorerPort
	clusterer ports.ClustererPort
	synth     ports.SynthesizerPort
	logger    *internal.Logger

	base     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
	state  State
	stable State

	origin     *dataset.Dataset
	working    *dataset.Dataset
	summaries  insight.SummarySet
	subspaces  []insight.Subspace
	viewSpaces []insight.ViewSpace
	groups     int
	wantGroups int

	page          int
	display       *insight.Synthesis
	displayedPage int
	override      insight.VisualOverride
	notice        error
	noticeKind    noticeKind

	seq          uint64
	latest       *job
	inputs       plan
	stableInputs plan
	runs         map[string]*job
	runOrder     []string

	subscribers map[int]chan Event
	nextSub     int
}

// New creates an idle session
func New(profiler ports.ProfilerPort, scorer ports.ScorerPort, clusterer ports.ClustererPort, synth ports.SynthesizerPort, maxGroupNumber int, logger *internal.Logger) *Session {
	base, shutdown := context.WithCancel(context.Background())
	return &Session{
		profiler:      profiler,
		scorer:        scorer,
		clusterer:     clusterer,
		synth:         synth,
		logger:        logger.Named("session"),
		base:          base,
		shutdown:      shutdown,
		state:         StateIdle,
		stable:        StateIdle,
		groups:        maxGroupNumber,
		wantGroups:    maxGroupNumber,
		displayedPage: -1,
		runs:          make(map[string]*job),
		subscribers:   make(map[int]chan Event),
	}
}

// LoadDataset starts a full run over ds. When fields is non-empty it replaces the
// declared field list. Failures surface through Await and the snapshot notice.
func (s *Session) LoadDataset(ctx context.Context, ds *dataset.Dataset, fields []dataset.Field) (core.RunToken, error) {
	if err := ctx.Err(); err != nil {
		return core.RunToken{}, err
	}
	if ds == nil {
		return core.RunToken{}, errors.Profiling("no dataset to load", core.ErrEmptyDataset)
	}
	if len(fields) > 0 {
		ds = dataset.New(ds.Name, append([]dataset.Field(nil), fields...), ds.Records)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.RunToken{}, core.ErrSessionClosed
	}
	return s.startLocked(plan{kind: run.KindFull, origin: ds, groups: s.wantGroups}), nil
}

// LoadSubspaces starts a clustering run over subspaces scored upstream
func (s *Session) LoadSubspaces(ctx context.Context, subspaces []insight.Subspace, summaries insight.SummarySet) (core.RunToken, error) {
	if err := ctx.Err(); err != nil {
		return core.RunToken{}, err
	}
	upstream := make([]insight.Subspace, len(subspaces))
	for i, sub := range subspaces {
		upstream[i] = sub.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.RunToken{}, core.ErrSessionClosed
	}
	return s.startLocked(plan{
		kind:      run.KindUpstream,
		working:   s.working,
		summaries: &summaries,
		upstream:  upstream,
		groups:    s.wantGroups,
	}), nil
}

// SetMaxGroupNumber re-clusters the latest inputs with a new cluster bound.
// An invalid bound is rejected synchronously and changes nothing.
// With nothing loaded yet the bound is stored and the zero token is returned.
func (s *Session) SetMaxGroupNumber(ctx context.Context, n int) (core.RunToken, error) {
	if n < 1 {
		return core.RunToken{}, errors.Clustering("cannot change max group number",
			fmt.Errorf("%w: got %d", core.ErrInvalidGroupNumber, n))
	}
	if err := ctx.Err(); err != nil {
		return core.RunToken{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.RunToken{}, core.ErrSessionClosed
	}

	s.wantGroups = n
	if s.inputs.origin == nil && s.inputs.upstream == nil {
		s.groups = n
		s.publishLocked(EventState)
		return core.RunToken{}, nil
	}

	p := s.inputs
	p.kind = run.KindRecluster
	p.groups = n
	return s.startLocked(p), nil
}

// startLocked supersedes any in-flight run and launches p in the background
func (s *Session) startLocked(p plan) core.RunToken {
	if s.latest != nil && !s.latest.finished {
		s.latest.cancel()
		s.logger.Debug("run %s superseded", s.latest.token)
	}

	s.seq++
	ctx, cancel := context.WithCancel(s.base)
	token := core.NewRunToken(s.seq)
	r := &job{
		token:    token,
		manifest: run.NewManifest(token, p.kind, p.fingerprint()),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.latest = r
	s.inputs = p
	s.track(r)
	s.logger.Debug("run %s started: %s, inputs %s", token, p.kind, r.manifest.Fingerprint.Fingerprint.Short())

	s.state = StateProfiling
	s.publishLocked(EventState)

	s.wg.Add(1)
	go s.work(ctx, r, p)
	return r.token
}

func (s *Session) work(ctx context.Context, r *job, p plan) {
	defer s.wg.Done()
	defer r.cancel()

	started := time.Now()
	out, err := s.execute(ctx, p, func(st State) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.latest == r && s.state != st {
			s.state = st
			s.publishLocked(EventState)
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(r.done)
	r.finished = true

	if s.latest != r {
		r.err = errors.Superseded("run "+r.token.String()+" discarded", core.ErrSuperseded)
		r.manifest.Finish(run.StatusSuperseded, 0, 0, nil)
		r.result = s.snapshotLocked()
		return
	}

	if err != nil {
		r.err = err
		r.manifest.Finish(run.StatusFailed, 0, 0, err)
		s.state = s.stable
		s.inputs = s.stableInputs
		s.setNotice(noticeRun, err)
		s.logger.Warn("run %s failed after %s: %v", r.token, time.Since(started).Round(time.Millisecond), err)
		r.result = s.snapshotLocked()
		s.publishLocked(EventNotice)
		return
	}

	s.applyLocked(out)
	r.manifest.Finish(run.StatusReady, len(out.subspaces), len(out.viewSpaces), nil)
	s.logger.Info("run %s ready in %s: %d subspaces, %d view spaces",
		r.token, time.Since(started).Round(time.Millisecond), len(out.subspaces), len(out.viewSpaces))
	r.result = s.snapshotLocked()
	s.publishLocked(EventState)
}

// applyLocked swaps in a completed run's results as one unit
func (s *Session) applyLocked(out *outcome) {
	s.origin = out.origin
	s.working = out.working
	s.summaries = out.summaries
	s.subspaces = out.subspaces
	s.viewSpaces = out.viewSpaces
	s.groups = out.groups

	summaries := out.summaries
	s.stableInputs = plan{
		origin:    out.origin,
		working:   out.working,
		summaries: &summaries,
		upstream:  out.subspaces,
		groups:    out.groups,
	}
	s.inputs = s.stableInputs

	if s.page >= len(s.viewSpaces) {
		s.page = 0
	}
	s.state = StateReady
	s.stable = StateReady
	s.clearNotice(noticeRun)
	s.resynthesizeLocked()
}

// resynthesizeLocked derives the current page's specification. A page without a
// recommendation keeps the previous display and raises a notice instead.
func (s *Session) resynthesizeLocked() {
	if len(s.viewSpaces) == 0 {
		empty := insight.EmptySynthesis()
		s.display = &empty
		s.displayedPage = -1
		s.clearNotice(noticeSynthesis)
		return
	}

	syn := s.synth.Synthesize(s.working, s.summaries, s.viewSpaces[s.page])
	if syn.Failed() {
		failure := errors.SynthesisFailure(fmt.Sprintf("page %d", s.page+1), core.ErrNoRecommendation)
		s.setNotice(noticeSynthesis, failure)
		s.logger.Warn("%v", failure)
		return
	}
	s.display = &syn
	s.displayedPage = s.page
	s.clearNotice(noticeSynthesis)
}

func (s *Session) setNotice(kind noticeKind, err error) {
	s.noticeKind = kind
	s.notice = err
}

func (s *Session) clearNotice(kind noticeKind) {
	if s.noticeKind == kind {
		s.noticeKind = noticeNone
		s.notice = nil
	}
}

func (s *Session) track(r *job) {
	s.runs[r.token.ID] = r
	s.runOrder = append(s.runOrder, r.token.ID)
	for len(s.runOrder) > maxTrackedRuns {
		delete(s.runs, s.runOrder[0])
		s.runOrder = s.runOrder[1:]
	}
}

// Await blocks until the run identified by token finishes or ctx is done.
// A superseded run reports ErrSuperseded.
func (s *Session) Await(ctx context.Context, token core.RunToken) (Snapshot, error) {
	s.mu.Lock()
	r, ok := s.runs[token.ID]
	s.mu.Unlock()
	if !ok {
		return s.Snapshot(), errors.WithCode(errors.CodeNotFound, fmt.Errorf("%w: %s", core.ErrUnknownRun, token))
	}

	select {
	case <-r.done:
		return r.result, r.err
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

// Runs returns the manifests of the tracked runs, newest first
func (s *Session) Runs() []run.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]run.Manifest, 0, len(s.runOrder))
	for i := len(s.runOrder) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.runOrder[i]].manifest)
	}
	return out
}

// Close cancels in-flight work, waits for it, and closes every subscription
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.shutdown()
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}
