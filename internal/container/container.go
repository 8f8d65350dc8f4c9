package container

import (
	"context"
	"fmt"

	"goinsight/adapters/excel"
	"goinsight/adapters/report"
	"goinsight/domain/core"
	"goinsight/internal"
	"goinsight/internal/cluster"
	"goinsight/internal/config"
	"goinsight/internal/profiling"
	"goinsight/internal/session"
	"goinsight/internal/specification"
	"goinsight/internal/subspace"
	"goinsight/internal/testkit"
	"goinsight/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Pipeline stages
	Profiler    *profiling.FieldProfiler
	Scorer      *subspace.SubspaceScorer
	Clusterer   *cluster.ViewSpaceClusterer
	Synthesizer *specification.SpecificationSynthesizer

	// Collaborators
	Source   ports.DataSourcePort
	Renderer *report.Renderer

	Session *session.Session
}

// New creates a container wired from cfg. With no DATA_FILE configured the
// synthetic retail dataset is served.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{Config: cfg, Logger: logger}
	c.initPipeline()
	c.initSource()
	c.Renderer = report.NewRenderer(logger)
	c.Session = session.New(c.Profiler, c.Scorer, c.Clusterer, c.Synthesizer, cfg.Recommendation.MaxGroupNumber, logger)
	return c, nil
}

func (c *Container) initPipeline() {
	r := c.Config.Recommendation
	c.Profiler = profiling.NewFieldProfiler(r.Workers, profiling.NewGrouper(r.BinCount, r.GroupCardinality), c.Logger)
	c.Scorer = subspace.NewSubspaceScorer(r.MaxDimensions, r.MaxMeasures, r.Workers, c.Logger)
	c.Clusterer = cluster.NewViewSpaceClusterer(r.MergeThreshold, c.Logger)
	c.Synthesizer = specification.NewSpecificationSynthesizer(c.Config.Visual.Aggregator, r.HighCardinality, c.Logger)
}

func (c *Container) initSource() {
	if c.Config.Data.File == "" {
		c.Logger.Info("no data file configured, using synthetic retail data")
		c.Source = testkit.StaticSource{DS: testkit.NewTestKit().RetailDataset()}
		return
	}
	readerConfig := excel.DefaultReaderConfig()
	readerConfig.Sheet = c.Config.Data.Sheet
	readerConfig.Types = c.Config.Data.Types
	c.Logger.Info("using data file %s", c.Config.Data.File)
	c.Source = excel.NewDataReader(c.Config.Data.File, readerConfig, c.Logger)
}

// Start loads the configured dataset into the session and returns the run token
func (c *Container) Start(ctx context.Context) (core.RunToken, error) {
	ds, err := c.Source.Load(ctx)
	if err != nil {
		return core.RunToken{}, err
	}
	return c.Session.LoadDataset(ctx, ds, nil)
}

// Shutdown cancels background work and releases the session
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.Session.Close()
		close(done)
	}()
	select {
	case <-done:
		c.Logger.Info("container shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
