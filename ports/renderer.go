package ports

import (
	"goinsight/domain/insight"
)

// ReportInput is everything a renderer needs to explain the current page
type ReportInput struct {
	DatasetName string
	PageLabel   string
	Summaries   insight.SummarySet
	Subspace    *insight.Subspace
	Synthesis   *insight.Synthesis
	Notice      string
}

// RendererPort renders a session report for humans
type RendererPort interface {
	Markdown(in ReportInput) string
	HTML(in ReportInput) []byte
}
