// Package report renders the explanation report shown next to a recommended view
package report

import (
	"fmt"
	"html"
	"strings"

	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/ports"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Renderer writes reports as markdown and converts them to HTML
type Renderer struct {
	logger *internal.Logger
}

var _ ports.RendererPort = (*Renderer)(nil)

// NewRenderer creates a report renderer
func NewRenderer(logger *internal.Logger) *Renderer {
	return &Renderer{logger: logger.Named("report")}
}

// Markdown renders the report for one page
func (r *Renderer) Markdown(in ports.ReportInput) string {
	var b strings.Builder

	title := in.DatasetName
	if title == "" {
		title = "Untitled dataset"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))
	if in.PageLabel != "" {
		fmt.Fprintf(&b, "_%s_\n\n", in.PageLabel)
	}
	if in.Notice != "" {
		fmt.Fprintf(&b, "> **Notice:** %s\n\n", escape(in.Notice))
	}

	writeSynthesis(&b, in.Synthesis)
	writeSubspace(&b, in.Subspace)
	writeSummaries(&b, in.Summaries, in.Synthesis)

	return b.String()
}

// HTML renders the markdown report into a standalone page
func (r *Renderer) HTML(in ports.ReportInput) []byte {
	md := r.Markdown(in)

	// parsers keep state and cannot be reused between documents
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	body := markdown.ToHTML([]byte(md), p, renderer)
	r.logger.Debug("rendered %d bytes of markdown into %d bytes of HTML", len(md), len(body))

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", html.EscapeString(in.DatasetName))
	b.WriteString("</head><body>\n")
	b.Write(body)
	b.WriteString("</body></html>\n")
	return []byte(b.String())
}

func writeSynthesis(b *strings.Builder, s *insight.Synthesis) {
	b.WriteString("## Recommended view\n\n")
	if s == nil || s.Failed() {
		b.WriteString("No recommendation for this view.\n\n")
		return
	}

	b.WriteString("| Channel | Fields |\n|---|---|\n")
	fmt.Fprintf(b, "| position | %s |\n", cell(s.Schema.Position))
	fmt.Fprintf(b, "| color | %s |\n", cell(s.Schema.Color))
	fmt.Fprintf(b, "| opacity | %s |\n", cell(s.Schema.Opacity))
	fmt.Fprintf(b, "| geometry | %s |\n\n", cell(s.Schema.GeomType))

	cfg := s.VisualConfig
	fmt.Fprintf(b, "Aggregator **%s**, aggregated %t, stacked %t.\n\n", cfg.Aggregator, cfg.DefaultAggregated, cfg.DefaultStack)

	if len(s.Degradations) > 0 {
		b.WriteString("Left out of the view:\n\n")
		for _, d := range s.Degradations {
			fmt.Fprintf(b, "- `%s`: %s\n", d.Field, strings.ReplaceAll(string(d.Reason), "_", " "))
		}
		b.WriteString("\n")
	}
}

func writeSubspace(b *strings.Builder, s *insight.Subspace) {
	if s == nil {
		return
	}
	fmt.Fprintf(b, "## Subspace %s\n\n", escape(insight.JoinNames(s.Dimensions)))
	fmt.Fprintf(b, "Score **%.4f**.\n\n", s.Score)

	b.WriteString("| Measure | Value |\n|---|---:|\n")
	for _, row := range MeasureRows([]insight.Subspace{*s}) {
		fmt.Fprintf(b, "| %s | %.4f |\n", escape(row.Measure), row.Value)
	}
	b.WriteString("\n")

	if len(s.Measures) < 2 {
		return
	}
	b.WriteString("| x | y | correlation |\n|---|---|---:|\n")
	for _, c := range CorrelationCells(*s) {
		if c.X == c.Y {
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %.3f |\n", escape(c.X), escape(c.Y), c.Correlation)
	}
	b.WriteString("\n")
}

// writeSummaries lists every profiled field with the channel it landed on, if any
func writeSummaries(b *strings.Builder, set insight.SummarySet, syn *insight.Synthesis) {
	if set.IsEmpty() {
		return
	}
	b.WriteString("## Field profiles\n\n")
	b.WriteString("| Field | Type | Granularity | Distinct | Entropy | Max entropy | Channel |\n|---|---|---|---:|---:|---:|---|\n")
	for _, fs := range set.All() {
		channel := "-"
		if syn != nil {
			if ch, ok := syn.Schema.ChannelOf(fs.FieldName); ok {
				channel = string(ch)
			}
		}
		fmt.Fprintf(b, "| %s | %s | %s | %d | %.3f | %.3f | %s |\n",
			escape(fs.FieldName), fs.Type, fs.Granularity, fs.Distinct, fs.Entropy, fs.MaxEntropy, channel)
	}
	b.WriteString("\n")
}

func cell(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "`" + n + "`"
	}
	return strings.Join(out, ", ")
}

// escape keeps user field names from breaking table cells or emphasis
func escape(s string) string {
	r := strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`)
	return r.Replace(s)
}
