package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/internal/config"
	"goinsight/internal/container"
	"goinsight/internal/session"
	"goinsight/ports"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const runTimeout = 5 * time.Minute

// newContainer wires the application for one command. An empty file selects the synthetic dataset.
func newContainer(cmd *cobra.Command, file string) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Data.File = file
	if sheet, _ := cmd.Flags().GetString("sheet"); sheet != "" {
		cfg.Data.Sheet = sheet
	}
	logger := internal.NewLoggerWithWriter(internal.ParseLogLevel(cfg.LogLevel), cmd.ErrOrStderr())
	return container.New(cfg, logger)
}

// printStructured writes v as YAML or JSON when one of those flags is set.
// It reports false when the caller should print its table instead.
func printStructured(cmd *cobra.Command, v interface{}) (bool, error) {
	w := cmd.OutOrStdout()
	if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	}
	return false, nil
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile FILE",
		Short: "Print entropy profiles of every field and its grouped variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, args[0])
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			ds, err := c.Source.Load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.Profiler.ProfileAll(cmd.Context(), ds)
			if err != nil {
				return err
			}
			if ok, err := printStructured(cmd, res.Summaries); ok {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), res.Summaries)
		},
	}
}

func newSubspacesCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "subspaces FILE",
		Short: "Print scored subspaces, best first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(cmd, args[0])
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			ds, err := c.Source.Load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.Profiler.ProfileAll(cmd.Context(), ds)
			if err != nil {
				return err
			}
			subspaces, err := c.Scorer.Score(cmd.Context(), res.Working, res.Summaries)
			if err != nil {
				return err
			}
			if top > 0 && len(subspaces) > top {
				subspaces = subspaces[:top]
			}
			if ok, err := printStructured(cmd, subspaces); ok {
				return err
			}
			return printSubspaces(cmd.OutOrStdout(), subspaces)
		},
	}
	cmd.Flags().IntVar(&top, "top", 20, "Number of subspaces to print (0 for all)")
	return cmd
}

type recommendOptions struct {
	maxGroups int
	page      int
	report    bool
}

func newRecommendCmd() *cobra.Command {
	var opts recommendOptions
	cmd := &cobra.Command{
		Use:   "recommend FILE",
		Short: "Cluster subspaces into pages and print the recommendation for one page",
		Example: `  goinsight recommend sales.csv --max-groups 4 --page 2
  goinsight recommend sales.xlsx --sheet orders --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, args[0], opts)
		},
	}
	addRecommendFlags(cmd, &opts)
	return cmd
}

func newDemoCmd() *cobra.Command {
	var opts recommendOptions
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the recommendation pipeline on a synthetic retail dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, "", opts)
		},
	}
	addRecommendFlags(cmd, &opts)
	return cmd
}

func addRecommendFlags(cmd *cobra.Command, opts *recommendOptions) {
	cmd.Flags().IntVar(&opts.maxGroups, "max-groups", 0, "Maximum number of pages (default: MAX_GROUP_NUMBER)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to print, starting at 1")
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print the markdown explanation report")
}

func runRecommend(cmd *cobra.Command, file string, opts recommendOptions) error {
	c, err := newContainer(cmd, file)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	if cmd.Flags().Changed("max-groups") {
		// with nothing loaded the bound is only stored, so the first run uses it
		if _, err := c.Session.SetMaxGroupNumber(ctx, opts.maxGroups); err != nil {
			return err
		}
	}

	token, err := c.Start(ctx)
	if err != nil {
		return err
	}
	snap, err := c.Session.Await(ctx, token)
	if err != nil {
		return err
	}

	if snap.PageCount > 0 && opts.page != 1 {
		if snap, err = c.Session.GotoPage(opts.page - 1); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.report {
		in := ports.ReportInput{
			DatasetName: snap.Dataset,
			PageLabel:   snap.PageLabel,
			Summaries:   c.Session.Summaries(),
			Synthesis:   &snap.Synthesis,
			Notice:      snap.Notice,
		}
		if sub, ok := c.Session.CurrentSubspace(); ok {
			in.Subspace = &sub
		}
		_, err = io.WriteString(out, c.Renderer.Markdown(in))
		return err
	}
	if ok, err := printStructured(cmd, snap); ok {
		return err
	}
	return printSnapshot(out, snap)
}

func printSummaries(w io.Writer, set insight.SummarySet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tGRANULARITY\tDISTINCT\tENTROPY\tMAX ENTROPY")
	for _, fs := range set.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.3f\t%.3f\n", fs.FieldName, fs.Type, fs.Granularity, fs.Distinct, fs.Entropy, fs.MaxEntropy)
	}
	return tw.Flush()
}

func printSubspaces(w io.Writer, subspaces []insight.Subspace) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tDIMENSIONS\tMEASURES")
	for i, s := range subspaces {
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", i+1, s.Score, insight.JoinNames(s.Dimensions), insight.JoinNames(s.MeasureNames()))
	}
	return tw.Flush()
}

func printSnapshot(w io.Writer, snap session.Snapshot) error {
	fmt.Fprintf(w, "%s (%s)\n", snap.PageLabel, snap.Dataset)
	if snap.Notice != "" {
		fmt.Fprintf(w, "notice: %s\n", snap.Notice)
	}
	schema := snap.Synthesis.Schema
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "position\t%s\n", insight.JoinNames(schema.Position))
	fmt.Fprintf(tw, "color\t%s\n", insight.JoinNames(schema.Color))
	fmt.Fprintf(tw, "opacity\t%s\n", insight.JoinNames(schema.Opacity))
	fmt.Fprintf(tw, "geometry\t%s\n", insight.JoinNames(schema.GeomType))
	cfg := snap.VisualConfig
	fmt.Fprintf(tw, "visual\taggregator=%s aggregated=%t stack=%t\n", cfg.Aggregator, cfg.DefaultAggregated, cfg.DefaultStack)
	for _, d := range snap.Synthesis.Degradations {
		fmt.Fprintf(tw, "dropped\t%s\n", d)
	}
	return tw.Flush()
}
