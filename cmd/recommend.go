package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fdkg-lab/fdkg-advisor/advisor/export"
	"github.com/fdkg-lab/fdkg-advisor/advisor/metrics"
	"github.com/fdkg-lab/fdkg-advisor/advisor/pipeline"
)

var (
	recommendFlags sweepFlags
	outputDir      string // Directory receiving the artifacts
	writeMetrics   bool   // Stage metrics.prom alongside the CSVs
)

// recommendCmd computes recommendations and pivots for every dataset and writes
// them all-or-nothing.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Compute guardian/threshold recommendations and pivot tables",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := recommendFlags.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid run configuration: %v", err)
		}
		if cmd.Flags().Changed("output-dir") || plan.OutputDir == "" {
			plan.OutputDir = outputDir
		}

		manifest, err := runRecommend(plan, writeMetrics, time.Now())
		if err != nil {
			logrus.Fatalf("Recommendation run failed: %v", err)
		}
		printRunSummary(cmd.OutOrStdout(), manifest, plan.OutputDir)
	},
}

// runRecommend loads, computes and stages the full run before touching the
// output directory.
func runRecommend(plan *runPlan, withMetrics bool, now time.Time) (*export.Manifest, error) {
	inputs, err := plan.load()
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Compute(inputs, plan.Params)
	if err != nil {
		return nil, err
	}

	var rec *metrics.Recorder
	if withMetrics {
		rec = metrics.New()
		res.Observe(rec)
	}
	stage, manifest, err := res.Stage(now, rec)
	if err != nil {
		return nil, err
	}
	if err := stage.Commit(plan.OutputDir); err != nil {
		return nil, err
	}
	return manifest, nil
}

func printRunSummary(w io.Writer, m *export.Manifest, dir string) {
	_, _ = fmt.Fprintf(w, "=== Recommendation Run %s ===\n", m.RunID)
	_, _ = fmt.Fprintf(w, "Success threshold: %s%%\n", export.FormatPercent(m.SuccessThreshold))
	for _, d := range m.Datasets {
		s := d.Summary
		_, _ = fmt.Fprintf(w, "%-20s %4d recommended  %4d empty  %4d infeasible  (%d records)\n",
			d.Name, s.Recommended, s.Empty, s.Infeasible, d.Records)
	}
	_, _ = fmt.Fprintf(w, "Artifacts written to %s\n", dir)
}

func init() {
	recommendFlags.register(recommendCmd.Flags())
	recommendCmd.Flags().StringVar(&outputDir, "output-dir", envOr(envOutputDir, "results"), "Directory for CSV artifacts and the run manifest")
	recommendCmd.Flags().BoolVar(&writeMetrics, "metrics", false, "Also write run metrics in Prometheus text format (metrics.prom)")
	rootCmd.AddCommand(recommendCmd)
}
