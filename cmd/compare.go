package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/export"
	"github.com/fdkg-lab/fdkg-advisor/advisor/ingest"
)

var (
	compareData       []string
	compareQuery      advisor.ComparisonQuery
	compareScale      string
	compareDuplicates string
)

// compareCmd puts one (N, k, t, fdkg) configuration side by side across datasets,
// one column per dataset and one row per tallier retention.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the success rate of one configuration across datasets",
	Run: func(cmd *cobra.Command, args []string) {
		if !ingest.IsValidScaleMode(compareScale) {
			logrus.Fatalf("Unknown scale mode: %s", compareScale)
		}
		if !ingest.IsValidDuplicatePolicy(compareDuplicates) {
			logrus.Fatalf("Unknown duplicate policy: %s", compareDuplicates)
		}
		plan := &runPlan{
			Scale:  ingest.ScaleMode(compareScale),
			Policy: ingest.DuplicatePolicy(compareDuplicates),
		}
		for _, arg := range compareData {
			plan.Datasets = append(plan.Datasets, parseDataArg(arg))
		}
		inputs, err := plan.load()
		if err != nil {
			logrus.Fatalf("Failed to load simulation data: %v", err)
		}
		datasets := make([]*advisor.Dataset, 0, len(inputs))
		for _, in := range inputs {
			datasets = append(datasets, in.Dataset)
		}
		if err := runCompare(cmd.OutOrStdout(), datasets, compareQuery); err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
	},
}

func runCompare(w io.Writer, datasets []*advisor.Dataset, q advisor.ComparisonQuery) error {
	m, err := advisor.CompareTopologies(datasets, q)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Configuration: %s\n", q)
	if m.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No dataset holds this configuration.")
		return nil
	}
	for _, ds := range datasets {
		if !slices.Contains(m.ColKeys, ds.Name) {
			logrus.Warnf("dataset %s has no record for %s", ds.Name, q)
		}
	}
	_, _ = fmt.Fprintln(w, "\nSuccess rate (%) by tallier retention and dataset:")
	return export.WriteTopologyComparison(w, m)
}

func init() {
	compareCmd.Flags().StringArrayVar(&compareData, "data", nil, "Simulation CSV as path or name=path (repeatable)")
	compareCmd.Flags().IntVar(&compareQuery.Nodes, "nodes", 0, "Number of nodes (N)")
	compareCmd.Flags().IntVar(&compareQuery.Guardians, "guardians", 0, "Number of guardians (k)")
	compareCmd.Flags().IntVar(&compareQuery.Threshold, "threshold", 0, "Threshold (t)")
	compareCmd.Flags().Float64Var(&compareQuery.FDKGPercentage, "fdkg", 0, "FDKG participation fraction")
	compareCmd.Flags().StringVar(&compareScale, "scale", string(ingest.ScaleAuto), "Percentage column interpretation (auto, percent, fraction)")
	compareCmd.Flags().StringVar(&compareDuplicates, "duplicates", string(ingest.DuplicateReject), "Duplicate configuration policy (reject, first, max, mean)")
	_ = compareCmd.MarkFlagRequired("data")
	_ = compareCmd.MarkFlagRequired("nodes")
	_ = compareCmd.MarkFlagRequired("guardians")
	_ = compareCmd.MarkFlagRequired("threshold")
	_ = compareCmd.MarkFlagRequired("fdkg")
	rootCmd.AddCommand(compareCmd)
}
