package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/export"
	"github.com/fdkg-lab/fdkg-advisor/advisor/ingest"
)

var (
	inspectData       string
	inspectNodes      int
	inspectFDKG       float64
	inspectRetention  float64
	inspectTau        float64
	inspectScale      string
	inspectDuplicates string
)

// inspectCmd explains the decision for one scenario: the selection, the success
// rate of every (k,t) pair and the retention frontier of its (N, fdkg) slice.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the decision and success-rate grid for one scenario",
	Run: func(cmd *cobra.Command, args []string) {
		if !ingest.IsValidScaleMode(inspectScale) {
			logrus.Fatalf("Unknown scale mode: %s", inspectScale)
		}
		if !ingest.IsValidDuplicatePolicy(inspectDuplicates) {
			logrus.Fatalf("Unknown duplicate policy: %s", inspectDuplicates)
		}
		src := parseDataArg(inspectData)
		ds, err := ingest.LoadRecords(src.Path, ingest.Options{
			Name:       src.Name,
			Scale:      ingest.ScaleMode(inspectScale),
			Duplicates: ingest.DuplicatePolicy(inspectDuplicates),
		})
		if err != nil {
			logrus.Fatalf("Failed to load simulation data: %v", err)
		}
		key := advisor.ScenarioKey{Nodes: inspectNodes, FDKGPercentage: inspectFDKG, TallierRetPct: inspectRetention}
		if err := runInspect(cmd.OutOrStdout(), ds, key, NormalizeTau(inspectTau)); err != nil {
			logrus.Fatalf("Inspection failed: %v", err)
		}
	},
}

func runInspect(w io.Writer, ds *advisor.Dataset, key advisor.ScenarioKey, tau float64) error {
	if err := advisor.ValidateTau(tau); err != nil {
		return err
	}
	records := ds.Records()
	subset := advisor.FilterScenario(records, key)
	_, _ = fmt.Fprintf(w, "Dataset:  %s\nScenario: %s\nRecords:  %d\n", ds.Name, key, len(subset))
	if len(subset) == 0 {
		_, _ = fmt.Fprintln(w, "No simulation data for this scenario.")
		var known []advisor.ScenarioKey
		for _, k := range advisor.IndexDataset(ds).Scenarios() {
			if k.Nodes == key.Nodes {
				known = append(known, k)
			}
		}
		if len(known) > 0 {
			_, _ = fmt.Fprintf(w, "Scenarios with N=%d:\n", key.Nodes)
			for _, k := range known {
				_, _ = fmt.Fprintf(w, "  %s\n", k)
			}
		}
		return nil
	}

	opt, err := advisor.SelectOptimal(subset, tau)
	if err != nil {
		return err
	}
	if opt.Feasible {
		_, _ = fmt.Fprintf(w, "Recommended: k=%d t=%d success=%s%% (%d qualifying configurations)\n",
			opt.Guardians, opt.Threshold, export.FormatPercent(opt.SuccessRate), opt.QualifyingCount)
	} else {
		_, _ = fmt.Fprintf(w, "No configuration reaches %s%%.\n", export.FormatPercent(tau))
	}

	_, _ = fmt.Fprintln(w, "\nSuccess rate (%) by threshold and guardians:")
	if err := export.WriteSuccessRateMatrix(w, advisor.BuildSuccessRateMatrix(subset)); err != nil {
		return err
	}

	points, err := advisor.MinimalRetentionFrontier(records, key.Nodes, key.FDKGPercentage, tau)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\nMinimal tallier retention per configuration (N=%d, fdkg=%s%%):\n",
		key.Nodes, export.FormatPercent(key.FDKGPercentage))
	return export.WriteRetentionFrontier(w, points)
}

func init() {
	inspectCmd.Flags().StringVar(&inspectData, "data", "", "Simulation CSV as path or name=path")
	inspectCmd.Flags().IntVar(&inspectNodes, "nodes", 0, "Number of nodes (N)")
	inspectCmd.Flags().Float64Var(&inspectFDKG, "fdkg", 0, "FDKG participation fraction")
	inspectCmd.Flags().Float64Var(&inspectRetention, "retention", 0, "Tallier retention fraction")
	inspectCmd.Flags().Float64Var(&inspectTau, "success-threshold", defaultSuccessThreshold, "Minimum success rate, as a percentage (90) or a fraction (0.9)")
	inspectCmd.Flags().StringVar(&inspectScale, "scale", string(ingest.ScaleAuto), "Percentage column interpretation (auto, percent, fraction)")
	inspectCmd.Flags().StringVar(&inspectDuplicates, "duplicates", string(ingest.DuplicateReject), "Duplicate configuration policy (reject, first, max, mean)")
	_ = inspectCmd.MarkFlagRequired("data")
	_ = inspectCmd.MarkFlagRequired("nodes")
	_ = inspectCmd.MarkFlagRequired("fdkg")
	_ = inspectCmd.MarkFlagRequired("retention")
	rootCmd.AddCommand(inspectCmd)
}
