package advisor

import (
	"fmt"
	"math"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

// RecommendationRow is the selected configuration for one feasible scenario.
type RecommendationRow struct {
	ScenarioKey
	OptimalConfiguration
}

// Grid lists the scenario values to enumerate. Iteration nests Nodes (outer),
// FDKGPercentages (middle) and Retentions (inner) in the given order, which fixes
// the order of the output rows.
type Grid struct {
	Nodes           []int     `yaml:"nodes" validate:"required,min=1,dive,min=1"`
	FDKGPercentages []float64 `yaml:"fdkg_percentages" validate:"required,min=1,dive,min=0,max=1"`
	Retentions      []float64 `yaml:"retentions" validate:"required,min=1,dive,min=0,max=1"`
}

// Size returns the number of scenarios the grid enumerates.
func (g Grid) Size() int {
	return len(g.Nodes) * len(g.FDKGPercentages) * len(g.Retentions)
}

// Validate checks that every axis is non-empty, in range and free of duplicates.
// A duplicated value would emit two rows for the same pivot cell.
func (g Grid) Validate() error {
	if len(g.Nodes) == 0 || len(g.FDKGPercentages) == 0 || len(g.Retentions) == 0 {
		return fmt.Errorf("%w: nodes, fdkg percentages and retentions must all be non-empty", ErrInvalidGrid)
	}
	seenNodes := make(map[int]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n < 1 {
			return fmt.Errorf("%w: nodes must be >= 1, got %d", ErrInvalidGrid, n)
		}
		if seenNodes[n] {
			return fmt.Errorf("%w: duplicate nodes value %d", ErrInvalidGrid, n)
		}
		seenNodes[n] = true
	}
	if err := validateFractionAxis("fdkg percentage", g.FDKGPercentages); err != nil {
		return err
	}
	return validateFractionAxis("retention", g.Retentions)
}

func validateFractionAxis(name string, values []float64) error {
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be a fraction in [0, 1], got %v", ErrInvalidGrid, name, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: duplicate %s value %v", ErrInvalidGrid, name, v)
		}
		seen[v] = true
	}
	return nil
}

// GridFromDataset returns the sorted distinct values of each scenario axis present
// in the dataset. Retentions are ascending like the other axes; ordering for
// reports is the pivot builder's concern.
func GridFromDataset(ds *Dataset) Grid {
	var g Grid
	nodes := make(map[int]bool)
	fdkg := make(map[float64]bool)
	ret := make(map[float64]bool)
	for _, r := range ds.records {
		if !nodes[r.Nodes] {
			nodes[r.Nodes] = true
			g.Nodes = append(g.Nodes, r.Nodes)
		}
		if !fdkg[r.FDKGPercentage] {
			fdkg[r.FDKGPercentage] = true
			g.FDKGPercentages = append(g.FDKGPercentages, r.FDKGPercentage)
		}
		if !ret[r.TallierRetPct] {
			ret[r.TallierRetPct] = true
			g.Retentions = append(g.Retentions, r.TallierRetPct)
		}
	}
	slices.Sort(g.Nodes)
	slices.Sort(g.FDKGPercentages)
	slices.Sort(g.Retentions)
	return g
}

// BatchResult holds the rows of a batch run and the decision for every scenario
// in the grid.
type BatchResult struct {
	Dataset string
	Tau     float64
	Rows    []RecommendationRow
	Trace   *trace.DecisionTrace
}

// RecommendBatch evaluates every scenario in grid against ds. Scenarios without
// records or without a configuration reaching tau are skipped and recorded in the
// trace; they never fail the run. Invalid input fails before any row is produced.
func RecommendBatch(ds *Dataset, grid Grid, tau float64) (*BatchResult, error) {
	if err := ValidateTau(tau); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	idx := IndexDataset(ds)
	result := &BatchResult{
		Dataset: ds.Name,
		Tau:     tau,
		Rows:    make([]RecommendationRow, 0),
		Trace:   trace.NewDecisionTrace(ds.Name, tau),
	}

	for _, n := range grid.Nodes {
		for _, fdkg := range grid.FDKGPercentages {
			for _, ret := range grid.Retentions {
				key := ScenarioKey{Nodes: n, FDKGPercentage: fdkg, TallierRetPct: ret}
				decision := trace.ScenarioDecision{Nodes: n, FDKGPercentage: fdkg, TallierRetPct: ret}

				subset := idx.Lookup(key)
				decision.SubsetSize = len(subset)
				if len(subset) == 0 {
					logrus.Debugf("[%s] %s: no simulation data", ds.Name, key)
					decision.Outcome = trace.OutcomeEmpty
					result.Trace.Record(decision)
					continue
				}

				opt, err := SelectOptimal(subset, tau)
				if err != nil {
					return nil, fmt.Errorf("selecting %s: %w", key, err)
				}
				if !opt.Feasible {
					logrus.Debugf("[%s] %s: none of %d configurations reaches %.4g", ds.Name, key, len(subset), tau)
					decision.Outcome = trace.OutcomeInfeasible
					result.Trace.Record(decision)
					continue
				}

				logrus.Debugf("[%s] %s: k=%d t=%d success=%.4g (%d qualifying)",
					ds.Name, key, opt.Guardians, opt.Threshold, opt.SuccessRate, opt.QualifyingCount)
				decision.Outcome = trace.OutcomeRecommended
				decision.QualifyingCount = opt.QualifyingCount
				decision.Guardians = opt.Guardians
				decision.Threshold = opt.Threshold
				decision.SuccessRate = opt.SuccessRate
				result.Trace.Record(decision)
				result.Rows = append(result.Rows, RecommendationRow{ScenarioKey: key, OptimalConfiguration: opt})
			}
		}
	}
	return result, nil
}
