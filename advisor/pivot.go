package advisor

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// MinGuardianQuery selects the raw records aggregated into the minimal-guardian
// matrix. Threshold 0 accepts every threshold.
type MinGuardianQuery struct {
	Retention float64 `yaml:"retention" validate:"min=0,max=1"`
	Threshold int     `yaml:"threshold" validate:"min=0"`
	Tau       float64 `yaml:"-"`
}

// MinGuardianMatrix maps (nodes, fdkgPercentage) to the smallest guardian count
// of any qualifying record.
type MinGuardianMatrix = PivotMatrix[int, float64, int]

// BuildMinGuardianMatrix answers "what is the cheapest guardian count that meets
// tau at all" for a fixed retention (and optionally a fixed threshold), directly
// from raw records and independent of the selector. Rows are nodes ascending,
// columns fdkg participation ascending; colliding records merge with min.
func BuildMinGuardianMatrix(records []SimulationRecord, q MinGuardianQuery) (*MinGuardianMatrix, error) {
	if err := ValidateTau(q.Tau); err != nil {
		return nil, err
	}
	if q.Threshold < 0 {
		return nil, fmt.Errorf("%w: threshold filter must be >= 0, got %d", ErrInvalidRecord, q.Threshold)
	}

	b := newPivotBuilder[int, float64, int](func(existing, incoming int) int {
		return min(existing, incoming)
	})
	for _, r := range records {
		if r.TallierRetPct != q.Retention || r.SuccessRate < q.Tau {
			continue
		}
		if q.Threshold != 0 && r.Threshold != q.Threshold {
			continue
		}
		if err := b.add(r.Nodes, r.FDKGPercentage, r.Guardians); err != nil {
			return nil, err
		}
	}
	return b.build(cmp.Compare[int], cmp.Compare[float64]), nil
}

// RetentionRowKey is the composite row key of the configuration-count matrix.
type RetentionRowKey struct {
	Nodes         int
	TallierRetPct float64
}

// compareRetentionRows orders by nodes ascending, then retention descending.
func compareRetentionRows(a, b RetentionRowKey) int {
	if c := cmp.Compare(a.Nodes, b.Nodes); c != 0 {
		return c
	}
	return cmp.Compare(b.TallierRetPct, a.TallierRetPct)
}

// ConfigCountMatrix maps (nodes, retention) × fdkgPercentage to the number of
// qualifying configurations.
type ConfigCountMatrix = PivotMatrix[RetentionRowKey, float64, int]

// ConfigOverlayMatrix holds the "(k,t)" label of the chosen configuration for the
// same cells as a ConfigCountMatrix.
type ConfigOverlayMatrix = PivotMatrix[RetentionRowKey, float64, string]

// BuildConfigCountMatrices pivots recommendation rows into the qualifying-count
// matrix and its optimal-label overlay. Two rows for the same cell, or an
// infeasible row, fail the build with ErrMalformedPivot.
func BuildConfigCountMatrices(rows []RecommendationRow) (*ConfigCountMatrix, *ConfigOverlayMatrix, error) {
	counts := newPivotBuilder[RetentionRowKey, float64, int](nil)
	labels := newPivotBuilder[RetentionRowKey, float64, string](nil)
	for _, r := range rows {
		if !r.Feasible {
			return nil, nil, fmt.Errorf("%w: infeasible row for %s", ErrMalformedPivot, r.ScenarioKey)
		}
		rk := RetentionRowKey{Nodes: r.Nodes, TallierRetPct: r.TallierRetPct}
		if err := counts.add(rk, r.FDKGPercentage, r.QualifyingCount); err != nil {
			return nil, nil, err
		}
		if err := labels.add(rk, r.FDKGPercentage, r.Config().Label()); err != nil {
			return nil, nil, err
		}
	}
	countM := counts.build(compareRetentionRows, cmp.Compare[float64])
	labelM := labels.build(compareRetentionRows, cmp.Compare[float64])
	if err := SameShape(countM, labelM); err != nil {
		return nil, nil, err
	}
	return countM, labelM, nil
}

// SuccessRateMatrix maps threshold × guardians to the mean success rate.
type SuccessRateMatrix = PivotMatrix[int, int, float64]

// BuildSuccessRateMatrix lays out one scenario's subset as threshold rows
// (ascending) by guardian columns (ascending). Records sharing a cell are averaged.
func BuildSuccessRateMatrix(subset []SimulationRecord) *SuccessRateMatrix {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[Cell[int, int]]*acc)
	for _, r := range subset {
		k := Cell[int, int]{r.Threshold, r.Guardians}
		a, ok := sums[k]
		if !ok {
			a = &acc{}
			sums[k] = a
		}
		a.sum += r.SuccessRate
		a.n++
	}
	b := newPivotBuilder[int, int, float64](nil)
	for k, a := range sums {
		// keys are unique here, add cannot collide
		_ = b.add(k.Row, k.Col, a.sum/float64(a.n))
	}
	return b.build(cmp.Compare[int], cmp.Compare[int])
}

// RetentionPoint is the smallest tallier retention at which a (guardians,
// threshold) pair still reaches the success threshold.
type RetentionPoint struct {
	Guardians      int
	Threshold      int
	MinRetention   float64
	ThresholdRatio float64 // threshold / guardians
	GuardianShare  float64 // guardians / nodes
}

// MinimalRetentionFrontier computes, for one (nodes, fdkg) slice of the sweep, the
// minimal retention per qualifying (guardians, threshold) pair. Points are sorted
// by guardians then threshold, ascending.
func MinimalRetentionFrontier(records []SimulationRecord, nodes int, fdkg, tau float64) ([]RetentionPoint, error) {
	if err := ValidateTau(tau); err != nil {
		return nil, err
	}
	best := make(map[ConfigKey]float64)
	for _, r := range records {
		if r.Nodes != nodes || r.FDKGPercentage != fdkg || r.SuccessRate < tau {
			continue
		}
		cur, ok := best[r.Config()]
		if !ok {
			cur = math.Inf(1)
		}
		best[r.Config()] = math.Min(cur, r.TallierRetPct)
	}

	points := make([]RetentionPoint, 0, len(best))
	for c, ret := range best {
		points = append(points, RetentionPoint{
			Guardians:      c.Guardians,
			Threshold:      c.Threshold,
			MinRetention:   ret,
			ThresholdRatio: float64(c.Threshold) / float64(c.Guardians),
			GuardianShare:  float64(c.Guardians) / float64(nodes),
		})
	}
	slices.SortFunc(points, func(a, b RetentionPoint) int {
		if c := cmp.Compare(a.Guardians, b.Guardians); c != 0 {
			return c
		}
		return cmp.Compare(a.Threshold, b.Threshold)
	})
	return points, nil
}
