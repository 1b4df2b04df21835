package advisor

import (
	"cmp"
	"fmt"
)

// ComparisonQuery fixes one configuration across datasets.
type ComparisonQuery struct {
	Nodes          int
	Guardians      int
	Threshold      int
	FDKGPercentage float64
}

func (q ComparisonQuery) String() string {
	return fmt.Sprintf("N=%d k=%d t=%d fdkg=%g", q.Nodes, q.Guardians, q.Threshold, q.FDKGPercentage)
}

// TopologyComparison maps tallier retention × dataset name to the success rate of
// the queried configuration.
type TopologyComparison = PivotMatrix[float64, string, float64]

// CompareTopologies lays the success rate of one configuration side by side for
// several datasets (typically one per network topology). Rows are retentions
// ascending, columns keep the order of datasets. A retention missing from one
// dataset leaves that cell absent.
func CompareTopologies(datasets []*Dataset, q ComparisonQuery) (*TopologyComparison, error) {
	order := make(map[string]int, len(datasets))
	for i, ds := range datasets {
		if _, dup := order[ds.Name]; dup {
			return nil, fmt.Errorf("dataset %q compared twice", ds.Name)
		}
		order[ds.Name] = i
	}

	b := newPivotBuilder[float64, string, float64](nil)
	for _, ds := range datasets {
		for _, r := range ds.records {
			if r.Nodes != q.Nodes || r.Guardians != q.Guardians || r.Threshold != q.Threshold ||
				r.FDKGPercentage != q.FDKGPercentage {
				continue
			}
			// datasets hold at most one record per (scenario, k, t)
			if err := b.add(r.TallierRetPct, ds.Name, r.SuccessRate); err != nil {
				return nil, err
			}
		}
	}
	return b.build(cmp.Compare[float64], func(a, b string) int {
		return cmp.Compare(order[a], order[b])
	}), nil
}
