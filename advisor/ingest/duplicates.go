package ingest

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

type duplicateKey struct {
	scenario advisor.ScenarioKey
	config   advisor.ConfigKey
}

// resolveDuplicates collapses records sharing a scenario and (k,t) pair according
// to policy. Survivors keep the position of the first occurrence.
func resolveDuplicates(records []advisor.SimulationRecord, policy DuplicatePolicy) ([]advisor.SimulationRecord, error) {
	first := make(map[duplicateKey]int, len(records))
	counts := make(map[int]int)
	out := make([]advisor.SimulationRecord, 0, len(records))

	for i, r := range records {
		k := duplicateKey{r.Scenario(), r.Config()}
		pos, seen := first[k]
		if !seen {
			first[k] = len(out)
			counts[len(out)] = 1
			out = append(out, r)
			continue
		}

		switch policy {
		case DuplicateFirst:
		case DuplicateMax:
			if r.SuccessRate > out[pos].SuccessRate {
				out[pos].SuccessRate = r.SuccessRate
			}
		case DuplicateMean:
			n := float64(counts[pos])
			out[pos].SuccessRate = (out[pos].SuccessRate*n + r.SuccessRate) / (n + 1)
		default:
			return nil, fmt.Errorf("%w: line %d repeats %s %s",
				advisor.ErrDuplicateConfiguration, i+2, k.scenario, k.config.Label())
		}
		counts[pos]++
	}

	if merged := len(records) - len(out); merged > 0 {
		logrus.Warnf("Merged %d duplicate configuration records using policy %q", merged, policy)
	}
	return out, nil
}
