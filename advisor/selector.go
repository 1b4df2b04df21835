package advisor

import "fmt"

// OptimalConfiguration is the selector's answer for one scenario and one success
// threshold. Feasible=false is the infeasible marker: the scenario has data but no
// configuration reaches the threshold.
type OptimalConfiguration struct {
	Feasible        bool
	Guardians       int
	Threshold       int
	SuccessRate     float64
	QualifyingCount int // distinct (guardians, threshold) pairs meeting the threshold
}

// Config returns the chosen (guardians, threshold) pair.
func (o OptimalConfiguration) Config() ConfigKey {
	return ConfigKey{Guardians: o.Guardians, Threshold: o.Threshold}
}

// ValidateTau checks that a success threshold lies in (0, 1].
func ValidateTau(tau float64) error {
	if !(tau > 0 && tau <= 1) {
		return fmt.Errorf("%w: must be in (0, 1], got %v", ErrInvalidThreshold, tau)
	}
	return nil
}

// SelectOptimal picks the cheapest, most fault-tolerant configuration in a
// scenario's subset that reaches tau:
//
//  1. only records with SuccessRate >= tau qualify
//  2. k* is the smallest qualifying guardian count
//  3. t* is the largest qualifying threshold at k*
//  4. ties at (k*, t*) go to the higher success rate, then the earlier record
//
// QualifyingCount counts distinct qualifying (guardians, threshold) pairs across
// the whole subset, not only those at k*.
func SelectOptimal(subset []SimulationRecord, tau float64) (OptimalConfiguration, error) {
	if err := ValidateTau(tau); err != nil {
		return OptimalConfiguration{}, err
	}

	qualifying := make(map[ConfigKey]struct{})
	best := -1
	for i, r := range subset {
		if r.SuccessRate < tau {
			continue
		}
		qualifying[r.Config()] = struct{}{}
		if best < 0 || preferred(r, subset[best]) {
			best = i
		}
	}
	if best < 0 {
		return OptimalConfiguration{}, nil
	}

	chosen := subset[best]
	return OptimalConfiguration{
		Feasible:        true,
		Guardians:       chosen.Guardians,
		Threshold:       chosen.Threshold,
		SuccessRate:     chosen.SuccessRate,
		QualifyingCount: len(qualifying),
	}, nil
}

// preferred reports whether candidate strictly beats incumbent. Equal candidates
// never win, which keeps the first occurrence.
func preferred(candidate, incumbent SimulationRecord) bool {
	if candidate.Guardians != incumbent.Guardians {
		return candidate.Guardians < incumbent.Guardians
	}
	if candidate.Threshold != incumbent.Threshold {
		return candidate.Threshold > incumbent.Threshold
	}
	return candidate.SuccessRate > incumbent.SuccessRate
}
