// Package trace records the per-scenario decisions of a batch recommendation run.
// It does not import advisor; it stores pure data types.
package trace

// Outcome classifies what the batch driver did with one scenario.
type Outcome string

const (
	// OutcomeRecommended means a feasible configuration was selected and a row emitted.
	OutcomeRecommended Outcome = "recommended"
	// OutcomeEmpty means the sweep holds no records for the scenario.
	OutcomeEmpty Outcome = "empty"
	// OutcomeInfeasible means records exist but none reaches the success threshold.
	OutcomeInfeasible Outcome = "infeasible"
)

// validOutcomes maps accepted outcome strings.
var validOutcomes = map[Outcome]bool{
	OutcomeRecommended: true,
	OutcomeEmpty:       true,
	OutcomeInfeasible:  true,
}

// IsValidOutcome returns true if the given string is a recognized outcome.
func IsValidOutcome(outcome string) bool {
	return validOutcomes[Outcome(outcome)]
}

// ScenarioDecision captures the evaluation of a single grid scenario.
type ScenarioDecision struct {
	Nodes           int
	FDKGPercentage  float64
	TallierRetPct   float64
	Outcome         Outcome
	SubsetSize      int     // records matching the scenario
	QualifyingCount int     // distinct (k,t) pairs meeting the threshold; 0 unless recommended
	Guardians       int     // chosen k; 0 unless recommended
	Threshold       int     // chosen t; 0 unless recommended
	SuccessRate     float64 // chosen configuration's success rate; 0 unless recommended
}
