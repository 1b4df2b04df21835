package trace

// DecisionTrace collects scenario decisions for one dataset and one threshold.
type DecisionTrace struct {
	Dataset   string
	Tau       float64
	Decisions []ScenarioDecision
}

// NewDecisionTrace creates a DecisionTrace ready for recording.
func NewDecisionTrace(dataset string, tau float64) *DecisionTrace {
	return &DecisionTrace{
		Dataset:   dataset,
		Tau:       tau,
		Decisions: make([]ScenarioDecision, 0),
	}
}

// Record appends a scenario decision. Order is iteration order.
func (dt *DecisionTrace) Record(d ScenarioDecision) {
	dt.Decisions = append(dt.Decisions, d)
}

// Filter returns the decisions with the given outcome, in recorded order.
func (dt *DecisionTrace) Filter(outcome Outcome) []ScenarioDecision {
	var out []ScenarioDecision
	for _, d := range dt.Decisions {
		if d.Outcome == outcome {
			out = append(out, d)
		}
	}
	return out
}
