package trace

// Summary aggregates statistics from a DecisionTrace.
type Summary struct {
	Dataset              string      `yaml:"dataset" json:"dataset"`
	Tau                  float64     `yaml:"tau" json:"tau"`
	TotalScenarios       int         `yaml:"total_scenarios" json:"total_scenarios"`
	Recommended          int         `yaml:"recommended" json:"recommended"`
	Empty                int         `yaml:"empty" json:"empty"`
	Infeasible           int         `yaml:"infeasible" json:"infeasible"`
	MeanQualifying       float64     `yaml:"mean_qualifying" json:"mean_qualifying"`
	MaxQualifying        int         `yaml:"max_qualifying" json:"max_qualifying"`
	GuardianDistribution map[int]int `yaml:"guardian_distribution" json:"guardian_distribution"` // chosen k → scenarios
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *Summary {
	summary := &Summary{
		GuardianDistribution: make(map[int]int),
	}
	if dt == nil {
		return summary
	}
	summary.Dataset = dt.Dataset
	summary.Tau = dt.Tau
	summary.TotalScenarios = len(dt.Decisions)

	totalQualifying := 0
	for _, d := range dt.Decisions {
		switch d.Outcome {
		case OutcomeRecommended:
			summary.Recommended++
			summary.GuardianDistribution[d.Guardians]++
			totalQualifying += d.QualifyingCount
			if d.QualifyingCount > summary.MaxQualifying {
				summary.MaxQualifying = d.QualifyingCount
			}
		case OutcomeEmpty:
			summary.Empty++
		case OutcomeInfeasible:
			summary.Infeasible++
		}
	}
	if summary.Recommended > 0 {
		summary.MeanQualifying = float64(totalQualifying) / float64(summary.Recommended)
	}
	return summary
}
