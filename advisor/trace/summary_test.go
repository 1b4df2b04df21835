package trace

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalScenarios != 0 || summary.Recommended != 0 {
		t.Error("expected zero counts")
	}
	if summary.GuardianDistribution == nil {
		t.Error("expected non-nil guardian distribution")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	dt := NewDecisionTrace("DKG", 0.99)

	// WHEN summarized
	summary := Summarize(dt)

	// THEN all counts are zero and metadata carries over
	if summary.TotalScenarios != 0 {
		t.Errorf("expected 0 scenarios, got %d", summary.TotalScenarios)
	}
	if summary.MeanQualifying != 0 || summary.MaxQualifying != 0 {
		t.Error("expected 0 qualifying statistics")
	}
	if summary.Dataset != "DKG" || summary.Tau != 0.99 {
		t.Errorf("unexpected metadata %q %v", summary.Dataset, summary.Tau)
	}
}

func TestSummarize_MixedOutcomes_CorrectCounts(t *testing.T) {
	// GIVEN a trace with every outcome
	dt := NewDecisionTrace("BarabasiAlbert", 0.9)
	dt.Record(ScenarioDecision{Outcome: OutcomeRecommended, Guardians: 3, QualifyingCount: 4})
	dt.Record(ScenarioDecision{Outcome: OutcomeRecommended, Guardians: 3, QualifyingCount: 2})
	dt.Record(ScenarioDecision{Outcome: OutcomeRecommended, Guardians: 40, QualifyingCount: 6})
	dt.Record(ScenarioDecision{Outcome: OutcomeEmpty})
	dt.Record(ScenarioDecision{Outcome: OutcomeInfeasible, SubsetSize: 12})

	// WHEN summarized
	summary := Summarize(dt)

	// THEN counts and qualifying statistics match
	if summary.TotalScenarios != 5 {
		t.Errorf("expected 5 scenarios, got %d", summary.TotalScenarios)
	}
	if summary.Recommended != 3 || summary.Empty != 1 || summary.Infeasible != 1 {
		t.Errorf("unexpected outcome counts %+v", summary)
	}
	if summary.MeanQualifying < 3.999 || summary.MeanQualifying > 4.001 {
		t.Errorf("expected mean qualifying ~4, got %.4f", summary.MeanQualifying)
	}
	if summary.MaxQualifying != 6 {
		t.Errorf("expected max qualifying 6, got %d", summary.MaxQualifying)
	}
	if summary.GuardianDistribution[3] != 2 || summary.GuardianDistribution[40] != 1 {
		t.Errorf("unexpected guardian distribution %v", summary.GuardianDistribution)
	}
}

func TestSummary_JSON_UsesSnakeCaseKeys(t *testing.T) {
	dt := NewDecisionTrace("ba", 0.9)
	dt.Record(ScenarioDecision{Outcome: OutcomeRecommended, Guardians: 3, QualifyingCount: 4})

	data, err := json.Marshal(Summarize(dt))
	if err != nil {
		t.Fatal(err)
	}

	body := string(data)
	for _, want := range []string{`"dataset":"ba"`, `"recommended":1`, `"max_qualifying":4`, `"guardian_distribution":{"3":1}`} {
		if !strings.Contains(body, want) {
			t.Errorf("summary JSON %s missing %s", body, want)
		}
	}
	if strings.Contains(body, `"Recommended"`) {
		t.Errorf("summary JSON uses Go field names: %s", body)
	}
}
