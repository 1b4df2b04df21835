package api

import (
	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/pipeline"
	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

// ResponseError is the body of every failed request.
type ResponseError struct {
	Message string `json:"message"`
}

type datasetView struct {
	Name    string         `json:"name"`
	Source  string         `json:"source"`
	Records int            `json:"records"`
	Summary *trace.Summary `json:"summary"`
}

func newDatasetView(dr *pipeline.DatasetResult) datasetView {
	return datasetView{
		Name:    dr.Name(),
		Source:  dr.Source,
		Records: dr.Dataset.Len(),
		Summary: dr.Summary(),
	}
}

type scenarioView struct {
	Nodes          int     `json:"nodes"`
	FDKGPercentage float64 `json:"fdkg_percentage"`
	TallierRetPct  float64 `json:"tallier_retention"`
}

type configurationView struct {
	Guardians       int     `json:"guardians"`
	Threshold       int     `json:"threshold"`
	SuccessRate     float64 `json:"success_rate"`
	QualifyingCount int     `json:"qualifying_count"`
}

type recommendationView struct {
	scenarioView
	configurationView
}

func newScenarioView(k advisor.ScenarioKey) scenarioView {
	return scenarioView{Nodes: k.Nodes, FDKGPercentage: k.FDKGPercentage, TallierRetPct: k.TallierRetPct}
}

func newConfigurationView(o advisor.OptimalConfiguration) configurationView {
	return configurationView{
		Guardians:       o.Guardians,
		Threshold:       o.Threshold,
		SuccessRate:     o.SuccessRate,
		QualifyingCount: o.QualifyingCount,
	}
}

func newRecommendationViews(rows []advisor.RecommendationRow) []recommendationView {
	out := make([]recommendationView, 0, len(rows))
	for _, r := range rows {
		out = append(out, recommendationView{newScenarioView(r.ScenarioKey), newConfigurationView(r.OptimalConfiguration)})
	}
	return out
}

// lookupView answers a single-scenario query. Configuration is nil when no
// record of the scenario reaches the threshold.
type lookupView struct {
	Scenario      scenarioView       `json:"scenario"`
	Tau           float64            `json:"tau"`
	SubsetSize    int                `json:"subset_size"`
	Feasible      bool               `json:"feasible"`
	Configuration *configurationView `json:"configuration"`
}

// decisionView is one batch decision. The configuration fields are zero unless
// the outcome is "recommended".
type decisionView struct {
	scenarioView
	Outcome    string `json:"outcome"`
	SubsetSize int    `json:"subset_size"`
	configurationView
}

func newDecisionViews(decisions []trace.ScenarioDecision) []decisionView {
	out := make([]decisionView, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, decisionView{
			scenarioView: scenarioView{Nodes: d.Nodes, FDKGPercentage: d.FDKGPercentage, TallierRetPct: d.TallierRetPct},
			Outcome:      string(d.Outcome),
			SubsetSize:   d.SubsetSize,
			configurationView: configurationView{
				Guardians:       d.Guardians,
				Threshold:       d.Threshold,
				SuccessRate:     d.SuccessRate,
				QualifyingCount: d.QualifyingCount,
			},
		})
	}
	return out
}

// matrixView is the JSON form of a pivot matrix; absent cells are null.
type matrixView[R, C, V any] struct {
	Rows  []R    `json:"rows"`
	Cols  []C    `json:"cols"`
	Cells [][]*V `json:"cells"`
}

func newMatrixView[R, C comparable, V, RV any](m *advisor.PivotMatrix[R, C, V], rowView func(R) RV) matrixView[RV, C, V] {
	view := matrixView[RV, C, V]{
		Rows:  make([]RV, 0, len(m.RowKeys)),
		Cols:  append([]C{}, m.ColKeys...),
		Cells: make([][]*V, 0, len(m.RowKeys)),
	}
	for _, r := range m.RowKeys {
		view.Rows = append(view.Rows, rowView(r))
		line := make([]*V, 0, len(m.ColKeys))
		for _, c := range m.ColKeys {
			if v, ok := m.At(r, c); ok {
				line = append(line, &v)
				continue
			}
			line = append(line, nil)
		}
		view.Cells = append(view.Cells, line)
	}
	return view
}

type retentionRowView struct {
	Nodes         int     `json:"nodes"`
	TallierRetPct float64 `json:"tallier_retention"`
}

func newRetentionRowView(k advisor.RetentionRowKey) retentionRowView {
	return retentionRowView{Nodes: k.Nodes, TallierRetPct: k.TallierRetPct}
}

func identity[T any](v T) T { return v }
