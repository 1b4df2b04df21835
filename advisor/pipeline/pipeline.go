// Package pipeline composes a complete recommendation run over one or more
// datasets: the batch per dataset, the derived pivots and the staged artifacts.
// The result is immutable once computed and is shared by the CLI and the lookup
// API.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/export"
	"github.com/fdkg-lab/fdkg-advisor/advisor/metrics"
	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

// Params are the run-wide decision parameters.
type Params struct {
	Tau          float64
	Grid         *advisor.Grid // nil derives each dataset's grid from its own records
	MinGuardians advisor.MinGuardianQuery
}

// Input is one loaded dataset and where it came from.
type Input struct {
	Dataset *advisor.Dataset
	Source  string
}

// DatasetResult is everything computed for one dataset.
type DatasetResult struct {
	Dataset       *advisor.Dataset
	Source        string
	Grid          advisor.Grid
	Index         *advisor.ScenarioIndex
	Batch         *advisor.BatchResult
	MinGuardians  *advisor.MinGuardianMatrix
	ConfigCounts  *advisor.ConfigCountMatrix
	ConfigOverlay *advisor.ConfigOverlayMatrix
	Elapsed       time.Duration
}

// Name returns the dataset name.
func (d *DatasetResult) Name() string { return d.Dataset.Name }

// Summary returns the decision-trace summary of the batch.
func (d *DatasetResult) Summary() *trace.Summary { return trace.Summarize(d.Batch.Trace) }

// Result is a computed run.
type Result struct {
	Params   Params
	Datasets []*DatasetResult
	byName   map[string]*DatasetResult
}

// Compute runs the batch and builds the pivots for every input, in input order.
// Any failure aborts the run; nothing is written.
func Compute(inputs []Input, p Params) (*Result, error) {
	if err := advisor.ValidateTau(p.Tau); err != nil {
		return nil, err
	}
	if p.Grid != nil {
		if err := p.Grid.Validate(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Params:   p,
		Datasets: make([]*DatasetResult, 0, len(inputs)),
		byName:   make(map[string]*DatasetResult, len(inputs)),
	}
	for _, in := range inputs {
		name := in.Dataset.Name
		if _, dup := res.byName[name]; dup {
			return nil, fmt.Errorf("dataset %q listed twice", name)
		}
		dr, err := computeDataset(in, p)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		res.Datasets = append(res.Datasets, dr)
		res.byName[name] = dr
	}
	return res, nil
}

func computeDataset(in Input, p Params) (*DatasetResult, error) {
	start := time.Now()
	grid := advisor.GridFromDataset(in.Dataset)
	if p.Grid != nil {
		grid = *p.Grid
	}

	batch, err := advisor.RecommendBatch(in.Dataset, grid, p.Tau)
	if err != nil {
		return nil, err
	}
	q := p.MinGuardians
	q.Tau = p.Tau
	minGuardians, err := advisor.BuildMinGuardianMatrix(in.Dataset.Records(), q)
	if err != nil {
		return nil, err
	}
	counts, overlay, err := advisor.BuildConfigCountMatrices(batch.Rows)
	if err != nil {
		return nil, err
	}

	dr := &DatasetResult{
		Dataset:       in.Dataset,
		Source:        in.Source,
		Grid:          grid,
		Index:         advisor.IndexDataset(in.Dataset),
		Batch:         batch,
		MinGuardians:  minGuardians,
		ConfigCounts:  counts,
		ConfigOverlay: overlay,
		Elapsed:       time.Since(start),
	}
	logrus.Infof("[%s] %d of %d scenarios recommended at tau=%.4g",
		in.Dataset.Name, len(batch.Rows), grid.Size(), p.Tau)
	return dr, nil
}

// Dataset returns the result for name.
func (r *Result) Dataset(name string) (*DatasetResult, bool) {
	dr, ok := r.byName[name]
	return dr, ok
}

// Observe feeds every dataset's batch into rec.
func (r *Result) Observe(rec *metrics.Recorder) {
	for _, dr := range r.Datasets {
		rec.ObserveBatch(dr.Batch, dr.Dataset.Len(), dr.Elapsed)
	}
}

// Stage renders every artifact of the run plus the manifest. When rec is non-nil
// its current values are staged as metrics.prom.
func (r *Result) Stage(now time.Time, rec *metrics.Recorder) (*export.Stage, *export.Manifest, error) {
	stage := export.NewStage()
	manifest := export.NewManifest(r.Params.Tau, r.Params.Grid, now)

	for _, dr := range r.Datasets {
		names := export.ArtifactNames(dr.Name())
		artifacts := []struct {
			name   string
			render func(io.Writer) error
		}{
			{names.Recommendations, func(w io.Writer) error { return export.WriteRecommendations(w, dr.Batch.Rows) }},
			{names.MinGuardians, func(w io.Writer) error { return export.WriteMinGuardianMatrix(w, dr.MinGuardians) }},
			{names.ConfigCounts, func(w io.Writer) error { return export.WriteConfigCountMatrix(w, dr.ConfigCounts) }},
			{names.ConfigOverlay, func(w io.Writer) error { return export.WriteConfigOverlayMatrix(w, dr.ConfigOverlay) }},
		}
		for _, a := range artifacts {
			if err := stage.Add(a.name, a.render); err != nil {
				return nil, nil, err
			}
		}
		manifest.Datasets = append(manifest.Datasets, export.DatasetManifest{
			Name:      dr.Name(),
			Source:    dr.Source,
			Records:   dr.Dataset.Len(),
			Summary:   dr.Summary(),
			Artifacts: names.List(),
		})
	}

	if rec != nil {
		if err := stage.Add(metrics.TextfileName, rec.Render); err != nil {
			return nil, nil, err
		}
	}
	if err := stage.Add(export.ManifestFile, manifest.WriteYAML); err != nil {
		return nil, nil, err
	}
	return stage, manifest, nil
}
