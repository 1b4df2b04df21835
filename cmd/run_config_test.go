package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/ingest"
)

const sweepFixture = "../testdata/sweep.yaml"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSweepConfig_Fixture(t *testing.T) {
	// GIVEN the fixture sweep file
	// WHEN it is loaded
	cfg, err := LoadSweepConfig(sweepFixture)

	// THEN every section is decoded and dataset paths are relative to the file
	require.NoError(t, err)
	require.Len(t, cfg.Datasets, 1)
	assert.Equal(t, "BarabasiAlbert", cfg.Datasets[0].Name)
	assert.Equal(t, filepath.Join("..", "testdata", "sweep_small.csv"), cfg.Datasets[0].Path)
	require.NotNil(t, cfg.Grid)
	assert.Equal(t, []int{10, 100}, cfg.Grid.Nodes)
	assert.Equal(t, 90.0, cfg.SuccessThreshold)
	assert.Equal(t, 0.9, cfg.MinGuardians.Retention)
	assert.Equal(t, "reject", cfg.Duplicates)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoadSweepConfig_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":        "datasets: [{path: a.csv}]\nsucces_threshold: 90\n",
		"no datasets":          "success_threshold: 90\n",
		"dataset without path": "datasets: [{name: a}]\n",
		"bad policy":           "datasets: [{path: a.csv}]\nduplicates: latest\n",
		"bad scale":            "datasets: [{path: a.csv}]\nscale: permille\n",
		"threshold too high":   "datasets: [{path: a.csv}]\nsuccess_threshold: 150\n",
		"grid fraction":        "datasets: [{path: a.csv}]\ngrid: {nodes: [10], fdkg_percentages: [50], retentions: [0.9]}\n",
		"empty grid axis":      "datasets: [{path: a.csv}]\ngrid: {nodes: [10], fdkg_percentages: [], retentions: [0.9]}\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSweepConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadSweepConfig_MissingFile(t *testing.T) {
	_, err := LoadSweepConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizeTau(t *testing.T) {
	tests := map[float64]float64{90: 0.9, 99.5: 0.995, 100: 1, 1: 1, 0.9: 0.9, 0: 0}
	for in, want := range tests {
		assert.InDelta(t, want, NormalizeTau(in), 1e-12, "NormalizeTau(%v)", in)
	}
}

func TestParseDataArg(t *testing.T) {
	assert.Equal(t, DatasetConfig{Name: "ba", Path: "x/ba.csv"}, parseDataArg("ba=x/ba.csv"))
	assert.Equal(t, DatasetConfig{Path: "x/ba.csv"}, parseDataArg("x/ba.csv"))
	assert.Equal(t, DatasetConfig{Path: "dir/a=b.csv"}, parseDataArg("dir/a=b.csv"))
}

func resolveArgs(t *testing.T, args ...string) (*runPlan, error) {
	t.Helper()
	var f sweepFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f.resolve(fs)
}

func TestSweepFlags_Resolve_FlagsOnly(t *testing.T) {
	plan, err := resolveArgs(t, "--data", "ba=a.csv", "--data", "b.csv",
		"--nodes", "10,100", "--fdkg", "0.5", "--retention", "0.5,0.9", "--success-threshold", "99")

	require.NoError(t, err)
	assert.Equal(t, []DatasetConfig{{Name: "ba", Path: "a.csv"}, {Path: "b.csv"}}, plan.Datasets)
	assert.Equal(t, 0.99, plan.Params.Tau)
	require.NotNil(t, plan.Params.Grid)
	assert.Equal(t, []float64{0.5, 0.9}, plan.Params.Grid.Retentions)
	assert.Equal(t, ingest.DuplicateReject, plan.Policy)
	assert.Equal(t, ingest.ScaleAuto, plan.Scale)
	assert.Equal(t, 0.9, plan.Params.MinGuardians.Retention)
}

func TestSweepFlags_Resolve_DerivedGridByDefault(t *testing.T) {
	plan, err := resolveArgs(t, "--data", "a.csv")

	require.NoError(t, err)
	assert.Nil(t, plan.Params.Grid)
	assert.Equal(t, 0.9, plan.Params.Tau)
}

func TestSweepFlags_Resolve_ConfigThenOverrides(t *testing.T) {
	// GIVEN the fixture config and an explicit threshold flag
	plan, err := resolveArgs(t, "--config", sweepFixture, "--success-threshold", "0.95", "--duplicates", "max")

	// THEN the flags win and the rest comes from the file
	require.NoError(t, err)
	assert.Equal(t, 0.95, plan.Params.Tau)
	assert.Equal(t, ingest.DuplicateMax, plan.Policy)
	assert.Equal(t, "BarabasiAlbert", plan.Datasets[0].Name)
	assert.Equal(t, []float64{0.5, 1.0}, plan.Params.Grid.FDKGPercentages)
	assert.Equal(t, "out", plan.OutputDir)
}

func TestSweepFlags_Resolve_Errors(t *testing.T) {
	t.Run("no dataset", func(t *testing.T) {
		_, err := resolveArgs(t)
		assert.ErrorIs(t, err, advisor.ErrMissingInput)
	})
	t.Run("partial grid", func(t *testing.T) {
		_, err := resolveArgs(t, "--data", "a.csv", "--nodes", "10")
		assert.ErrorIs(t, err, advisor.ErrInvalidGrid)
	})
	t.Run("bad policy", func(t *testing.T) {
		_, err := resolveArgs(t, "--data", "a.csv", "--duplicates", "latest")
		assert.Error(t, err)
	})
	t.Run("bad threshold", func(t *testing.T) {
		_, err := resolveArgs(t, "--data", "a.csv", "--success-threshold", "0")
		assert.ErrorIs(t, err, advisor.ErrInvalidThreshold)
	})
}
