package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/ingest"
)

func TestRunRecommend_WritesAllArtifacts(t *testing.T) {
	// GIVEN the fixture config pointed at a fresh output directory
	plan, err := resolveArgs(t, "--config", sweepFixture)
	require.NoError(t, err)
	plan.OutputDir = filepath.Join(t.TempDir(), "out")

	// WHEN the run executes with metrics
	manifest, err := runRecommend(plan, true, time.Now())

	// THEN every artifact exists and the manifest reflects the batch
	require.NoError(t, err)
	for _, name := range []string{
		"recommendations_BarabasiAlbert.csv",
		"min_guardians_BarabasiAlbert.csv",
		"config_counts_BarabasiAlbert.csv",
		"config_overlay_BarabasiAlbert.csv",
		"metrics.prom",
		"manifest.yaml",
	} {
		_, err := os.Stat(filepath.Join(plan.OutputDir, name))
		assert.NoError(t, err, name)
	}
	require.Len(t, manifest.Datasets, 1)
	assert.Equal(t, 4, manifest.Datasets[0].Summary.Recommended)
	assert.Equal(t, 0.9, manifest.SuccessThreshold)

	got, err := os.ReadFile(filepath.Join(plan.OutputDir, "min_guardians_BarabasiAlbert.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Number of Nodes (N),50,100\n10,3,2\n100,40,\n", string(got))

	var out bytes.Buffer
	printRunSummary(&out, manifest, plan.OutputDir)
	assert.Contains(t, out.String(), "Success threshold: 90%")
	assert.Contains(t, out.String(), "BarabasiAlbert")
}

func TestRunRecommend_FailureWritesNothing(t *testing.T) {
	// GIVEN a plan whose second dataset is missing
	dir := filepath.Join(t.TempDir(), "out")
	plan, err := resolveArgs(t, "--data", "../testdata/sweep_small.csv", "--data", "../testdata/absent.csv")
	require.NoError(t, err)
	plan.OutputDir = dir

	// WHEN the run executes
	_, err = runRecommend(plan, false, time.Now())

	// THEN it fails and the output directory was never created
	assert.ErrorIs(t, err, advisor.ErrMissingInput)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func loadFixture(t *testing.T) *advisor.Dataset {
	t.Helper()
	ds, err := ingest.LoadRecords("../testdata/sweep_small.csv", ingest.Options{})
	require.NoError(t, err)
	return ds
}

func TestRunInspect_Recommended(t *testing.T) {
	var out bytes.Buffer
	key := advisor.ScenarioKey{Nodes: 10, FDKGPercentage: 0.5, TallierRetPct: 0.9}

	require.NoError(t, runInspect(&out, loadFixture(t), key, 0.9))

	s := out.String()
	assert.Contains(t, s, "Records:  5\n")
	assert.Contains(t, s, "Recommended: k=3 t=2 success=95% (4 qualifying configurations)")
	assert.Contains(t, s, "Threshold (t)\\Number of Guardians (k),3,4\n1,99,\n2,95,99.9\n3,80,97\n")
	assert.Contains(t, s, "3,1,90,0.333333333,0.3\n")
	assert.Contains(t, s, "4,1,50,0.25,0.4\n")
}

func TestRunInspect_InfeasibleAndEmpty(t *testing.T) {
	ds := loadFixture(t)

	var out bytes.Buffer
	require.NoError(t, runInspect(&out, ds, advisor.ScenarioKey{Nodes: 10, FDKGPercentage: 0.5, TallierRetPct: 0.9}, 0.9999))
	assert.Contains(t, out.String(), "No configuration reaches 99.99%.")

	out.Reset()
	require.NoError(t, runInspect(&out, ds, advisor.ScenarioKey{Nodes: 7, FDKGPercentage: 0.5, TallierRetPct: 0.9}, 0.9))
	assert.Contains(t, out.String(), "No simulation data for this scenario.")
	assert.NotContains(t, out.String(), "Success rate")
}

func TestRunInspect_EmptyScenarioListsNeighbours(t *testing.T) {
	// GIVEN a participation level the sweep never simulated for N=10
	var out bytes.Buffer
	key := advisor.ScenarioKey{Nodes: 10, FDKGPercentage: 0.7, TallierRetPct: 0.9}

	require.NoError(t, runInspect(&out, loadFixture(t), key, 0.9))

	// THEN the simulated N=10 scenarios are listed in file order, none for other N
	s := out.String()
	assert.Contains(t, s, "Scenarios with N=10:\n  N=10 fdkg=0.5 ret=0.9\n  N=10 fdkg=0.5 ret=0.5\n  N=10 fdkg=1 ret=0.9\n")
	assert.NotContains(t, s, "N=100")
}

func TestRunInspect_InvalidThreshold(t *testing.T) {
	var out bytes.Buffer
	err := runInspect(&out, loadFixture(t), advisor.ScenarioKey{Nodes: 10}, 1.5)
	assert.ErrorIs(t, err, advisor.ErrInvalidThreshold)
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FDKG_ADVISOR_TEST_VALUE", "from-env")
	assert.Equal(t, "from-env", envOr("FDKG_ADVISOR_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", envOr("FDKG_ADVISOR_TEST_UNSET", "fallback"))
}

func TestRunCompare_DatasetsSideBySide(t *testing.T) {
	// GIVEN the fixture and a second topology holding the same configuration
	other, err := advisor.NewDataset("DKG", []advisor.SimulationRecord{
		{Nodes: 10, Guardians: 3, Threshold: 2, FDKGPercentage: 0.5, TallierRetPct: 0.9, SuccessRate: 1},
	})
	require.NoError(t, err)
	datasets := []*advisor.Dataset{loadFixture(t), other}

	// WHEN compared at N=10 k=3 t=2 fdkg=0.5
	var out bytes.Buffer
	q := advisor.ComparisonQuery{Nodes: 10, Guardians: 3, Threshold: 2, FDKGPercentage: 0.5}
	require.NoError(t, runCompare(&out, datasets, q))

	// THEN each dataset is one column, in the order given
	assert.Contains(t, out.String(), "Configuration: N=10 k=3 t=2 fdkg=0.5\n")
	assert.Contains(t, out.String(), "Tallier Retention (%),sweep_small,DKG\n")
	assert.Contains(t, out.String(), "90,95,100\n")
}

func TestRunCompare_NoMatchingConfiguration(t *testing.T) {
	var out bytes.Buffer
	q := advisor.ComparisonQuery{Nodes: 7, Guardians: 3, Threshold: 2, FDKGPercentage: 0.5}

	require.NoError(t, runCompare(&out, []*advisor.Dataset{loadFixture(t)}, q))

	assert.Contains(t, out.String(), "No dataset holds this configuration.")
	assert.NotContains(t, out.String(), "Tallier Retention")
}
