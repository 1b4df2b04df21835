// Package testutil provides shared test infrastructure for the advisor packages:
// compact record constructors, fixture path resolution and float assertions.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// Rec builds a SimulationRecord from positional values in the simulator's CSV
// column order: nodes, guardians, threshold, fdkg, retention, success.
func Rec(nodes, guardians, threshold int, fdkg, ret, success float64) advisor.SimulationRecord {
	return advisor.SimulationRecord{
		Nodes:          nodes,
		Guardians:      guardians,
		Threshold:      threshold,
		FDKGPercentage: fdkg,
		TallierRetPct:  ret,
		SuccessRate:    success,
	}
}

// MustDataset wraps advisor.NewDataset and fails the test on error.
func MustDataset(t *testing.T, name string, records ...advisor.SimulationRecord) *advisor.Dataset {
	t.Helper()
	ds, err := advisor.NewDataset(name, records)
	if err != nil {
		t.Fatalf("building dataset %q: %v", name, err)
	}
	return ds
}

// FixturePath returns the absolute path of a file in the repo-root testdata/ dir.
// The path is resolved relative to this source file: advisor/internal/testutil/ → testdata/.
func FixturePath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
