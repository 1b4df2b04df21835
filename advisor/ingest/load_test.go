package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/internal/testutil"
)

func TestLoadRecords_SimulatorFixture(t *testing.T) {
	// GIVEN the simulator-format fixture (with the ignorable tallierNewPct column)
	path := testutil.FixturePath(t, "sweep_small.csv")

	// WHEN loaded with defaults
	ds, err := LoadRecords(path, Options{})
	require.NoError(t, err)

	// THEN every row is read as fractions and the name comes from the file
	assert.Equal(t, "sweep_small", ds.Name)
	require.Equal(t, 14, ds.Len())
	assert.Equal(t, testutil.Rec(10, 3, 1, 0.5, 0.9, 0.99), ds.Records()[0])
	assert.Equal(t, testutil.Rec(100, 40, 20, 1, 0.5, 0.7), ds.Records()[13])
}

func TestLoadRecords_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := LoadRecords(path, Options{})

	require.ErrorIs(t, err, advisor.ErrMissingInput)
	assert.Contains(t, err.Error(), path)
}

func TestLoadRecords_DisplaySchema_AutoScaled(t *testing.T) {
	// GIVEN a recommendation table with percentage headers and percent values
	path := testutil.FixturePath(t, "recommendations_display.csv")

	ds, err := LoadRecords(path, Options{Name: "display"})
	require.NoError(t, err)

	// THEN values are normalized to fractions at the boundary
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, testutil.Rec(10, 3, 2, 0.2, 0.9, 0.95), ds.Records()[0])
	assert.Equal(t, testutil.Rec(10, 2, 1, 0.4, 0.9, 0.995), ds.Records()[1])
	assert.Equal(t, testutil.Rec(100, 40, 30, 0.2, 0.5, 0.91), ds.Records()[2])
}

func TestReadRecords_DisplaySchema_FractionValuesUnderPercentHeaders(t *testing.T) {
	// GIVEN the older tables that wrote fractions under "(%)" headers
	input := "Number of Nodes (N),FDKG Participation (%),Tallier Retention (%),Threshold (t),Number of Guardians (k),Success Rate (%)\n" +
		"10,0.2,0.9,2,3,0.95\n"

	ds, err := ReadRecords(strings.NewReader(input), Options{Name: "legacy"})
	require.NoError(t, err)

	assert.Equal(t, testutil.Rec(10, 3, 2, 0.2, 0.9, 0.95), ds.Records()[0])
}

func TestReadRecords_AutoScaleWarnsWhenPercentColumnKeptAsFractions(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(hook.Reset)

	// GIVEN percent headers where only the success column holds percentages
	input := "Number of Nodes (N),FDKG Participation (%),Tallier Retention (%),Threshold (t),Number of Guardians (k),Success Rate (%)\n" +
		"10,0.2,0.9,2,3,95\n"

	// WHEN read in auto mode
	_, err := ReadRecords(strings.NewReader(input), Options{Name: "mixed"})
	require.NoError(t, err)

	// THEN each column kept as fractions is reported, the divided one is not
	var warned []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = append(warned, e.Message)
		}
	}
	require.Len(t, warned, 2)
	assert.Contains(t, warned[0], "fdkgPercentage")
	assert.Contains(t, warned[1], "tallierRetPct")
	for _, msg := range warned {
		assert.NotContains(t, msg, "successRate")
	}
}

func TestReadRecords_ScaleModes(t *testing.T) {
	input := "Number of Nodes (N),FDKG Participation (%),Tallier Retention (%),Threshold (t),Number of Guardians (k),Success Rate (%)\n" +
		"10,1,1,2,3,1\n"

	t.Run("percent", func(t *testing.T) {
		ds, err := ReadRecords(strings.NewReader(input), Options{Scale: ScalePercent})
		require.NoError(t, err)
		assert.Equal(t, testutil.Rec(10, 3, 2, 0.01, 0.01, 0.01), ds.Records()[0])
	})
	t.Run("fraction", func(t *testing.T) {
		ds, err := ReadRecords(strings.NewReader(input), Options{Scale: ScaleFraction})
		require.NoError(t, err)
		assert.Equal(t, testutil.Rec(10, 3, 2, 1, 1, 1), ds.Records()[0])
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := ReadRecords(strings.NewReader(input), Options{Scale: "ratio"})
		assert.Error(t, err)
	})
}

func TestReadRecords_CanonicalHeadersNeverScaled(t *testing.T) {
	input := "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,3,2,50,0.9,0.95\n"

	_, err := ReadRecords(strings.NewReader(input), Options{Scale: ScaleAuto})

	assert.ErrorIs(t, err, advisor.ErrInvalidRecord)
}

func TestReadRecords_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing column", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct\n10,3,2,0.5,0.9\n"},
		{"unknown column", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate,latency\n10,3,2,0.5,0.9,0.95,3\n"},
		{"synonym twice", "nodes,Number of Nodes (N),guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,10,3,2,0.5,0.9,0.95\n"},
		{"non-numeric cell", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,three,2,0.5,0.9,0.95\n"},
		{"fractional guardians", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,3.5,2,0.5,0.9,0.95\n"},
		{"nodes beyond int range", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n1e300,3,2,0.5,0.9,0.95\n"},
		{"negative threshold beyond int range", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,3,-1e19,0.5,0.9,0.95\n"},
		{"short row", "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10,3,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tt.input), Options{})
			assert.ErrorIs(t, err, advisor.ErrSchemaMismatch)
		})
	}
}

func TestReadRecords_IntegralFloatCellsAccepted(t *testing.T) {
	input := "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n10.0,3.0,2,0.5,0.9,0.95\n"
	ds, err := ReadRecords(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Records()[0].Guardians)
}

func TestReadRecords_HeaderOnly_EmptyDataset(t *testing.T) {
	ds, err := ReadRecords(strings.NewReader("nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n"), Options{})
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
}

func TestReadRecords_DuplicatePolicies(t *testing.T) {
	input := "nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n" +
		"10,3,2,0.5,0.9,0.90\n" +
		"10,4,2,0.5,0.9,0.99\n" +
		"10,3,2,0.5,0.9,0.96\n"

	tests := []struct {
		policy  DuplicatePolicy
		want    float64
		wantErr bool
	}{
		{DuplicateReject, 0, true},
		{"", 0, true},
		{DuplicateFirst, 0.90, false},
		{DuplicateMax, 0.96, false},
		{DuplicateMean, 0.93, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			ds, err := ReadRecords(strings.NewReader(input), Options{Duplicates: tt.policy})
			if tt.wantErr {
				assert.ErrorIs(t, err, advisor.ErrDuplicateConfiguration)
				return
			}
			require.NoError(t, err)
			require.Equal(t, 2, ds.Len())
			recs := ds.Records()
			assert.Equal(t, 3, recs[0].Guardians, "merged record keeps first position")
			testutil.AssertFloat64Equal(t, "merged success", tt.want, recs[0].SuccessRate, 1e-12)
		})
	}
}

func TestLoadRecords_RoundTripsThroughTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DKG.csv")
	require.NoError(t, os.WriteFile(path, []byte("nodes,guardians,threshold,fdkgPercentage,tallierRetPct,successRate\n5,4,1,0.1,1,1\n"), 0644))

	ds, err := LoadRecords(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "DKG", ds.Name)
	assert.Equal(t, testutil.Rec(5, 4, 1, 0.1, 1, 1), ds.Records()[0])
}

func TestIsValidPolicyNames(t *testing.T) {
	assert.True(t, IsValidScaleMode("auto"))
	assert.True(t, IsValidScaleMode(""))
	assert.False(t, IsValidScaleMode("AUTO"))
	assert.True(t, IsValidDuplicatePolicy("mean"))
	assert.False(t, IsValidDuplicatePolicy("median"))
}
