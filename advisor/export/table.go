// Package export renders recommendation tables and pivot matrices as CSV and
// persists a run's artifacts all-or-nothing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// Display column headers shared by every artifact.
const (
	ColNodes      = "Number of Nodes (N)"
	ColFDKG       = "FDKG Participation (%)"
	ColRetention  = "Tallier Retention (%)"
	ColThreshold  = "Threshold (t)"
	ColGuardians  = "Number of Guardians (k)"
	ColSuccess    = "Success Rate (%)"
	ColQualifying = "Successful Configurations Count"
)

// RecommendationColumns is the header of the recommendation table.
var RecommendationColumns = []string{
	ColNodes, ColFDKG, ColRetention, ColThreshold, ColGuardians, ColSuccess, ColQualifying,
}

// FormatPercent renders a fraction as a percentage. The value is rounded to nine
// decimals so float noise from the scaling (0.07*100 = 7.000000000000001) does not
// leak into reports.
func FormatPercent(fraction float64) string {
	return strconv.FormatFloat(math.Round(fraction*100*1e9)/1e9, 'f', -1, 64)
}

// WriteRecommendations writes rows as the recommendation table, in row order.
func WriteRecommendations(w io.Writer, rows []advisor.RecommendationRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RecommendationColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range rows {
		record := []string{
			strconv.Itoa(r.Nodes),
			FormatPercent(r.FDKGPercentage),
			FormatPercent(r.TallierRetPct),
			strconv.Itoa(r.Threshold),
			strconv.Itoa(r.Guardians),
			FormatPercent(r.SuccessRate),
			strconv.Itoa(r.QualifyingCount),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
