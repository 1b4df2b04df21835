package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// Frontier column headers.
const (
	ColMinRetention  = "Minimal Tallier Retention (%)"
	ColThresholdRate = "Threshold Ratio (t/k)"
	ColGuardianShare = "Guardian Share (k/N)"
)

// FrontierColumns is the header of the minimal-retention frontier table.
var FrontierColumns = []string{ColGuardians, ColThreshold, ColMinRetention, ColThresholdRate, ColGuardianShare}

func formatRatio(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e9)/1e9, 'f', -1, 64)
}

// WriteRetentionFrontier writes one line per (k,t) point in the given order.
func WriteRetentionFrontier(w io.Writer, points []advisor.RetentionPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(FrontierColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, p := range points {
		record := []string{
			strconv.Itoa(p.Guardians),
			strconv.Itoa(p.Threshold),
			FormatPercent(p.MinRetention),
			formatRatio(p.ThresholdRatio),
			formatRatio(p.GuardianShare),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
