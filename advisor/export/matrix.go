package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// matrixLayout describes how one matrix type is laid out as a grid: leading
// row-key columns, then one column per column key.
type matrixLayout[R, C comparable, V any] struct {
	rowHeader []string
	rowCells  func(R) []string
	colLabel  func(C) string
	cell      func(V) string
}

// writeMatrix emits one line per row key in matrix order; absent cells are empty.
func writeMatrix[R, C comparable, V any](w io.Writer, m *advisor.PivotMatrix[R, C, V], l matrixLayout[R, C, V]) error {
	writer := csv.NewWriter(w)
	header := append([]string{}, l.rowHeader...)
	for _, c := range m.ColKeys {
		header = append(header, l.colLabel(c))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing matrix header: %w", err)
	}
	for _, r := range m.RowKeys {
		line := l.rowCells(r)
		for _, c := range m.ColKeys {
			v, ok := m.At(r, c)
			if !ok {
				line = append(line, "")
				continue
			}
			line = append(line, l.cell(v))
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("writing matrix row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

var retentionRowHeader = []string{ColNodes, ColRetention}

func retentionRowCells(k advisor.RetentionRowKey) []string {
	return []string{strconv.Itoa(k.Nodes), FormatPercent(k.TallierRetPct)}
}

// WriteMinGuardianMatrix writes nodes rows by fdkg-participation columns.
func WriteMinGuardianMatrix(w io.Writer, m *advisor.MinGuardianMatrix) error {
	return writeMatrix(w, m, matrixLayout[int, float64, int]{
		rowHeader: []string{ColNodes},
		rowCells:  func(n int) []string { return []string{strconv.Itoa(n)} },
		colLabel:  FormatPercent,
		cell:      strconv.Itoa,
	})
}

// WriteConfigCountMatrix writes (nodes, retention) rows by fdkg columns.
func WriteConfigCountMatrix(w io.Writer, m *advisor.ConfigCountMatrix) error {
	return writeMatrix(w, m, matrixLayout[advisor.RetentionRowKey, float64, int]{
		rowHeader: retentionRowHeader,
		rowCells:  retentionRowCells,
		colLabel:  FormatPercent,
		cell:      strconv.Itoa,
	})
}

// WriteConfigOverlayMatrix writes the "(k,t)" labels aligned with the count matrix.
func WriteConfigOverlayMatrix(w io.Writer, m *advisor.ConfigOverlayMatrix) error {
	return writeMatrix(w, m, matrixLayout[advisor.RetentionRowKey, float64, string]{
		rowHeader: retentionRowHeader,
		rowCells:  retentionRowCells,
		colLabel:  FormatPercent,
		cell:      func(s string) string { return s },
	})
}

// WriteSuccessRateMatrix writes threshold rows by guardian columns, as percentages.
func WriteSuccessRateMatrix(w io.Writer, m *advisor.SuccessRateMatrix) error {
	return writeMatrix(w, m, matrixLayout[int, int, float64]{
		rowHeader: []string{ColThreshold + `\` + ColGuardians},
		rowCells:  func(t int) []string { return []string{strconv.Itoa(t)} },
		colLabel:  strconv.Itoa,
		cell:      FormatPercent,
	})
}

// WriteTopologyComparison writes retention rows by dataset columns, as percentages.
func WriteTopologyComparison(w io.Writer, m *advisor.TopologyComparison) error {
	return writeMatrix(w, m, matrixLayout[float64, string, float64]{
		rowHeader: []string{ColRetention},
		rowCells:  func(r float64) []string { return []string{FormatPercent(r)} },
		colLabel:  func(name string) string { return name },
		cell:      FormatPercent,
	})
}
