// Package ingest reads simulator sweep tables into advisor datasets. It is the
// single place where percentage-scaled values are normalized to fractions.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// LoadRecords reads a sweep CSV from path.
func LoadRecords(path string, opts Options) (*advisor.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", advisor.ErrMissingInput, path, err)
	}
	defer func() { _ = file.Close() }()

	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	ds, err := ReadRecords(file, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	logrus.Infof("Loaded %d records from %s as dataset %q", ds.Len(), path, ds.Name)
	return ds, nil
}

// ReadRecords parses a sweep CSV stream. The header may use the canonical
// simulator names or the display names of recommendation tables.
func ReadRecords(r io.Reader, opts Options) (*advisor.Dataset, error) {
	opts = opts.withDefaults()
	if !validScaleModes[opts.Scale] {
		return nil, fmt.Errorf("unknown scale mode %q; valid: auto, percent, fraction", opts.Scale)
	}
	if !validDuplicatePolicies[opts.Duplicates] {
		return nil, fmt.Errorf("unknown duplicate policy %q; valid: reject, first, max, mean", opts.Duplicates)
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, expected a header row", advisor.ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cm, err := resolveHeader(header)
	if err != nil {
		return nil, err
	}

	var rows [][numFields]float64
	var maxima [numFields]float64
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", advisor.ErrSchemaMismatch, line, err)
		}
		vals, err := parseRow(row, cm, line)
		if err != nil {
			return nil, err
		}
		for f := range vals {
			maxima[f] = math.Max(maxima[f], vals[f])
		}
		rows = append(rows, vals)
	}

	var divide [numFields]bool
	for f := field(0); f < numFields; f++ {
		if !cm.percent[f] {
			continue
		}
		switch opts.Scale {
		case ScalePercent:
			divide[f] = true
		case ScaleAuto:
			divide[f] = maxima[f] > 1
			if !divide[f] && len(rows) > 0 {
				logrus.Warnf("column %s has a percentage header but no value above 1; reading it as fractions (use --scale percent to override)", f)
			}
		}
		if divide[f] {
			logrus.Debugf("column %s read as percentages", f)
		}
	}

	records := make([]advisor.SimulationRecord, 0, len(rows))
	for i, vals := range rows {
		for f := range vals {
			if divide[f] {
				vals[f] /= 100
			}
		}
		rec := advisor.SimulationRecord{
			Nodes:          int(vals[fieldNodes]),
			Guardians:      int(vals[fieldGuardians]),
			Threshold:      int(vals[fieldThreshold]),
			FDKGPercentage: vals[fieldFDKG],
			TallierRetPct:  vals[fieldRetention],
			SuccessRate:    vals[fieldSuccess],
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		records = append(records, rec)
	}

	records, err = resolveDuplicates(records, opts.Duplicates)
	if err != nil {
		return nil, err
	}
	return advisor.NewDataset(opts.Name, records)
}

var integerFields = map[field]bool{fieldNodes: true, fieldGuardians: true, fieldThreshold: true}

func parseRow(row []string, cm *columnMap, line int) ([numFields]float64, error) {
	var vals [numFields]float64
	for f := field(0); f < numFields; f++ {
		cell := strings.TrimSpace(row[cm.index[f]])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return vals, fmt.Errorf("%w: line %d: %s must be a finite number, got %q",
				advisor.ErrSchemaMismatch, line, f, cell)
		}
		if integerFields[f] && v != math.Trunc(v) {
			return vals, fmt.Errorf("%w: line %d: %s must be an integer, got %q",
				advisor.ErrSchemaMismatch, line, f, cell)
		}
		if integerFields[f] && (v < math.MinInt || v >= math.MaxInt) {
			return vals, fmt.Errorf("%w: line %d: %s is out of integer range, got %q",
				advisor.ErrSchemaMismatch, line, f, cell)
		}
		vals[f] = v
	}
	return vals, nil
}
