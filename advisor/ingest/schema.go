package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
)

// field identifies a canonical SimulationRecord column.
type field int

const (
	fieldNodes field = iota
	fieldGuardians
	fieldThreshold
	fieldFDKG
	fieldRetention
	fieldSuccess
	numFields
)

var fieldNames = [numFields]string{
	fieldNodes:     "nodes",
	fieldGuardians: "guardians",
	fieldThreshold: "threshold",
	fieldFDKG:      "fdkgPercentage",
	fieldRetention: "tallierRetPct",
	fieldSuccess:   "successRate",
}

func (f field) String() string { return fieldNames[f] }

// canonicalColumns is the simulator's own header. Values are fractions.
var canonicalColumns = map[string]field{
	"nodes":          fieldNodes,
	"guardians":      fieldGuardians,
	"threshold":      fieldThreshold,
	"fdkgPercentage": fieldFDKG,
	"tallierRetPct":  fieldRetention,
	"successRate":    fieldSuccess,
}

// displayColumns are the report headers used by recommendation tables. The
// percentage-labelled ones are subject to ScaleMode.
var displayColumns = map[string]field{
	"Number of Nodes (N)":     fieldNodes,
	"Number of Guardians (k)": fieldGuardians,
	"Threshold (t)":           fieldThreshold,
	"FDKG Participation (%)":  fieldFDKG,
	"Tallier Retention (%)":   fieldRetention,
	"Success Rate (%)":        fieldSuccess,
}

// ignorableColumns are known extras that carry nothing the engine reads.
var ignorableColumns = map[string]bool{
	"tallierNewPct":                    true,
	"Successful Configurations Count":  true,
	"Successfull Configurations Count": true, // spelling used by older recommendation tables
}

// columnMap locates each canonical field in a CSV row.
type columnMap struct {
	index   [numFields]int
	percent [numFields]bool // column header is percentage-labelled
}

// resolveHeader maps a CSV header onto the canonical fields. Unknown columns and
// missing or doubly-mapped fields are schema mismatches.
func resolveHeader(header []string) (*columnMap, error) {
	cm := &columnMap{}
	for i := range cm.index {
		cm.index[i] = -1
	}
	var unknown []string
	for i, raw := range header {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		f, percent, ok := lookupColumn(name)
		if !ok {
			if ignorableColumns[name] {
				continue
			}
			unknown = append(unknown, name)
			continue
		}
		if cm.index[f] >= 0 {
			return nil, fmt.Errorf("%w: column %q maps to %s, already provided by column %d",
				advisor.ErrSchemaMismatch, name, f, cm.index[f]+1)
		}
		cm.index[f] = i
		cm.percent[f] = percent
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unrecognized columns %s", advisor.ErrSchemaMismatch, strings.Join(unknown, ", "))
	}
	var missing []string
	for f := field(0); f < numFields; f++ {
		if cm.index[f] < 0 {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing required columns %s", advisor.ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return cm, nil
}

func lookupColumn(name string) (f field, percent bool, ok bool) {
	if f, ok := canonicalColumns[name]; ok {
		return f, false, true
	}
	if f, ok := displayColumns[name]; ok {
		return f, f == fieldFDKG || f == fieldRetention || f == fieldSuccess, true
	}
	return 0, false, false
}
