package advisor

import (
	"fmt"
	"math"
	"slices"
)

// SimulationRecord is one measured configuration from the liveness simulator.
// Percentages are fractions in [0, 1].
type SimulationRecord struct {
	Nodes          int
	Guardians      int
	Threshold      int
	FDKGPercentage float64
	TallierRetPct  float64
	SuccessRate    float64
}

// Scenario returns the deployment scenario the record belongs to.
func (r SimulationRecord) Scenario() ScenarioKey {
	return ScenarioKey{Nodes: r.Nodes, FDKGPercentage: r.FDKGPercentage, TallierRetPct: r.TallierRetPct}
}

// Config returns the (guardians, threshold) pair measured by the record.
func (r SimulationRecord) Config() ConfigKey {
	return ConfigKey{Guardians: r.Guardians, Threshold: r.Threshold}
}

// Validate checks the record's value ranges.
func (r SimulationRecord) Validate() error {
	if r.Nodes < 1 {
		return fmt.Errorf("%w: nodes must be >= 1, got %d", ErrInvalidRecord, r.Nodes)
	}
	if r.Guardians < 1 {
		return fmt.Errorf("%w: guardians must be >= 1, got %d", ErrInvalidRecord, r.Guardians)
	}
	if r.Threshold < 1 || r.Threshold > r.Guardians {
		return fmt.Errorf("%w: threshold must be in [1, %d], got %d", ErrInvalidRecord, r.Guardians, r.Threshold)
	}
	if err := validateFraction("fdkgPercentage", r.FDKGPercentage); err != nil {
		return err
	}
	if err := validateFraction("tallierRetPct", r.TallierRetPct); err != nil {
		return err
	}
	return validateFraction("successRate", r.SuccessRate)
}

func validateFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be a fraction in [0, 1], got %v", ErrInvalidRecord, name, v)
	}
	return nil
}

// ScenarioKey identifies one deployment scenario. Float fields are compared
// exactly: keys must come from the same quantized grid the simulator swept.
type ScenarioKey struct {
	Nodes          int
	FDKGPercentage float64
	TallierRetPct  float64
}

func (k ScenarioKey) String() string {
	return fmt.Sprintf("N=%d fdkg=%g ret=%g", k.Nodes, k.FDKGPercentage, k.TallierRetPct)
}

// ConfigKey is a (guardians, threshold) pair.
type ConfigKey struct {
	Guardians int
	Threshold int
}

// Label renders the pair as "(k,t)", the overlay format used by reporting.
func (c ConfigKey) Label() string {
	return fmt.Sprintf("(%d,%d)", c.Guardians, c.Threshold)
}

// Dataset is a named, read-only collection of simulation records, typically one
// network topology (BarabasiAlbert, RandomGraph, DKG).
type Dataset struct {
	Name    string
	records []SimulationRecord
}

// NewDataset validates every record and copies them into a new Dataset.
// Duplicate (scenario, guardians, threshold) records are rejected; resolving them
// is the ingestion layer's job.
func NewDataset(name string, records []SimulationRecord) (*Dataset, error) {
	seen := make(map[scenarioConfig]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		sc := scenarioConfig{r.Scenario(), r.Config()}
		if prev, ok := seen[sc]; ok {
			return nil, fmt.Errorf("%w: records %d and %d share %s %s",
				ErrDuplicateConfiguration, prev, i, sc.scenario, sc.config.Label())
		}
		seen[sc] = i
	}
	return &Dataset{Name: name, records: slices.Clone(records)}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of the records in input order.
func (d *Dataset) Records() []SimulationRecord { return slices.Clone(d.records) }

type scenarioConfig struct {
	scenario ScenarioKey
	config   ConfigKey
}
