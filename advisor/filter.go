package advisor

// FilterScenario returns the records matching key, in input order. Matching uses
// exact equality on all three key fields. An empty result means the sweep has no
// data for the scenario and is not an error.
func FilterScenario(records []SimulationRecord, key ScenarioKey) []SimulationRecord {
	var out []SimulationRecord
	for _, r := range records {
		if r.Scenario() == key {
			out = append(out, r)
		}
	}
	return out
}

// ScenarioIndex groups a record collection by scenario in a single pass so the
// batch driver does not rescan the whole collection for every grid point.
type ScenarioIndex struct {
	groups map[ScenarioKey][]SimulationRecord
	order  []ScenarioKey // first-seen order
}

// NewScenarioIndex builds an index over records. Each group keeps input order,
// so Lookup(k) equals FilterScenario(records, k).
func NewScenarioIndex(records []SimulationRecord) *ScenarioIndex {
	idx := &ScenarioIndex{groups: make(map[ScenarioKey][]SimulationRecord)}
	for _, r := range records {
		k := r.Scenario()
		if _, ok := idx.groups[k]; !ok {
			idx.order = append(idx.order, k)
		}
		idx.groups[k] = append(idx.groups[k], r)
	}
	return idx
}

// IndexDataset builds a ScenarioIndex over a dataset without copying it first.
func IndexDataset(ds *Dataset) *ScenarioIndex {
	return NewScenarioIndex(ds.records)
}

// Lookup returns the subset for key, or nil when the scenario has no records.
// The returned slice must not be modified.
func (idx *ScenarioIndex) Lookup(key ScenarioKey) []SimulationRecord {
	return idx.groups[key]
}

// Scenarios returns the indexed scenario keys in first-seen order.
func (idx *ScenarioIndex) Scenarios() []ScenarioKey {
	out := make([]ScenarioKey, len(idx.order))
	copy(out, idx.order)
	return out
}

// Len returns the number of distinct scenarios.
func (idx *ScenarioIndex) Len() int { return len(idx.order) }
