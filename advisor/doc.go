// Package advisor turns FDKG liveness sweep results into guardian/threshold
// deployment recommendations.
//
// # Reading Guide
//
//   - record.go: SimulationRecord, ScenarioKey and the immutable Dataset
//   - filter.go: exact-match scenario filtering and the one-pass ScenarioIndex
//   - selector.go: the optimal (guardians, threshold) selection for one scenario
//   - batch.go: Cartesian grid enumeration producing RecommendationRows
//   - pivot.go, matrix.go: reshaping rows and raw records into ordered matrices
//
// # Selection policy
//
// Guardian count drives deployment cost and the threshold governs resilience at a
// fixed cost, so the selector minimizes guardians first and maximizes the
// threshold second. Remaining ties go to the higher success rate, then to the
// record that appears first in the input.
//
// Sub-packages:
//   - advisor/ingest/: CSV loading and schema normalization (the only place
//     percentage-scaled values are converted to fractions)
//   - advisor/export/: staged, all-or-nothing CSV/YAML output
//   - advisor/trace/: per-scenario decision trace
//   - advisor/metrics/: Prometheus collectors for runs and the lookup API
//   - advisor/api/: read-only HTTP lookup over a computed run
package advisor
