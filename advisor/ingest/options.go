package ingest

// ScaleMode decides how percentage-labelled columns are converted to fractions.
type ScaleMode string

const (
	// ScaleAuto divides a percentage-labelled column by 100 when any of its values
	// exceeds 1, and otherwise reads it as fractions already.
	ScaleAuto ScaleMode = "auto"
	// ScalePercent always divides percentage-labelled columns by 100.
	ScalePercent ScaleMode = "percent"
	// ScaleFraction reads percentage-labelled columns as fractions.
	ScaleFraction ScaleMode = "fraction"
)

// DuplicatePolicy decides what happens to two records sharing a scenario and a
// (guardians, threshold) pair.
type DuplicatePolicy string

const (
	// DuplicateReject fails the load.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateFirst keeps the first record.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateMax keeps the highest success rate.
	DuplicateMax DuplicatePolicy = "max"
	// DuplicateMean averages the success rates.
	DuplicateMean DuplicatePolicy = "mean"
)

var validScaleModes = map[ScaleMode]bool{
	ScaleAuto: true, ScalePercent: true, ScaleFraction: true,
	"": true, // empty defaults to auto
}

var validDuplicatePolicies = map[DuplicatePolicy]bool{
	DuplicateReject: true, DuplicateFirst: true, DuplicateMax: true, DuplicateMean: true,
	"": true, // empty defaults to reject
}

// IsValidScaleMode reports whether name is a recognized scale mode.
func IsValidScaleMode(name string) bool { return validScaleModes[ScaleMode(name)] }

// IsValidDuplicatePolicy reports whether name is a recognized duplicate policy.
func IsValidDuplicatePolicy(name string) bool {
	return validDuplicatePolicies[DuplicatePolicy(name)]
}

// Options controls a load.
type Options struct {
	Name       string // dataset name; defaults to the file's base name
	Scale      ScaleMode
	Duplicates DuplicatePolicy
}

func (o Options) withDefaults() Options {
	if o.Scale == "" {
		o.Scale = ScaleAuto
	}
	if o.Duplicates == "" {
		o.Duplicates = DuplicateReject
	}
	return o
}
