package advisor

import "errors"

// Fatal conditions. Callers wrap these with context via fmt.Errorf("...: %w", err)
// and test for them with errors.Is.
//
// An empty scenario subset and an infeasible scenario are not errors; they are
// reported as trace outcomes and the scenario is skipped.
var (
	// ErrMissingInput reports an input file that does not exist or cannot be opened.
	ErrMissingInput = errors.New("missing input file")
	// ErrSchemaMismatch reports an input column set or cell that does not match the
	// canonical schema or one of its known synonyms.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidRecord reports a record whose values are out of range.
	ErrInvalidRecord = errors.New("invalid simulation record")
	// ErrDuplicateConfiguration reports two records for the same scenario and the
	// same (guardians, threshold) pair.
	ErrDuplicateConfiguration = errors.New("duplicate configuration")
	// ErrInvalidThreshold reports a success threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("invalid success threshold")
	// ErrInvalidGrid reports an unusable scenario enumeration grid.
	ErrInvalidGrid = errors.New("invalid scenario grid")
	// ErrMalformedPivot reports a pivot cell collision without a merge function, or
	// two paired pivots whose key sets disagree.
	ErrMalformedPivot = errors.New("malformed pivot")
)
