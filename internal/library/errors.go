package library

import "errors"

// Sentinel errors returned by store and coordinator operations. Callers are
// expected to match with errors.Is and map them at the API boundary.
var (
	// ErrValidation indicates a required field was empty or a reference
	// could not be resolved during creation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a shelf or book id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProtected indicates an attempt to delete the default shelf.
	ErrProtected = errors.New("protected entity")

	// ErrInvariant indicates a mutation that would corrupt the shelf/book
	// cross-references, e.g. a reorder payload that is not a permutation of
	// the current shelf set. The mutation is rejected and state is unchanged.
	ErrInvariant = errors.New("invariant violation")
)
