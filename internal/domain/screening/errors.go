package screening

import (
	"errors"
	"fmt"
)

// Sentinel kinds for per-record data errors.
var (
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidGeometry  = errors.New("invalid geometry")
	ErrMalformedLattice = errors.New("malformed lattice")
	ErrDuplicateUID     = errors.New("duplicate uid")
)

// DataError reports why one record was excluded from pairing.
type DataError struct {
	UID   string
	Field string
	Err   error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("record %q: %s: %v", e.UID, e.Field, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }
