package source

import "errors"

// Sentinel kinds for record source errors.
var (
	// ErrUnavailable means the record set could not be read at all.
	ErrUnavailable = errors.New("record source unavailable")
	// ErrDecode means the source was reachable but its content is not a row set.
	ErrDecode = errors.New("record source content invalid")
)
