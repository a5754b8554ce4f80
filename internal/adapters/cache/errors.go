package cache

import "errors"

// Sentinel kinds for cache errors. Both are recoverable: callers recompute.
var (
	ErrLoad  = errors.New("cache load failed")
	ErrStore = errors.New("cache store failed")
)
