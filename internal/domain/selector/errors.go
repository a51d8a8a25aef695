package selector

import "errors"

// Sentinel kinds for selector errors.
var (
	ErrInvalidSelector = errors.New("invalid selector")
	ErrInvalidRange    = errors.New("invalid date range")
)
