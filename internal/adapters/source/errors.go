package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrMissingColumn    = errors.New("missing required column")
	ErrSourceUnreadable = errors.New("source unreadable")
)
