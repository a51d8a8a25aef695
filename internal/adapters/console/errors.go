package console

import "errors"

// ErrInvalidChoice is returned for menu input outside the offered options.
var ErrInvalidChoice = errors.New("invalid choice")
