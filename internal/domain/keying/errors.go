package keying

import "errors"

// Sentinel kinds for keying errors.
var (
	ErrEmptySalt = errors.New("secret salt must not be empty")
)
