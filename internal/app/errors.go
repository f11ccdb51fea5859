package service

import "errors"

// Sentinel error kinds returned by the Service.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoDeriver    = errors.New("service requires a key deriver")
)
