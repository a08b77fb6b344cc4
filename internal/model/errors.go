package model

import "errors"

// ErrInvalidInput is returned when a pallet or container record is malformed.
// It fails the whole run: silently skipping a record would hide demand.
var ErrInvalidInput = errors.New("invalid input")
