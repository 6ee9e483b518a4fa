// Package errs holds sentinel errors shared across packages.
package errs

import "errors"

var (
	ErrNotConnected       = errors.New("network not connected")
	ErrMissingField       = errors.New("missing distance/fill")
	ErrInvalidField       = errors.New("invalid distance/fill")
	ErrNoReading          = errors.New("no reading received yet")
	ErrInvalidCalibration = errors.New("empty distance must be greater than full distance")
)
