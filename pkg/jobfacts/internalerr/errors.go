package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidDocument  = errors.New("invalid document")
	ErrReferenceData    = errors.New("reference data unavailable")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
