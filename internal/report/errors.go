package report

import "errors"

// Error kinds a caller can tell apart with errors.Is. Generation and
// recovery failures surface as *generation.Error and
// *articulation.RecoveryError.
var (
	// ErrInvalidInput is a malformed request, rejected before extraction.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated means no live credential could be obtained.
	ErrUnauthenticated = errors.New("not authenticated")
)
