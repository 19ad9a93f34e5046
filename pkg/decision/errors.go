package decision

import "errors"

// Predefined errors for the decision package.
var (
	// ErrMalformedProfile indicates a stored user profile failed shape
	// validation. It is absorbed by the pipeline and only surfaces in logs.
	ErrMalformedProfile = errors.New("malformed user profile")
)
