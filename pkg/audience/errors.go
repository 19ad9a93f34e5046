package audience

import "errors"

// Predefined errors for the audience package.
var (
	// ErrInvalidConditions indicates the condition JSON could not be parsed
	// into a condition tree.
	ErrInvalidConditions = errors.New("invalid audience conditions")
)
