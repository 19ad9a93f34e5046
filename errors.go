package splitkit

import "errors"

// Predefined errors for the splitkit package.
var (
	// ErrFailedToReadDatafile indicates the datafile could not be read from
	// disk.
	ErrFailedToReadDatafile = errors.New("failed to read datafile")

	// ErrFailedToLoadConfig indicates the environment configuration could
	// not be parsed.
	ErrFailedToLoadConfig = errors.New("failed to load splitkit config from environment")
)
