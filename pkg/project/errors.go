package project

import "errors"

// Predefined errors for the project package.
var (
	// ErrInvalidDatafile indicates the datafile JSON could not be parsed into
	// a project configuration.
	ErrInvalidDatafile = errors.New("invalid project datafile")

	// ErrExperimentNotFound indicates the requested experiment does not exist
	// in the configuration snapshot.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrVariationNotFound indicates the requested variation does not exist
	// in the experiment.
	ErrVariationNotFound = errors.New("variation not found")

	// ErrRolloutNotFound indicates the requested rollout does not exist in
	// the configuration snapshot.
	ErrRolloutNotFound = errors.New("rollout not found")

	// ErrFeatureNotFound indicates the requested feature flag does not exist
	// in the configuration snapshot.
	ErrFeatureNotFound = errors.New("feature flag not found")
)
