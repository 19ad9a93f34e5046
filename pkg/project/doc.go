// Package project models an immutable experimentation project configuration
// loaded from a JSON datafile.
//
// A datafile is a self-contained snapshot of a project: its audiences,
// experiments, feature flags and rollouts. NewConfig parses one into a
// Config, resolving audience references onto each experiment and building
// lookup indexes once at load time. The resulting Config and every entity it
// exposes are read-only and safe for concurrent use for the lifetime of the
// snapshot.
//
// # Entities
//
// Experiment is the shared targeting-rule shape: audience conditions plus an
// ordered traffic allocation over variations. It is constructed in two
// places: as a real experiment (with a running status and a whitelist) and
// as a rule inside a Rollout. The last rule of a rollout is its "everyone
// else" catch-all.
//
// # Lookups
//
// Config lookups return the zero entity together with a sentinel error when
// a key or id is unknown:
//
//	exp, err := cfg.ExperimentByKey("checkout_redesign")
//	if errors.Is(err, project.ErrExperimentNotFound) {
//		// unknown experiment, skip
//	}
//
// Callers in the decision pipeline treat every not-found result as "no
// decision", never as a failure.
package project
