// Package decision implements the experiment and feature-flag decision
// pipeline of the SDK.
//
// The Service answers two questions: "which variation of this experiment does
// the user get?" and "which decision applies for this feature flag?". It
// composes four collaborators (project configuration lookups, deterministic
// hash bucketing, audience evaluation and an optional pluggable user-profile
// store) behind a strict precedence chain:
//
//  1. A paused experiment decides nothing.
//  2. A forced variation set through SetForcedVariation wins over everything.
//  3. A datafile whitelist entry wins over targeting and bucketing.
//  4. A stored sticky decision is honored without re-checking the audience;
//     once a user is bucketed, changed attributes do not move them.
//  5. Otherwise the audience condition gates deterministic hash bucketing,
//     and a fresh bucketing result is persisted back to the profile store on
//     a best-effort basis.
//
// Feature flags resolve against their associated experiments first, in
// declared order, stopping at the first experiment that yields a variation.
// Only when none does is the flag's rollout evaluated, rule by rule. A user
// excluded by a rule's traffic allocation after passing its audience skips
// ahead to the final "everyone else" rule rather than trying the remaining
// targeted rules; that exclusion policy is deliberate and load-bearing.
//
// # Failure containment
//
// Nothing a collaborator does can fail a decision call. Unresolvable keys,
// malformed stored profiles, profile-store errors and even panics from a
// host-supplied profile store are caught at the point of call, logged, and
// degraded to "no decision" or "not persisted". A profile-store save failure
// never changes the variation returned to the caller.
//
// # Concurrency
//
// A single Service is meant to be shared across goroutines. The
// forced-variation map is the only mutable state and is guarded internally;
// it is never locked across a profile-store call. All other collaborators
// are treated as stateless and safe for concurrent reads.
package decision
