// Package splitkit is a client-embedded experimentation and feature-flagging
// SDK.
//
// A Client is built from a project datafile, a JSON snapshot of the
// project's experiments, audiences, feature flags and rollouts. It answers
// decision questions for users: which variation of an experiment a user gets,
// whether a feature flag is on for them, and which rule made that call.
//
//	client, err := splitkit.New(datafile)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user := decision.UserContext{
//		ID:         "user-42",
//		Attributes: map[string]any{"plan": "pro"},
//	}
//	enabled, _ := client.IsFeatureEnabled(ctx, "checkout_redesign", user)
//
// Decisions are deterministic: the same datafile, user id and attributes
// always produce the same answer, because assignment is driven by a fixed
// hash of the user's bucketing key. On top of that base the SDK layers
// runtime forced variations, datafile whitelists and optional sticky
// bucketing through a pluggable profile store (see pkg/profilestore for
// Redis, Postgres and in-memory stores).
//
// The heavy lifting lives in the subpackages; this package only binds a
// parsed configuration (pkg/project) to the decision pipeline (pkg/decision):
//
//   - pkg/project: datafile parsing and the immutable config snapshot
//   - pkg/decision: the precedence chain and feature-flag resolution
//   - pkg/bucketer: deterministic hash bucketing
//   - pkg/audience: targeting condition evaluation
//   - pkg/profilestore: sticky-bucketing persistence backends
//
// Datafile retrieval, polling and event/analytics dispatch are deliberately
// out of scope: the host owns how datafiles arrive and what happens after a
// decision is made.
package splitkit
