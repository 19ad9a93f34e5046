package decision

import (
	"context"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

// BucketingIDAttribute is the reserved user attribute that overrides the
// user id as the hash bucketing key. Its value must be a string; any other
// type falls back to the user id.
const BucketingIDAttribute = "$bucketing_id"

// UserContext identifies the user a decision is made for.
type UserContext struct {
	ID         string
	Attributes map[string]any
}

// Source tags where a feature decision came from.
type Source string

const (
	// SourceFeatureTest marks a decision produced by an experiment associated
	// with the feature flag.
	SourceFeatureTest Source = "feature-test"
	// SourceRollout marks a decision produced by a rollout rule, and is also
	// the tag of an evaluated-but-empty decision.
	SourceRollout Source = "rollout"
)

// FeatureDecision is the outcome of resolving a feature flag for a user.
// A nil Variation means the flag was evaluated and no rule matched; Source
// is always set so callers can tell an empty rollout result from an
// experiment result.
type FeatureDecision struct {
	Experiment project.Experiment
	Variation  *project.Variation
	Source     Source
}

// Config is the read-only project configuration surface the pipeline
// consumes. *project.Config satisfies it.
type Config interface {
	ExperimentByID(id string) (project.Experiment, error)
	ExperimentByKey(key string) (project.Experiment, error)
	RolloutByID(id string) (project.Rollout, error)
}

// Bucketer deterministically assigns a bucketing key to one of the rule's
// variations, or reports that the user is outside the rule's traffic.
type Bucketer interface {
	Bucket(bucketingKey string, rule project.Experiment, userID string) (project.Variation, bool)
}

// AudienceEvaluator reports whether a user's attributes satisfy a rule's
// targeting conditions.
type AudienceEvaluator interface {
	MeetsConditions(rule project.Experiment, attrs map[string]any) bool
}

// UserProfileService is the host-pluggable persistence behind sticky
// bucketing. Lookup returns the stored profile representation for a user or
// nil when none exists; Save persists one. Both may fail or block; the
// pipeline absorbs failures and never retries.
type UserProfileService interface {
	Lookup(ctx context.Context, userID string) (map[string]any, error)
	Save(ctx context.Context, profile map[string]any) error
}
