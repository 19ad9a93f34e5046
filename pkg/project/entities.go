package project

import "github.com/dmitrymomot/splitkit/pkg/audience"

// Experiment status values as they appear in a datafile.
const (
	StatusRunning = "Running"
	StatusPaused  = "Paused"
)

// Variation is a single arm of an experiment or rollout rule.
type Variation struct {
	ID             string `json:"id"`
	Key            string `json:"key"`
	FeatureEnabled bool   `json:"featureEnabled"`
}

// TrafficRange maps a slice of the hash space to a variation. Ranges are
// ordered and cumulative: a bucket value belongs to the first range whose
// EndOfRange exceeds it.
type TrafficRange struct {
	// EntityID is the variation the range assigns. An empty EntityID marks
	// traffic deliberately held out of the experiment.
	EntityID string `json:"entityId"`
	// EndOfRange is the exclusive upper bound of the range, in units of
	// 1/10000 of the hash space.
	EndOfRange int `json:"endOfRange"`
}

// Experiment is the shared targeting-rule shape. Real experiments and rollout
// rules are both built from it; rollout rules carry no whitelist and their
// status is always running.
type Experiment struct {
	ID     string
	Key    string
	Status string
	// Audience is the resolved targeting condition tree. Nil means the
	// experiment targets everyone.
	Audience *audience.Conditions
	// Whitelist maps user ids to variation keys declared in the datafile.
	Whitelist         map[string]string
	TrafficAllocation []TrafficRange
	Variations        []Variation
}

// IsRunning reports whether the experiment accepts traffic.
func (e Experiment) IsRunning() bool {
	return e.Status == StatusRunning
}

// VariationByID returns the experiment's variation with the given id.
func (e Experiment) VariationByID(id string) (Variation, error) {
	for _, v := range e.Variations {
		if v.ID == id {
			return v, nil
		}
	}
	return Variation{}, ErrVariationNotFound
}

// VariationByKey returns the experiment's variation with the given key.
func (e Experiment) VariationByKey(key string) (Variation, error) {
	for _, v := range e.Variations {
		if v.Key == key {
			return v, nil
		}
	}
	return Variation{}, ErrVariationNotFound
}

// Rollout is an ordered sequence of targeting rules used to expose a feature
// outside of a formal experiment. The last rule is the "everyone else"
// catch-all.
type Rollout struct {
	ID    string
	Rules []Experiment
}

// FeatureFlag ties a feature key to its associated experiments and an
// optional rollout.
type FeatureFlag struct {
	ID            string
	Key           string
	ExperimentIDs []string
	RolloutID     string
}
