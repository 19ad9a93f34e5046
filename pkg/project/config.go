package project

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/splitkit/pkg/audience"
)

// Config is an immutable project configuration snapshot built from a JSON
// datafile. All lookup indexes are built once at load time; a Config is safe
// for concurrent read-only use.
type Config struct {
	ProjectID string
	Revision  string

	experimentsByID  map[string]Experiment
	experimentsByKey map[string]Experiment
	rolloutsByID     map[string]Rollout
	featuresByKey    map[string]FeatureFlag
}

// Raw datafile shapes. Audience references are resolved and dropped during
// load; everything else maps onto the exported entities.
type (
	datafile struct {
		Version      string             `json:"version"`
		ProjectID    string             `json:"projectId"`
		Revision     string             `json:"revision"`
		Audiences    []datafileAudience `json:"audiences"`
		Experiments  []datafileRule     `json:"experiments"`
		Rollouts     []datafileRollout  `json:"rollouts"`
		FeatureFlags []datafileFeature  `json:"featureFlags"`
	}

	datafileAudience struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Conditions json.RawMessage `json:"conditions"`
	}

	datafileRule struct {
		ID                string            `json:"id"`
		Key               string            `json:"key"`
		Status            string            `json:"status"`
		AudienceIDs       []string          `json:"audienceIds"`
		ForcedVariations  map[string]string `json:"forcedVariations"`
		TrafficAllocation []TrafficRange    `json:"trafficAllocation"`
		Variations        []Variation       `json:"variations"`
	}

	datafileRollout struct {
		ID          string         `json:"id"`
		Experiments []datafileRule `json:"experiments"`
	}

	datafileFeature struct {
		ID            string   `json:"id"`
		Key           string   `json:"key"`
		ExperimentIDs []string `json:"experimentIds"`
		RolloutID     string   `json:"rolloutId"`
	}
)

// NewConfig parses a JSON datafile into a Config snapshot.
func NewConfig(raw []byte) (*Config, error) {
	var df datafile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, errors.Join(ErrInvalidDatafile, err)
	}

	audiences := make(map[string]*audience.Conditions, len(df.Audiences))
	for _, a := range df.Audiences {
		conds, err := audience.ParseConditions(a.Conditions)
		if err != nil {
			return nil, errors.Join(ErrInvalidDatafile,
				fmt.Errorf("audience %q: %w", a.ID, err))
		}
		audiences[a.ID] = conds
	}

	cfg := &Config{
		ProjectID:        df.ProjectID,
		Revision:         df.Revision,
		experimentsByID:  make(map[string]Experiment, len(df.Experiments)),
		experimentsByKey: make(map[string]Experiment, len(df.Experiments)),
		rolloutsByID:     make(map[string]Rollout, len(df.Rollouts)),
		featuresByKey:    make(map[string]FeatureFlag, len(df.FeatureFlags)),
	}

	for _, rawExperiment := range df.Experiments {
		exp, err := buildExperiment(rawExperiment, audiences)
		if err != nil {
			return nil, errors.Join(ErrInvalidDatafile, err)
		}
		cfg.experimentsByID[exp.ID] = exp
		cfg.experimentsByKey[exp.Key] = exp
	}

	for _, rawRollout := range df.Rollouts {
		rollout := Rollout{
			ID:    rawRollout.ID,
			Rules: make([]Experiment, 0, len(rawRollout.Experiments)),
		}
		for _, rawRule := range rawRollout.Experiments {
			// Rollout rules reuse the experiment shape but are always live.
			rawRule.Status = StatusRunning
			rule, err := buildExperiment(rawRule, audiences)
			if err != nil {
				return nil, errors.Join(ErrInvalidDatafile,
					fmt.Errorf("rollout %q: %w", rawRollout.ID, err))
			}
			rollout.Rules = append(rollout.Rules, rule)
		}
		cfg.rolloutsByID[rollout.ID] = rollout
	}

	for _, rawFeature := range df.FeatureFlags {
		cfg.featuresByKey[rawFeature.Key] = FeatureFlag{
			ID:            rawFeature.ID,
			Key:           rawFeature.Key,
			ExperimentIDs: rawFeature.ExperimentIDs,
			RolloutID:     rawFeature.RolloutID,
		}
	}

	return cfg, nil
}

// buildExperiment resolves audience references into a single condition tree.
// Multiple referenced audiences combine as an OR, matching how datafiles
// express "any of these audiences".
func buildExperiment(raw datafileRule, audiences map[string]*audience.Conditions) (Experiment, error) {
	var conds *audience.Conditions
	if len(raw.AudienceIDs) > 0 {
		referenced := make([]*audience.Conditions, 0, len(raw.AudienceIDs))
		for _, id := range raw.AudienceIDs {
			c, ok := audiences[id]
			if !ok {
				return Experiment{}, fmt.Errorf("experiment %q references unknown audience %q", raw.Key, id)
			}
			referenced = append(referenced, c)
		}
		conds = audience.Or(referenced...)
	}

	return Experiment{
		ID:                raw.ID,
		Key:               raw.Key,
		Status:            raw.Status,
		Audience:          conds,
		Whitelist:         raw.ForcedVariations,
		TrafficAllocation: raw.TrafficAllocation,
		Variations:        raw.Variations,
	}, nil
}

// ExperimentByID returns the experiment with the given id.
func (c *Config) ExperimentByID(id string) (Experiment, error) {
	exp, ok := c.experimentsByID[id]
	if !ok {
		return Experiment{}, ErrExperimentNotFound
	}
	return exp, nil
}

// ExperimentByKey returns the experiment with the given key.
func (c *Config) ExperimentByKey(key string) (Experiment, error) {
	exp, ok := c.experimentsByKey[key]
	if !ok {
		return Experiment{}, ErrExperimentNotFound
	}
	return exp, nil
}

// RolloutByID returns the rollout with the given id.
func (c *Config) RolloutByID(id string) (Rollout, error) {
	rollout, ok := c.rolloutsByID[id]
	if !ok {
		return Rollout{}, ErrRolloutNotFound
	}
	return rollout, nil
}

// FeatureByKey returns the feature flag with the given key.
func (c *Config) FeatureByKey(key string) (FeatureFlag, error) {
	feature, ok := c.featuresByKey[key]
	if !ok {
		return FeatureFlag{}, ErrFeatureNotFound
	}
	return feature, nil
}

// Features returns all feature flags in the snapshot.
func (c *Config) Features() []FeatureFlag {
	features := make([]FeatureFlag, 0, len(c.featuresByKey))
	for _, f := range c.featuresByKey {
		features = append(features, f)
	}
	return features
}
