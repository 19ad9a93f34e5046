package decision_test

import (
	"context"
	"sync"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

// stubConfig implements decision.Config over plain maps.
type stubConfig struct {
	experiments map[string]project.Experiment
	rollouts    map[string]project.Rollout
}

func newStubConfig(experiments []project.Experiment, rollouts ...project.Rollout) *stubConfig {
	cfg := &stubConfig{
		experiments: make(map[string]project.Experiment),
		rollouts:    make(map[string]project.Rollout),
	}
	for _, exp := range experiments {
		cfg.experiments[exp.ID] = exp
	}
	for _, r := range rollouts {
		cfg.rollouts[r.ID] = r
	}
	return cfg
}

func (c *stubConfig) ExperimentByID(id string) (project.Experiment, error) {
	exp, ok := c.experiments[id]
	if !ok {
		return project.Experiment{}, project.ErrExperimentNotFound
	}
	return exp, nil
}

func (c *stubConfig) ExperimentByKey(key string) (project.Experiment, error) {
	for _, exp := range c.experiments {
		if exp.Key == key {
			return exp, nil
		}
	}
	return project.Experiment{}, project.ErrExperimentNotFound
}

func (c *stubConfig) RolloutByID(id string) (project.Rollout, error) {
	r, ok := c.rollouts[id]
	if !ok {
		return project.Rollout{}, project.ErrRolloutNotFound
	}
	return r, nil
}

// mockBucketer returns whatever its function says; when nil it assigns the
// first variation of the rule.
type mockBucketer struct {
	fn func(bucketingKey string, rule project.Experiment, userID string) (project.Variation, bool)

	mu    sync.Mutex
	keys  []string
	rules []string
}

func (m *mockBucketer) Bucket(bucketingKey string, rule project.Experiment, userID string) (project.Variation, bool) {
	m.mu.Lock()
	m.keys = append(m.keys, bucketingKey)
	m.rules = append(m.rules, rule.ID)
	m.mu.Unlock()

	if m.fn != nil {
		return m.fn(bucketingKey, rule, userID)
	}
	if len(rule.Variations) == 0 {
		return project.Variation{}, false
	}
	return rule.Variations[0], true
}

func (m *mockBucketer) seenKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

func (m *mockBucketer) seenRules() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.rules...)
}

// mockEvaluator answers audience checks with a fixed function; when nil it
// admits everyone.
type mockEvaluator struct {
	fn func(rule project.Experiment, attrs map[string]any) bool
}

func (m *mockEvaluator) MeetsConditions(rule project.Experiment, attrs map[string]any) bool {
	if m.fn == nil {
		return true
	}
	return m.fn(rule, attrs)
}

// mockProfileStore implements decision.UserProfileService in memory with
// injectable failures.
type mockProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]map[string]any
	lookupErr error
	saveErr   error
	panicOn   bool
	saves     int
	lookups   int
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[string]map[string]any)}
}

func (m *mockProfileStore) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.panicOn {
		panic("profile store exploded")
	}
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return profile, nil
}

func (m *mockProfileStore) Save(ctx context.Context, profile map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.panicOn {
		panic("profile store exploded")
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	userID, _ := profile["user_id"].(string)
	m.profiles[userID] = profile
	return nil
}

func (m *mockProfileStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *mockProfileStore) storedProfile(userID string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID]
}

func (m *mockProfileStore) seed(userID string, bucketMap map[string]string) {
	decisions := make(map[string]any, len(bucketMap))
	for experimentID, variationID := range bucketMap {
		decisions[experimentID] = map[string]any{"variation_id": variationID}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = map[string]any{
		"user_id":               userID,
		"experiment_bucket_map": decisions,
	}
}

// Experiment fixtures shared across the decision tests.

func runningExperiment(id, key string) project.Experiment {
	return project.Experiment{
		ID:     id,
		Key:    key,
		Status: project.StatusRunning,
		TrafficAllocation: []project.TrafficRange{
			{EntityID: id + "-control", EndOfRange: 5000},
			{EntityID: id + "-treatment", EndOfRange: 10000},
		},
		Variations: []project.Variation{
			{ID: id + "-control", Key: "control"},
			{ID: id + "-treatment", Key: "treatment", FeatureEnabled: true},
		},
	}
}
