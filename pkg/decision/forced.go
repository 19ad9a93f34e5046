package decision

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

// forcedVariations is the process-lifetime override map: user id →
// experiment id → variation id. It is the only mutable state the Service
// owns and is guarded for concurrent use; per-user operations are atomic.
type forcedVariations struct {
	mu sync.RWMutex
	m  map[string]map[string]string
}

func newForcedVariations() forcedVariations {
	return forcedVariations{m: make(map[string]map[string]string)}
}

func (f *forcedVariations) get(userID, experimentID string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	variationID, ok := f.m[userID][experimentID]
	return variationID, ok
}

func (f *forcedVariations) set(userID, experimentID, variationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byExperiment, ok := f.m[userID]
	if !ok {
		byExperiment = make(map[string]string)
		f.m[userID] = byExperiment
	}
	byExperiment[experimentID] = variationID
}

func (f *forcedVariations) remove(userID, experimentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byExperiment, ok := f.m[userID]
	if !ok {
		return
	}
	delete(byExperiment, experimentID)
	if len(byExperiment) == 0 {
		delete(f.m, userID)
	}
}

// GetForcedVariation returns the forced variation for the user and
// experiment key, or nil when no override is set, the experiment key is
// unknown, or the recorded variation no longer exists in the configuration.
func (s *Service) GetForcedVariation(cfg Config, experimentKey, userID string) *project.Variation {
	experiment, err := cfg.ExperimentByKey(experimentKey)
	if err != nil {
		s.logger.Debug("no experiment for forced-variation lookup",
			slog.String("experiment_key", experimentKey),
			slog.String("user_id", userID))
		return nil
	}
	return s.forcedVariation(experiment, userID)
}

// SetForcedVariation records an override for the (user, experiment) pair,
// replacing any previous one. It reports false without mutating anything
// when the variation key is empty or when either key does not resolve
// against the configuration.
func (s *Service) SetForcedVariation(cfg Config, experimentKey, userID, variationKey string) bool {
	if variationKey == "" {
		s.logger.Warn("rejecting empty forced-variation key",
			slog.String("experiment_key", experimentKey),
			slog.String("user_id", userID))
		return false
	}

	experiment, err := cfg.ExperimentByKey(experimentKey)
	if err != nil {
		s.logger.Warn("cannot force variation for unknown experiment",
			slog.String("experiment_key", experimentKey),
			slog.String("user_id", userID))
		return false
	}
	variation, err := experiment.VariationByKey(variationKey)
	if err != nil {
		s.logger.Warn("cannot force unknown variation",
			slog.String("experiment_key", experimentKey),
			slog.String("variation_key", variationKey),
			slog.String("user_id", userID))
		return false
	}

	s.forced.set(userID, experiment.ID, variation.ID)
	s.logger.Debug("forced variation set",
		slog.String("experiment_key", experimentKey),
		slog.String("variation_key", variationKey),
		slog.String("user_id", userID))
	return true
}

// RemoveForcedVariation clears the override for the (user, experiment) pair.
// Clearing an override that was never set still succeeds; only an unknown
// experiment key reports false.
func (s *Service) RemoveForcedVariation(cfg Config, experimentKey, userID string) bool {
	experiment, err := cfg.ExperimentByKey(experimentKey)
	if err != nil {
		s.logger.Warn("cannot clear forced variation for unknown experiment",
			slog.String("experiment_key", experimentKey),
			slog.String("user_id", userID))
		return false
	}
	s.forced.remove(userID, experiment.ID)
	return true
}
