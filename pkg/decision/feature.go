package decision

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

// GetVariationForFeature resolves a feature flag for a user: the flag's
// associated experiments are tried first, in declared order, and only when
// none yields a variation is the flag's rollout evaluated. The result is
// always tagged with its source; a nil Variation with SourceRollout means
// the flag was evaluated and no rule matched.
func (s *Service) GetVariationForFeature(ctx context.Context, cfg Config, flag project.FeatureFlag, user UserContext) FeatureDecision {
	if d, ok := s.variationForFeatureExperiment(ctx, cfg, flag, user); ok {
		return d
	}
	if d, ok := s.variationForFeatureRollout(cfg, flag, user); ok {
		return d
	}
	s.logger.Info("user is not in any rule for feature",
		slog.String("feature_key", flag.Key),
		slog.String("user_id", user.ID))
	return FeatureDecision{Source: SourceRollout}
}

// variationForFeatureExperiment walks the flag's associated experiments in
// declared order and returns the first one that buckets the user. Experiment
// ids that no longer resolve are skipped.
func (s *Service) variationForFeatureExperiment(ctx context.Context, cfg Config, flag project.FeatureFlag, user UserContext) (FeatureDecision, bool) {
	for _, id := range flag.ExperimentIDs {
		experiment, err := cfg.ExperimentByID(id)
		if err != nil {
			s.logger.Warn("feature references unknown experiment",
				slog.String("feature_key", flag.Key),
				slog.String("experiment_id", id))
			continue
		}
		if v := s.GetVariation(ctx, cfg, experiment, user); v != nil {
			return FeatureDecision{
				Experiment: experiment,
				Variation:  v,
				Source:     SourceFeatureTest,
			}, true
		}
	}
	return FeatureDecision{}, false
}

// variationForFeatureRollout evaluates the flag's rollout rules in order.
// Targeted rules (all but the last) are tried one after another on audience
// failure, but a user who passes a rule's audience and is still excluded by
// its traffic allocation skips directly to the final "everyone else" rule.
// That exclusion stop is intentional: a user held out of a targeted rule
// must not leak into the next targeted rule.
func (s *Service) variationForFeatureRollout(cfg Config, flag project.FeatureFlag, user UserContext) (FeatureDecision, bool) {
	if flag.RolloutID == "" {
		s.logger.Debug("feature has no rollout",
			slog.String("feature_key", flag.Key))
		return FeatureDecision{}, false
	}

	rollout, err := cfg.RolloutByID(flag.RolloutID)
	if err != nil {
		s.logger.Warn("feature references unknown rollout",
			slog.String("feature_key", flag.Key),
			slog.String("rollout_id", flag.RolloutID))
		return FeatureDecision{}, false
	}
	if len(rollout.Rules) == 0 {
		return FeatureDecision{}, false
	}

	bucketingKey := s.bucketingKey(user)

	for _, rule := range rollout.Rules[:len(rollout.Rules)-1] {
		if !s.audience.MeetsConditions(rule, user.Attributes) {
			s.logger.Debug("user does not meet conditions for rollout rule",
				slog.String("user_id", user.ID),
				slog.String("rule_key", rule.Key))
			continue
		}
		if v, ok := s.bucketer.Bucket(bucketingKey, rule, user.ID); ok {
			return FeatureDecision{Experiment: rule, Variation: &v, Source: SourceRollout}, true
		}
		// Audience passed but traffic excluded the user: fall through to the
		// everyone-else rule, skipping the remaining targeted rules.
		break
	}

	everyoneElse := rollout.Rules[len(rollout.Rules)-1]
	if !s.audience.MeetsConditions(everyoneElse, user.Attributes) {
		s.logger.Debug("user does not meet conditions for everyone-else rule",
			slog.String("user_id", user.ID),
			slog.String("rule_key", everyoneElse.Key))
		return FeatureDecision{}, false
	}
	if v, ok := s.bucketer.Bucket(bucketingKey, everyoneElse, user.ID); ok {
		return FeatureDecision{Experiment: everyoneElse, Variation: &v, Source: SourceRollout}, true
	}
	return FeatureDecision{}, false
}
