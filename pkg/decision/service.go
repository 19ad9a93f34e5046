package decision

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/splitkit/pkg/bucketer"
	"github.com/dmitrymomot/splitkit/pkg/project"
)

// Service runs the decision pipeline. One Service is meant to be shared by
// all goroutines of the hosting application; see the package documentation
// for the concurrency contract.
type Service struct {
	bucketer Bucketer
	audience AudienceEvaluator
	profiles UserProfileService
	logger   *slog.Logger

	forced forcedVariations
}

// NewService creates a decision Service. Without options it uses the
// deterministic hash bucketer, evaluates the audience conditions attached to
// each rule, and performs no sticky-bucketing persistence.
func NewService(opts ...Option) *Service {
	s := &Service{
		audience: conditionEvaluator{},
		logger:   slog.Default(),
		forced:   newForcedVariations(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bucketer == nil {
		s.bucketer = bucketer.New(bucketer.WithLogger(s.logger))
	}
	return s
}

// GetVariation resolves the variation of an experiment for a user, applying
// the full precedence chain: running check, forced variation, whitelist,
// sticky profile, audience targeting, hash bucketing. A nil result means "no
// decision"; the call never fails.
func (s *Service) GetVariation(ctx context.Context, cfg Config, experiment project.Experiment, user UserContext) *project.Variation {
	if !experiment.IsRunning() {
		s.logger.Info("experiment is not running",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", user.ID))
		return nil
	}

	if v := s.forcedVariation(experiment, user.ID); v != nil {
		s.logger.Debug("using forced variation",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", user.ID),
			slog.String("variation_key", v.Key))
		return v
	}

	if v := s.whitelistedVariation(experiment, user.ID); v != nil {
		s.logger.Info("user is whitelisted into variation",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", user.ID),
			slog.String("variation_key", v.Key))
		return v
	}

	// A fresh profile is built either way; a stored one replaces it when the
	// profile store has a valid record for this user.
	profile := UserProfile{UserID: user.ID, ExperimentBucketMap: map[string]string{}}
	if s.profiles != nil {
		profile = s.lookupProfile(ctx, user.ID)
		if v := s.storedVariation(experiment, profile); v != nil {
			s.logger.Info("returning sticky variation from user profile",
				slog.String("experiment_key", experiment.Key),
				slog.String("user_id", user.ID),
				slog.String("variation_key", v.Key))
			return v
		}
	}

	if !s.audience.MeetsConditions(experiment, user.Attributes) {
		s.logger.Info("user does not meet audience conditions",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", user.ID))
		return nil
	}

	variation, ok := s.bucketer.Bucket(s.bucketingKey(user), experiment, user.ID)
	if !ok {
		return nil
	}

	if s.profiles != nil {
		s.saveProfile(ctx, profile, experiment.ID, variation.ID)
	}
	return &variation
}

// forcedVariation resolves a forced-variation entry against the experiment.
// A recorded variation id that no longer exists is treated as absent.
func (s *Service) forcedVariation(experiment project.Experiment, userID string) *project.Variation {
	variationID, ok := s.forced.get(userID, experiment.ID)
	if !ok {
		return nil
	}
	variation, err := experiment.VariationByID(variationID)
	if err != nil {
		s.logger.Warn("forced variation no longer exists in configuration",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", userID),
			slog.String("variation_id", variationID))
		return nil
	}
	return &variation
}

// whitelistedVariation resolves a datafile whitelist entry. An entry naming
// an unknown variation key is treated as absent, not as an error.
func (s *Service) whitelistedVariation(experiment project.Experiment, userID string) *project.Variation {
	variationKey, ok := experiment.Whitelist[userID]
	if !ok {
		return nil
	}
	variation, err := experiment.VariationByKey(variationKey)
	if err != nil {
		s.logger.Warn("whitelist entry does not resolve to a variation",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", userID),
			slog.String("variation_key", variationKey))
		return nil
	}
	return &variation
}

// bucketingKey returns the key fed to the hash bucketer: the dedicated
// bucketing-id attribute when it carries a string, the user id otherwise.
func (s *Service) bucketingKey(user UserContext) string {
	raw, ok := user.Attributes[BucketingIDAttribute]
	if !ok {
		return user.ID
	}
	key, ok := raw.(string)
	if !ok {
		s.logger.Warn("bucketing id attribute is not a string, using user id",
			slog.String("user_id", user.ID))
		return user.ID
	}
	return key
}

// conditionEvaluator is the default AudienceEvaluator: it evaluates the
// condition tree resolved onto the rule at datafile load time.
type conditionEvaluator struct{}

func (conditionEvaluator) MeetsConditions(rule project.Experiment, attrs map[string]any) bool {
	return rule.Audience.Evaluate(attrs)
}
