package decision

import "log/slog"

// Option is a functional option for configuring a Service.
type Option func(*Service)

// WithBucketer replaces the default hash bucketer.
func WithBucketer(b Bucketer) Option {
	return func(s *Service) {
		if b != nil {
			s.bucketer = b
		}
	}
}

// WithAudienceEvaluator replaces the default condition evaluator.
func WithAudienceEvaluator(e AudienceEvaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.audience = e
		}
	}
}

// WithUserProfileService enables sticky bucketing backed by the given store.
// Without it, decisions are recomputed on every call.
func WithUserProfileService(ups UserProfileService) Option {
	return func(s *Service) {
		if ups != nil {
			s.profiles = ups
		}
	}
}

// WithLogger sets the logger for decision diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
