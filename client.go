package splitkit

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/dmitrymomot/splitkit/pkg/decision"
	"github.com/dmitrymomot/splitkit/pkg/project"
)

// Client is the SDK facade: one immutable project configuration snapshot
// bound to a decision service. A Client is safe for concurrent use and is
// meant to be created once and shared.
type Client struct {
	id        string
	config    *project.Config
	decisions *decision.Service
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger   *slog.Logger
	profiles decision.UserProfileService
	bucketer decision.Bucketer
	audience decision.AudienceEvaluator
}

// WithLogger sets the logger for the client and its decision service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUserProfileService enables sticky bucketing backed by the given store.
func WithUserProfileService(ups decision.UserProfileService) Option {
	return func(o *clientOptions) {
		if ups != nil {
			o.profiles = ups
		}
	}
}

// WithBucketer replaces the default hash bucketer.
func WithBucketer(b decision.Bucketer) Option {
	return func(o *clientOptions) {
		if b != nil {
			o.bucketer = b
		}
	}
}

// WithAudienceEvaluator replaces the default audience evaluator.
func WithAudienceEvaluator(e decision.AudienceEvaluator) Option {
	return func(o *clientOptions) {
		if e != nil {
			o.audience = e
		}
	}
}

// New creates a Client from raw datafile JSON.
func New(datafile []byte, opts ...Option) (*Client, error) {
	cfg, err := project.NewConfig(datafile)
	if err != nil {
		return nil, err
	}

	options := &clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	id := uuid.NewString()
	logger := options.logger.With(slog.String("sdk_client_id", id))

	decisionOpts := []decision.Option{decision.WithLogger(logger)}
	if options.profiles != nil {
		decisionOpts = append(decisionOpts, decision.WithUserProfileService(options.profiles))
	}
	if options.bucketer != nil {
		decisionOpts = append(decisionOpts, decision.WithBucketer(options.bucketer))
	}
	if options.audience != nil {
		decisionOpts = append(decisionOpts, decision.WithAudienceEvaluator(options.audience))
	}

	return &Client{
		id:        id,
		config:    cfg,
		decisions: decision.NewService(decisionOpts...),
		logger:    logger,
	}, nil
}

// NewFromFile creates a Client from a datafile on disk.
func NewFromFile(path string, opts ...Option) (*Client, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadDatafile, err)
	}
	return New(raw, opts...)
}

// Config returns the loaded project configuration snapshot.
func (c *Client) Config() *project.Config {
	return c.config
}

// GetVariation resolves the variation of the experiment for the user. A nil
// variation without an error means the experiment was evaluated and decided
// nothing for this user.
func (c *Client) GetVariation(ctx context.Context, experimentKey string, user decision.UserContext) (*project.Variation, error) {
	experiment, err := c.config.ExperimentByKey(experimentKey)
	if err != nil {
		return nil, err
	}
	return c.decisions.GetVariation(ctx, c.config, experiment, user), nil
}

// GetFeatureDecision resolves the feature flag for the user, reporting which
// experiment or rollout rule produced the decision.
func (c *Client) GetFeatureDecision(ctx context.Context, featureKey string, user decision.UserContext) (decision.FeatureDecision, error) {
	flag, err := c.config.FeatureByKey(featureKey)
	if err != nil {
		return decision.FeatureDecision{}, err
	}
	return c.decisions.GetVariationForFeature(ctx, c.config, flag, user), nil
}

// IsFeatureEnabled reports whether the feature is enabled for the user: the
// user must land in a variation and that variation must have the feature
// toggled on.
func (c *Client) IsFeatureEnabled(ctx context.Context, featureKey string, user decision.UserContext) (bool, error) {
	d, err := c.GetFeatureDecision(ctx, featureKey, user)
	if err != nil {
		return false, err
	}
	return d.Variation != nil && d.Variation.FeatureEnabled, nil
}

// GetForcedVariation returns the forced variation for the user and
// experiment key, or nil when none is set.
func (c *Client) GetForcedVariation(experimentKey, userID string) *project.Variation {
	return c.decisions.GetForcedVariation(c.config, experimentKey, userID)
}

// SetForcedVariation forces the user into the given variation of the
// experiment, overriding every other decision layer. It reports whether the
// override was recorded.
func (c *Client) SetForcedVariation(experimentKey, userID, variationKey string) bool {
	return c.decisions.SetForcedVariation(c.config, experimentKey, userID, variationKey)
}

// RemoveForcedVariation clears a previously set override.
func (c *Client) RemoveForcedVariation(experimentKey, userID string) bool {
	return c.decisions.RemoveForcedVariation(c.config, experimentKey, userID)
}
