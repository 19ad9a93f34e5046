package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

// Keys of the profile storage representation exchanged with a
// UserProfileService. The shape is stable across SDK implementations:
//
//	{"user_id": "u1", "experiment_bucket_map": {"exp1": {"variation_id": "v1"}}}
const (
	profileUserIDKey      = "user_id"
	profileBucketMapKey   = "experiment_bucket_map"
	profileVariationIDKey = "variation_id"
)

// UserProfile is the pipeline-internal sticky record of a user's past
// bucketing outcomes, keyed by experiment id.
type UserProfile struct {
	UserID              string
	ExperimentBucketMap map[string]string
}

// lookupProfile asks the profile store for the user's stored profile. Store
// errors, panics and malformed shapes all degrade to a fresh empty profile;
// nothing propagates past the bridge.
func (s *Service) lookupProfile(ctx context.Context, userID string) UserProfile {
	fresh := UserProfile{UserID: userID, ExperimentBucketMap: map[string]string{}}

	stored, err := s.callLookup(ctx, userID)
	if err != nil {
		s.logger.Warn("user profile lookup failed",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return fresh
	}
	if stored == nil {
		return fresh
	}

	profile, err := decodeProfile(stored)
	if err != nil {
		s.logger.Warn("ignoring malformed user profile",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return fresh
	}
	return profile
}

// storedVariation resolves the profile's recorded decision for the
// experiment. A recorded variation id that no longer exists in the
// configuration is stale and treated as absent so the user is re-bucketed.
func (s *Service) storedVariation(experiment project.Experiment, profile UserProfile) *project.Variation {
	variationID, ok := profile.ExperimentBucketMap[experiment.ID]
	if !ok {
		return nil
	}
	variation, err := experiment.VariationByID(variationID)
	if err != nil {
		s.logger.Warn("stored variation no longer exists, re-bucketing user",
			slog.String("experiment_key", experiment.Key),
			slog.String("user_id", profile.UserID),
			slog.String("variation_id", variationID))
		return nil
	}
	return &variation
}

// saveProfile merges a fresh bucketing decision into the profile and hands
// it to the store. Persistence is best-effort on a single attempt; failure
// never blocks the decision already made.
func (s *Service) saveProfile(ctx context.Context, profile UserProfile, experimentID, variationID string) {
	profile.ExperimentBucketMap[experimentID] = variationID

	if err := s.callSave(ctx, encodeProfile(profile)); err != nil {
		s.logger.Warn("failed to persist user profile",
			slog.String("user_id", profile.UserID),
			slog.Any("error", err))
	}
}

// callLookup and callSave isolate the host-supplied store: a panic inside it
// is converted into an error at the bridge so it cannot escape a decision
// call.

func (s *Service) callLookup(ctx context.Context, userID string) (stored map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			stored, err = nil, fmt.Errorf("profile store panic: %v", r)
		}
	}()
	return s.profiles.Lookup(ctx, userID)
}

func (s *Service) callSave(ctx context.Context, profile map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("profile store panic: %v", r)
		}
	}()
	return s.profiles.Save(ctx, profile)
}

// decodeProfile shape-validates a stored representation into a UserProfile.
func decodeProfile(stored map[string]any) (UserProfile, error) {
	userID, ok := stored[profileUserIDKey].(string)
	if !ok || userID == "" {
		return UserProfile{}, errors.Join(ErrMalformedProfile,
			errors.New("missing or non-string user_id"))
	}

	profile := UserProfile{UserID: userID, ExperimentBucketMap: map[string]string{}}

	rawBucketMap, ok := stored[profileBucketMapKey]
	if !ok || rawBucketMap == nil {
		return profile, nil
	}
	bucketMap, ok := rawBucketMap.(map[string]any)
	if !ok {
		return UserProfile{}, errors.Join(ErrMalformedProfile,
			errors.New("experiment_bucket_map is not a map"))
	}

	for experimentID, rawDecision := range bucketMap {
		decision, ok := rawDecision.(map[string]any)
		if !ok {
			return UserProfile{}, errors.Join(ErrMalformedProfile,
				fmt.Errorf("decision for experiment %q is not a map", experimentID))
		}
		variationID, ok := decision[profileVariationIDKey].(string)
		if !ok {
			return UserProfile{}, errors.Join(ErrMalformedProfile,
				fmt.Errorf("decision for experiment %q has no variation_id", experimentID))
		}
		profile.ExperimentBucketMap[experimentID] = variationID
	}
	return profile, nil
}

// encodeProfile renders a UserProfile into the storage representation.
func encodeProfile(profile UserProfile) map[string]any {
	bucketMap := make(map[string]any, len(profile.ExperimentBucketMap))
	for experimentID, variationID := range profile.ExperimentBucketMap {
		bucketMap[experimentID] = map[string]any{profileVariationIDKey: variationID}
	}
	return map[string]any{
		profileUserIDKey:    profile.UserID,
		profileBucketMapKey: bucketMap,
	}
}
