package profilestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "splitkit:profile"

// Redis persists profiles in Redis as JSON strings under
// "<prefix>:<userID>" keys. The client's lifecycle belongs to the host.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix overrides the default key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithTTL sets an expiry on stored profiles. Zero (the default) keeps them
// forever; the TTL is refreshed on every save.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis creates a profile store on top of an existing Redis client.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	store := &Redis{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Lookup returns the stored profile for the user, or nil when none exists.
func (r *Redis) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}

	var profile map[string]any
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}
	return profile, nil
}

// Save stores the profile, replacing any previous one for the same user.
func (r *Redis) Save(ctx context.Context, profile map[string]any) error {
	userID, err := profileUserID(profile)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if err := r.client.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

func (r *Redis) key(userID string) string {
	return r.prefix + ":" + userID
}
