package bucketer

import (
	"log/slog"
	"math"

	"github.com/twmb/murmur3"

	"github.com/dmitrymomot/splitkit/pkg/project"
)

const (
	// hashSeed is fixed so every SDK implementation hashing the same inputs
	// lands on the same bucket.
	hashSeed uint32 = 1

	// maxBuckets is the number of slots the hash space is scaled down to.
	// Traffic allocation ranges are expressed in the same units.
	maxBuckets = 10000
)

// Bucketer maps bucketing keys onto variations through the traffic
// allocation of a targeting rule.
type Bucketer struct {
	logger *slog.Logger
}

// Option configures a Bucketer.
type Option func(*Bucketer)

// WithLogger sets the logger used for bucketing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bucketer) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Bucketer.
func New(opts ...Option) *Bucketer {
	b := &Bucketer{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bucket assigns the bucketing key to a variation of the given rule, or
// reports that the user falls outside the rule's allocated traffic. The
// user id is only used for diagnostics.
func (b *Bucketer) Bucket(bucketingKey string, rule project.Experiment, userID string) (project.Variation, bool) {
	value := bucketValue(bucketingKey + rule.ID)
	b.logger.Debug("assigned bucket value",
		slog.String("user_id", userID),
		slog.String("rule_key", rule.Key),
		slog.Int("bucket_value", value))

	entityID := ""
	for _, r := range rule.TrafficAllocation {
		if value < r.EndOfRange {
			entityID = r.EntityID
			break
		}
	}
	if entityID == "" {
		b.logger.Debug("user is not in any traffic range",
			slog.String("user_id", userID),
			slog.String("rule_key", rule.Key))
		return project.Variation{}, false
	}

	variation, err := rule.VariationByID(entityID)
	if err != nil {
		b.logger.Warn("traffic range references unknown variation",
			slog.String("rule_key", rule.Key),
			slog.String("entity_id", entityID))
		return project.Variation{}, false
	}
	return variation, true
}

// bucketValue scales the 32-bit hash of the key down to the bucket space.
func bucketValue(key string) int {
	hash := murmur3.SeedSum32(hashSeed, []byte(key))
	ratio := float64(hash) / float64(math.MaxUint32+1)
	return int(ratio * maxBuckets)
}
