// Package profilestore provides ready-made user-profile stores for sticky
// bucketing.
//
// A profile store persists the decision pipeline's profile representation, a
// plain map keyed by user id, so a user keeps the variation they were first
// bucketed into across calls, processes and deployments. All stores here
// satisfy the pipeline's UserProfileService contract structurally:
//
//	Lookup(ctx context.Context, userID string) (map[string]any, error)
//	Save(ctx context.Context, profile map[string]any) error
//
// Lookup returns nil without an error when no profile exists for the user;
// the pipeline treats that as "never bucketed".
//
// Three implementations are provided:
//
//   - Memory: process-local, for tests and single-instance hosts.
//   - Redis: go-redis backed, JSON-serialized under a configurable key
//     prefix with an optional TTL. The natural choice for server fleets.
//   - Postgres: pgx backed, one upsert row per user with the profile stored
//     as JSONB.
//
// Connection management stays with the host: the Redis and Postgres stores
// take an already-connected client or pool.
//
//	store := profilestore.NewRedis(client,
//		profilestore.WithKeyPrefix("myapp:profiles"),
//		profilestore.WithTTL(30*24*time.Hour))
//	svc := decision.NewService(decision.WithUserProfileService(store))
package profilestore
