package profilestore

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is a process-local profile store. It is safe for concurrent use and
// useful for tests and single-instance hosts; profiles do not survive a
// restart.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]map[string]any
}

// NewMemory creates an empty in-memory profile store.
func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]map[string]any)}
}

// Lookup returns the stored profile for the user, or nil when none exists.
// The returned map is a deep copy; callers may mutate it freely.
func (m *Memory) Lookup(ctx context.Context, userID string) (map[string]any, error) {
	m.mu.RLock()
	profile, ok := m.profiles[userID]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return deepCopy(profile), nil
}

// Save stores a deep copy of the profile, replacing any previous one for the
// same user.
func (m *Memory) Save(ctx context.Context, profile map[string]any) error {
	userID, err := profileUserID(profile)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.profiles[userID] = deepCopy(profile)
	m.mu.Unlock()
	return nil
}

// deepCopy round-trips the profile through JSON. Profiles are small and this
// keeps the copy faithful for arbitrarily nested maps.
func deepCopy(profile map[string]any) map[string]any {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
