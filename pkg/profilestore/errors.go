package profilestore

import "errors"

// Predefined errors for the profilestore package.
var (
	// ErrInvalidProfile indicates the profile representation is missing a
	// usable user id and cannot be keyed for storage.
	ErrInvalidProfile = errors.New("profile has no user id")

	// ErrLookupFailed indicates the backing store failed while reading a
	// profile.
	ErrLookupFailed = errors.New("profile lookup failed")

	// ErrSaveFailed indicates the backing store failed while writing a
	// profile.
	ErrSaveFailed = errors.New("profile save failed")
)

// profileUserID extracts the storage key from a profile representation.
func profileUserID(profile map[string]any) (string, error) {
	userID, ok := profile["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidProfile
	}
	return userID, nil
}
