package identity

import (
	"context"
	"errors"
)

var ErrProfileNotFound = errors.New("identity: profile not found")

// Profile is the public part of a user account.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"imageUrl"`
}

// Directory resolves user ids to profiles.
type Directory interface {
	Profile(ctx context.Context, userID string) (Profile, error)
}

// Anonymous is the placeholder shown when a profile cannot be resolved.
func Anonymous(userID string) Profile {
	return Profile{
		ID:       userID,
		Name:     "Anonymous",
		Username: "anonymous",
	}
}

// AnonymousDirectory answers every lookup with the placeholder. Used when no
// provider is configured.
type AnonymousDirectory struct{}

func (AnonymousDirectory) Profile(_ context.Context, userID string) (Profile, error) {
	return Anonymous(userID), nil
}
