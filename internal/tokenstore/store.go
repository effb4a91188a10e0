package tokenstore

import "errors"

// ErrNotFound indicates no token is currently persisted.
var ErrNotFound = errors.New("token not found")

// Store persists exactly one opaque bearer token across process restarts.
// Only the session manager writes it.
type Store interface {
	// Load returns the persisted token, or ErrNotFound when absent.
	Load() (string, error)
	// Save replaces the persisted token.
	Save(token string) error
	// Delete removes the persisted token. Deleting an absent token is not
	// an error.
	Delete() error
}
