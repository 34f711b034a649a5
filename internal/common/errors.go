package common

import "errors"

// Sentinel errors shared between the client layers. Callers should match
// them with errors.Is.
var (
	// ErrNotLoggedIn is returned by operations that require an active
	// session when no valid credential is present.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidRole marks an identity whose role is outside the closed
	// {user, admin} set.
	ErrInvalidRole = errors.New("invalid role")
)
