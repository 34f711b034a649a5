// Package common contains shared constants and sentinel errors used across
// the ulasFleet client components.
package common

const (
	// AuthorizationHeader carries the bearer token on authenticated requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is prepended to the raw token in the authorization header.
	BearerPrefix = "Bearer "
)

// Keys in the durable, session-shared credential store.
const (
	// CredentialKey holds the serialized credential. It is the single key
	// every session rehydrates its auth state from.
	CredentialKey = "credential"

	// FabPositionKey holds the floating-button position persisted by the UI.
	// It is not part of the auth contract but is wiped on sign-out.
	FabPositionKey = "fab_position"
)
