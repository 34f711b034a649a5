package token

import (
	"fmt"

	"github.com/mehmet-raif33/ulasfleet/internal/common"
)

// Role is the closed set of dashboard roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Validate rejects roles outside the closed set.
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %q", common.ErrInvalidRole, string(r))
	}
}

// Identity is the authenticated user's profile, derived from the credential
// via a profile fetch and cached per session. It is invalidated whenever the
// credential is cleared.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}
