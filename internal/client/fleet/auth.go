package fleet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
	"github.com/mehmet-raif33/ulasfleet/internal/client/bus"
	"github.com/mehmet-raif33/ulasfleet/internal/client/token"
	"github.com/mehmet-raif33/ulasfleet/internal/logging"
)

// SessionManager is the slice of the token manager the auth service needs:
// installing a fresh session after login and tearing it down on logout.
type SessionManager interface {
	SetSession(ctx context.Context, cred token.Credential, identity token.Identity) error
	Logout(ctx context.Context) error
}

// AuthService drives the /auth endpoints and keeps the local session and
// the cross-session bus in step with their outcomes.
type AuthService struct {
	client   *api.Client
	sessions SessionManager
	bus      bus.Bus
	log      logging.Logger
	now      func() time.Time
}

func NewAuthService(c *api.Client, sessions SessionManager, b bus.Bus, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthService{client: c, sessions: sessions, bus: b, log: log, now: time.Now}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is a bare record, not the usual envelope.
type loginResponse struct {
	Message string         `json:"message"`
	User    token.Identity `json:"user"`
	Token   string         `json:"token"`
}

type profileResponse struct {
	User token.Identity `json:"user"`
}

// Login exchanges credentials for a bearer token, installs the session and
// announces it to the other sessions. The announce is best effort; a
// delivery failure never rolls back a successful login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*token.Identity, error) {
	env, err := s.client.Do(ctx, api.RequestDescriptor{
		Endpoint: "/auth/login",
		Method:   http.MethodPost,
		Body:     loginRequest{Username: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	res, err := api.Decode[loginResponse](env)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("login reply carried no token")
	}

	cred := token.NewCredential(res.Token, s.now())
	if err := s.sessions.SetSession(ctx, cred, res.User); err != nil {
		return nil, fmt.Errorf("installing session: %w", err)
	}
	if err := s.bus.Publish(ctx, bus.TypeLogin, res.User); err != nil {
		s.log.Warn(ctx, "login broadcast failed", "error", err)
	}

	s.log.Info(ctx, "logged in", "email", res.User.Email, "role", string(res.User.Role))
	return &res.User, nil
}

// Profile fetches the authenticated user's record. The token manager also
// calls this during restoration to recover the identity half of the
// session.
func (s *AuthService) Profile(ctx context.Context) (*token.Identity, error) {
	env, err := s.client.DoAuthed(ctx, api.RequestDescriptor{Endpoint: "/auth/profile"})
	if err != nil {
		return nil, err
	}
	res, err := api.Decode[profileResponse](env)
	if err != nil {
		return nil, err
	}
	return &res.User, nil
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword rotates the account password. The current session stays
// valid; the service does not reissue the token.
func (s *AuthService) ChangePassword(ctx context.Context, old, next string) error {
	_, err := s.client.DoAuthed(ctx, api.RequestDescriptor{
		Endpoint: "/auth/change-password",
		Method:   http.MethodPut,
		Body:     changePasswordRequest{OldPassword: old, NewPassword: next},
	})
	return err
}

// Logout tears the local session down and tells the other sessions to do
// the same. Both halves run even if one fails; the first error wins.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.sessions.Logout(ctx)
	if pubErr := s.bus.Publish(ctx, bus.TypeLogout, nil); pubErr != nil {
		s.log.Warn(ctx, "logout broadcast failed", "error", pubErr)
		if err == nil {
			err = pubErr
		}
	}
	return err
}
