package cli

import (
	"context"
	"fmt"

	"github.com/mehmet-raif33/ulasfleet/internal/client/session"
	"github.com/mehmet-raif33/ulasfleet/internal/common"
)

// requireLogin short-circuits authenticated commands before they reach the
// network, with a friendlier message than the transport error.
func (a *App) requireLogin() error {
	if a.isLoggedIn() {
		return nil
	}
	fmt.Fprintln(a.out, "Not logged in")
	return common.ErrNotLoggedIn
}

// Login prompts for credentials and establishes the session. On success the
// auth service has already persisted the credential and announced the login
// to other sessions; here only this shell's view is updated.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	identity, err := a.auth.Login(ctx, email, string(pw))
	if err != nil {
		fmt.Fprintln(a.out, "Login failed:", err)
		return err
	}

	a.state.SetIdentity(*identity)
	a.nav.NavigateTo(session.RouteDashboard)
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", identity.Name, identity.Role)
	return nil
}

// Logout tears down the session everywhere and returns to the login prompt.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	a.state.Clear()
	a.nav.NavigateTo(session.RouteLogin)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Profile shows the authenticated user's account record.
func (a *App) Profile(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	identity, err := a.auth.Profile(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Profile failed:", err)
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> role=%s id=%s\n", identity.Name, identity.Email, identity.Role, identity.ID)
	return nil
}

// ChangePassword prompts for the current and new password and rotates the
// account secret. The session stays signed in.
func (a *App) ChangePassword(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	current, err := GetPassword("Current password", a.out)
	if err != nil {
		return err
	}
	next, err := GetPassword("New password", a.out)
	if err != nil {
		return err
	}

	if err := a.auth.ChangePassword(ctx, string(current), string(next)); err != nil {
		fmt.Fprintln(a.out, "Password change failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}
