package session

import "sync"

// Route identifies a dashboard screen as far as the session layer cares:
// the unauthenticated-only login screen and everything behind it.
type Route string

const (
	// RouteLogin is the unauthenticated landing route.
	RouteLogin Route = "/login"

	// RouteDashboard is the authenticated landing route.
	RouteDashboard Route = "/dashboard"
)

// requiresAuth reports whether the route is behind the login wall.
func requiresAuth(r Route) bool {
	return r != RouteLogin
}

// Navigator abstracts the screen the session currently shows. The REPL
// shell provides one; tests use MemoryNavigator.
type Navigator interface {
	Current() Route
	NavigateTo(r Route)
}

// MemoryNavigator is a mutex-guarded Navigator starting at the login route.
type MemoryNavigator struct {
	mu    sync.Mutex
	route Route
}

func NewMemoryNavigator() *MemoryNavigator {
	return &MemoryNavigator{route: RouteLogin}
}

func (n *MemoryNavigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

func (n *MemoryNavigator) NavigateTo(r Route) {
	n.mu.Lock()
	n.route = r
	n.mu.Unlock()
}
