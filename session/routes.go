package session

import (
	"slices"
	"strings"
)

// Paths the application can navigate to.
const (
	PathRoot            = "/"
	PathLogin           = "/login"
	PathRegister        = "/register"
	PathDashboard       = "/dashboard"
	PathTransactions    = "/transactions"
	PathNewTransaction  = "/transactions/new"
	PathEditTransaction = "/transactions/edit/"
)

// PublicPaths are reachable without a session.
var PublicPaths = []string{PathLogin, PathRegister}

// Redirect returns where a request for path should end up. It is pure and
// idempotent: Redirect(a, Redirect(a, p, pub), pub) == Redirect(a, p, pub).
func Redirect(authenticated bool, path string, public []string) string {
	switch {
	case path == PathRoot || path == "":
		if authenticated {
			return PathDashboard
		}
		return PathLogin
	case slices.Contains(public, path):
		if authenticated {
			return PathDashboard
		}
		return path
	case !authenticated:
		return PathLogin
	}
	return path
}

// Route identifies a screen.
type Route int

const (
	RouteUnknown Route = iota
	RouteLogin
	RouteRegister
	RouteDashboard
	RouteTransactions
	RouteNewTransaction
	RouteEditTransaction
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteRegister:
		return "register"
	case RouteDashboard:
		return "dashboard"
	case RouteTransactions:
		return "transactions"
	case RouteNewTransaction:
		return "new transaction"
	case RouteEditTransaction:
		return "edit transaction"
	}
	return "unknown"
}

// MatchRoute resolves a path to a route. For RouteEditTransaction the
// transaction id is returned as well.
func MatchRoute(path string) (Route, string) {
	switch path {
	case PathLogin:
		return RouteLogin, ""
	case PathRegister:
		return RouteRegister, ""
	case PathDashboard:
		return RouteDashboard, ""
	case PathTransactions:
		return RouteTransactions, ""
	case PathNewTransaction:
		return RouteNewTransaction, ""
	}

	if id, ok := strings.CutPrefix(path, PathEditTransaction); ok && id != "" && !strings.Contains(id, "/") {
		return RouteEditTransaction, id
	}
	return RouteUnknown, ""
}

// EditPath returns the edit path for a transaction id.
func EditPath(id string) string { return PathEditTransaction + id }

// Guard resolves paths against a live session.
type Guard struct {
	store  *Store
	public []string
}

// NewGuard returns a Guard. A nil public list means PublicPaths.
func NewGuard(store *Store, public []string) *Guard {
	if public == nil {
		public = PublicPaths
	}
	return &Guard{store: store, public: public}
}

// Resolve returns the path that should be shown for a request to path.
func (g *Guard) Resolve(path string) string {
	return Redirect(g.store.IsAuthenticated(), path, g.public)
}
