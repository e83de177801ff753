// Package gate decides whether the stored principal may open a role-scoped route.
// It trusts any non-empty token whose role matches; tokens are verified by the API, not here.
package gate

import (
	"strings"

	"github.com/campuscatalyst/portal/pkg/schema"
)

const (
	LoginPath    = "/login"
	NotFoundPath = "/"
)

// Principals is the part of the credential store the gate reads.
type Principals interface {
	Load() (schema.Principal, bool, error)
}

// Decision is the outcome of a navigation. Redirect is set when Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

func allow() Decision               { return Decision{Allowed: true} }
func redirect(path string) Decision { return Decision{Redirect: path} }

// Gate reads the credential store on every call and never caches.
type Gate struct {
	creds Principals
}

func New(creds Principals) *Gate {
	return &Gate{creds: creds}
}

// Authorize allows the navigation iff a principal with a token is stored and its role is required.
func (g *Gate) Authorize(required schema.Role) Decision {
	p, ok, err := g.creds.Load()
	if err != nil || !ok || p.Token == "" || p.Role != required {
		return redirect(LoginPath)
	}
	return allow()
}

// Navigate authorizes path against the route table. Public routes are always
// allowed and unknown routes redirect to NotFoundPath.
func (g *Gate) Navigate(path string) Decision {
	path = normalize(path)
	if publicRoutes[path] {
		return allow()
	}
	role, ok := RequiredRole(path)
	if !ok {
		return redirect(NotFoundPath)
	}
	return g.Authorize(role)
}

// HomeFor is the route a role lands on after signing in.
func HomeFor(role schema.Role) string {
	if !role.Valid() {
		return LoginPath
	}
	return "/" + string(role) + "/dashboard"
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
