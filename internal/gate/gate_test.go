package gate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscatalyst/portal/internal/credentials"
	"github.com/campuscatalyst/portal/internal/gate"
	"github.com/campuscatalyst/portal/pkg/schema"
)

type brokenStore struct{}

func (brokenStore) Load() (schema.Principal, bool, error) {
	return schema.Principal{}, false, errors.New("disk on fire")
}

func newGate() (*gate.Gate, *credentials.Store) {
	creds := credentials.New(credentials.NewMemorySlot(), credentials.NewMemorySlot())
	return gate.New(creds), creds
}

func TestAuthorizeMatchingRole(t *testing.T) {
	g, creds := newGate()
	require.NoError(t, creds.Save(schema.Principal{Token: "tok1", Role: schema.RoleRecruiter}, false))

	assert.Equal(t, gate.Decision{Allowed: true}, g.Authorize(schema.RoleRecruiter))
	assert.Equal(t, gate.Decision{Redirect: gate.LoginPath}, g.Authorize(schema.RolePlacement))
}

func TestAuthorizeWithoutPrincipal(t *testing.T) {
	g, _ := newGate()
	for _, role := range schema.Roles() {
		d := g.Authorize(role)
		assert.False(t, d.Allowed)
		assert.Equal(t, "/login", d.Redirect)
	}
}

func TestAuthorizeStorageError(t *testing.T) {
	g := gate.New(brokenStore{})
	assert.Equal(t, gate.LoginPath, g.Authorize(schema.RoleStudent).Redirect)
}

// The decision follows the store between calls: logging out in another tab
// takes effect on the very next navigation.
func TestAuthorizeIsNotCached(t *testing.T) {
	g, creds := newGate()
	require.NoError(t, creds.Save(schema.Principal{Token: "tok1", Role: schema.RoleStudent}, true))
	assert.True(t, g.Authorize(schema.RoleStudent).Allowed)

	require.NoError(t, creds.Clear())
	assert.False(t, g.Authorize(schema.RoleStudent).Allowed)

	require.NoError(t, creds.Save(schema.Principal{Token: "tok2", Role: schema.RolePlacement}, false))
	assert.False(t, g.Authorize(schema.RoleStudent).Allowed)
	assert.True(t, g.Authorize(schema.RolePlacement).Allowed)
}

// Only the role survives a browser restart, which is not enough to pass.
func TestRoleWithoutTokenIsDenied(t *testing.T) {
	durable := credentials.NewMemorySlot()
	require.NoError(t, durable.Set(credentials.RoleKey, "recruiter"))
	g := gate.New(credentials.New(durable, credentials.NewMemorySlot()))

	assert.Equal(t, gate.LoginPath, g.Authorize(schema.RoleRecruiter).Redirect)
}

func TestNavigate(t *testing.T) {
	g, creds := newGate()
	require.NoError(t, creds.Save(schema.Principal{Token: "tok1", Role: schema.RolePlacement}, true))

	tests := []struct {
		path string
		want gate.Decision
	}{
		{"/", gate.Decision{Allowed: true}},
		{"/login", gate.Decision{Allowed: true}},
		{"/register", gate.Decision{Allowed: true}},
		{"/placement/drives", gate.Decision{Allowed: true}},
		{"/placement/reports/", gate.Decision{Allowed: true}},
		{"placement/students?page=2", gate.Decision{Allowed: true}},
		{"/student/jobs", gate.Decision{Redirect: gate.LoginPath}},
		{"/recruiter/post-job", gate.Decision{Redirect: gate.LoginPath}},
		{"/admin", gate.Decision{Redirect: gate.NotFoundPath}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Navigate(tt.path))
		})
	}
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, "/student/dashboard", gate.HomeFor(schema.RoleStudent))
	assert.Equal(t, "/recruiter/dashboard", gate.HomeFor(schema.RoleRecruiter))
	assert.Equal(t, "/placement/dashboard", gate.HomeFor(schema.RolePlacement))
	assert.Equal(t, "/login", gate.HomeFor(schema.Role("admin")))
}

func TestRoutesCoverEveryHome(t *testing.T) {
	for _, role := range schema.Roles() {
		assert.Contains(t, gate.Routes(role), gate.HomeFor(role))
		r, ok := gate.RequiredRole(gate.HomeFor(role))
		assert.True(t, ok)
		assert.Equal(t, role, r)
	}
	assert.Len(t, gate.Routes(schema.RoleStudent), 5)
	assert.Len(t, gate.Routes(schema.RoleRecruiter), 5)
	assert.Len(t, gate.Routes(schema.RolePlacement), 6)
}
