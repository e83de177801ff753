// Package schema defines the data structures shared by the portal client, CLI and API daemon.
package schema

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Role tags a principal with the part of the portal it may use.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RolePlacement Role = "placement"
)

// ErrUnknownRole is returned by ParseRole for anything outside the three portal roles.
var ErrUnknownRole = errors.New("unknown role")

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleStudent, RoleRecruiter, RolePlacement}
}

// ParseRole normalizes s and checks it against the known roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleStudent, RoleRecruiter, RolePlacement:
		return r, nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether r is exactly one of the portal roles.
func (r Role) Valid() bool {
	return slices.Contains(Roles(), r)
}

// Principal is the authenticated identity attached to the current client.
// The token is opaque to the client and is never validated locally.
type Principal struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Account is a registered user as the API daemon stores it.
// It lives in the reserved "_accounts" collection.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash,omitempty"`
	LastActive   time.Time `json:"last_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Activity is one entry of the placement dashboard's recent activity feed.
type Activity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

// DashboardStat is one tile of a dashboard.
type DashboardStat struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
}
