package gate

import (
	"sort"

	"github.com/campuscatalyst/portal/pkg/schema"
)

var publicRoutes = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
}

var routes = map[string]schema.Role{
	"/student/dashboard":       schema.RoleStudent,
	"/student/jobs":            schema.RoleStudent,
	"/student/profile":         schema.RoleStudent,
	"/student/resume-analyzer": schema.RoleStudent,
	"/student/applications":    schema.RoleStudent,
	"/recruiter/dashboard":     schema.RoleRecruiter,
	"/recruiter/jobs":          schema.RoleRecruiter,
	"/recruiter/post-job":      schema.RoleRecruiter,
	"/recruiter/applicants":    schema.RoleRecruiter,
	"/recruiter/profile":       schema.RoleRecruiter,
	"/placement/dashboard":     schema.RolePlacement,
	"/placement/students":      schema.RolePlacement,
	"/placement/recruiters":    schema.RolePlacement,
	"/placement/jobs":          schema.RolePlacement,
	"/placement/drives":        schema.RolePlacement,
	"/placement/reports":       schema.RolePlacement,
}

// Routes lists the protected routes of role, sorted.
func Routes(role schema.Role) []string {
	var out []string
	for path, r := range routes {
		if r == role {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// RequiredRole returns the role a protected route needs.
func RequiredRole(path string) (schema.Role, bool) {
	r, ok := routes[normalize(path)]
	return r, ok
}
