package gate

import (
	"strings"

	"github.com/campusgate/campusgate/internal/directory"
)

// Rule restricts a URL path prefix to a set of roles.
type Rule struct {
	Prefix string
	Roles  []directory.Role
}

// Allows reports whether the role may enter the rule's prefix.
func (r Rule) Allows(role directory.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// DefaultRules is the portal's static route-access table. Order matters:
// the first matching prefix decides. Department admins double as faculty,
// so the faculty area admits both.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/admin/super-admin", Roles: []directory.Role{directory.RoleSuperAdmin}},
		{Prefix: "/admin/dept-admin", Roles: []directory.Role{directory.RoleDeptAdmin}},
		{Prefix: "/faculty", Roles: []directory.Role{directory.RoleFaculty, directory.RoleDeptAdmin}},
		{Prefix: "/student", Roles: []directory.Role{directory.RoleStudent}},
	}
}

// homePaths maps each role to its dashboard, the landing target for "/".
var homePaths = map[directory.Role]string{
	directory.RoleSuperAdmin: "/admin/super-admin/dashboard",
	directory.RoleDeptAdmin:  "/admin/dept-admin/dashboard",
	directory.RoleFaculty:    "/faculty/dashboard",
	directory.RoleStudent:    "/student/dashboard",
}

// HomePath returns the dashboard path for a role.
func HomePath(role directory.Role) (string, bool) {
	path, ok := homePaths[role]
	return path, ok
}

// protectedPrefixes lists the areas the gate guards; everything else
// (auth pages, static assets, health, metrics) passes through untouched.
var protectedPrefixes = []string{"/admin", "/faculty", "/student"}

// Protected reports whether the gate must evaluate this path.
func Protected(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range protectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func matchRule(rules []Rule, path string) (Rule, bool) {
	for _, rule := range rules {
		if path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/") {
			return rule, true
		}
	}
	return Rule{}, false
}
