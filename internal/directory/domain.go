// Package directory resolves a verified email address to its authoritative
// role by probing the identity stores in a fixed priority order.
package directory

// Role determines which part of the portal a principal may enter.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleDeptAdmin  Role = "dept_admin"
	RoleFaculty    Role = "faculty"
	RoleStudent    Role = "student"
)

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleDeptAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// Assignment is the resolved identity for an email: which store owns it,
// under which role, and the attributes carried into the session.
type Assignment struct {
	Role        Role
	ID          int64
	Email       string
	DisplayName string
	RollNumber  string // students only
}

// FacultyRecord mirrors a row of the faculty store.
type FacultyRecord struct {
	ID           int64
	EmployeeID   string
	FullName     string
	Email        string
	IsDeptAdmin  bool
	PasswordHash string
}

// SuperAdminRecord mirrors a row of the super admin store.
type SuperAdminRecord struct {
	ID           int64
	AdminID      string
	FullName     string
	Email        string
	PasswordHash string
}

// StudentRecord mirrors a row of the student store.
type StudentRecord struct {
	ID           int64
	FullName     string
	Email        string
	RollNumber   string
	PasswordHash string
}
