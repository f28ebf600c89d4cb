package user

type Role string

const (
	RoleSuperAdmin Role = "super_admin" // Platform administration, barred from attendance self-service
	RoleManager    Role = "manager"     // Can act on behalf of employees
	RoleEmployee   Role = "employee"    // Regular employee
)

// ParseRole maps a claim value onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSuperAdmin, RoleManager, RoleEmployee:
		return Role(s), true
	}
	return "", false
}

// IsManager checks if the role can act on behalf of other employees.
func (r Role) IsManager() bool {
	return r == RoleManager || r == RoleSuperAdmin
}
