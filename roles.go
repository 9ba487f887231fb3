package authgate

// Role is a member of the closed role enumeration. Values outside the
// enumeration are dropped at parse time rather than carried along.
type Role string

const (
	// RoleAdmin grants access to admin-gated views.
	RoleAdmin Role = "admin"
	// RoleModerator grants access to moderation views.
	RoleModerator Role = "moderator"
	// RoleUser is the baseline authenticated role.
	RoleUser Role = "user"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleModerator,
		RoleUser,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// RoleSet is the set of roles held by a single user identity. The empty
// set is the least-privilege default.
type RoleSet []Role

// Has checks if the set contains a specific role
func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the set carries the admin role.
func (rs RoleSet) IsAdmin() bool {
	return rs.Has(RoleAdmin)
}

// IsModerator reports whether the set carries the moderator role.
func (rs RoleSet) IsModerator() bool {
	return rs.Has(RoleModerator)
}
