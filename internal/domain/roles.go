package domain

// Role is the coarse permission level stored on a profile.
type Role string

const (
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) atLeastAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanViewAdminDashboard gates the admin area and platform stats.
func (r Role) CanViewAdminDashboard() bool { return r.atLeastAdmin() }

// CanApproveLibrary gates approving or rejecting library items.
func (r Role) CanApproveLibrary() bool { return r.atLeastAdmin() }

// CanChangeRoles gates changing another user's role.
func (r Role) CanChangeRoles() bool { return r == RoleSuperAdmin }

// CanDeleteLibraryItem gates removing items from the shared library.
func (r Role) CanDeleteLibraryItem() bool { return r == RoleSuperAdmin }

// CanManageUsers gates destructive user administration.
func (r Role) CanManageUsers() bool { return r == RoleSuperAdmin }
