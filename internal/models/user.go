package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	// RoleOrgAdmin is scoped to a single ministry's own records.
	RoleOrgAdmin UserRole = "org_admin"
	// RoleAdmin sees every organization and reviews submissions.
	RoleAdmin UserRole = "admin"
	// RoleSuperAdmin additionally holds publish rights and user management.
	RoleSuperAdmin UserRole = "super_admin"
)

// Valid reports whether the role is one of the supported values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleOrgAdmin, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// Elevated reports whether the role sees all organizations.
func (r UserRole) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           string        `db:"id" json:"id"`
	Username     string        `db:"username" json:"username"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	FullName     string        `db:"full_name" json:"full_name"`
	Role         UserRole      `db:"role" json:"role"`
	OrgID        *string       `db:"org_id" json:"org_id,omitempty"`
	OrgName      *string       `db:"org_name" json:"org_name,omitempty"`
	Active       bool          `db:"active" json:"active"`
	LastLogin    *time.Time    `db:"last_login" json:"last_login,omitempty"`
	Permissions  PermissionSet `db:"permissions" json:"permissions"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// HasPermission is the single source of truth for module-level CRUD gating.
// super_admin bypasses the stored grants entirely.
func (u *User) HasPermission(module Module, action Action) bool {
	if u == nil {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	return u.Permissions.Allows(module, action)
}

// CanAccessOrg reports whether the user may touch records of the given org.
func (u *User) CanAccessOrg(orgID string) bool {
	if u == nil {
		return false
	}
	if u.Role.Elevated() {
		return true
	}
	return u.OrgID != nil && *u.OrgID == orgID
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	OrgID     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
