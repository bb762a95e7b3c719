package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// CreateUserRequest describes payload for provisioning an account. OrgID is
// required for org_admin accounts and must name a catalogued organization.
type CreateUserRequest struct {
	Username    string               `json:"username" validate:"required,min=3"`
	Email       string               `json:"email" validate:"required,email"`
	Password    string               `json:"password" validate:"required,min=8"`
	FullName    string               `json:"full_name"`
	Role        models.UserRole      `json:"role" validate:"required,oneof=org_admin admin super_admin"`
	OrgID       *string              `json:"org_id"`
	Permissions models.PermissionSet `json:"permissions"`
}

// UpdateUserRequest describes a partial account update.
type UpdateUserRequest struct {
	Username *string          `json:"username" validate:"omitempty,min=3"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	FullName *string          `json:"full_name"`
	Role     *models.UserRole `json:"role" validate:"omitempty,oneof=org_admin admin super_admin"`
	OrgID    *string          `json:"org_id"`
	Active   *bool            `json:"active"`
}

// UpdateProfileRequest is the self-service subset of account fields. Role,
// organization and grants are never reachable from here.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

// UpdatePermissionsRequest replaces a user's permission grants wholesale.
type UpdatePermissionsRequest struct {
	Permissions models.PermissionSet `json:"permissions" validate:"required"`
}

// ResetPasswordRequest sets a new password on behalf of another account.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}
