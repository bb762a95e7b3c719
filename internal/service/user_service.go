package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePermissions(ctx context.Context, id string, perms models.PermissionSet) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService provides account management use cases. Routing restricts the
// whole surface to the admin/super_admin tier; the service adds the invariants
// that role gates cannot express.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// Create provisions a new account. org_admin accounts must name a catalogued
// organization; elevated accounts must not carry one. Permissions default per
// role when the payload omits them, with the users module always forced to
// the role default.
func (s *UserService) Create(ctx context.Context, actor *models.User, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}
	if err := s.checkRoleAssignment(actor, req.Role); err != nil {
		return nil, err
	}

	orgID, orgName, err := resolveUserOrg(req.Role, req.OrgID)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	perms := req.Permissions
	if len(perms) == 0 {
		perms = models.DefaultPermissions(req.Role)
	} else {
		perms = perms.Normalized()
		if req.Role != models.RoleSuperAdmin {
			perms[models.ModuleUsers] = models.PermissionGrant{}
		}
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		OrgID:        orgID,
		OrgName:      orgName,
		Permissions:  perms,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.audit(ctx, actor, models.AuditActionUserCreate, user.ID)
	s.logger.Info("user created",
		zap.String("userId", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("actorId", actor.ID))

	user.PasswordHash = ""
	return user, nil
}

// Update applies a partial edit to an account.
func (s *UserService) Update(ctx context.Context, actor *models.User, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := s.checkRoleAssignment(actor, *req.Role); err != nil {
			return nil, err
		}
		user.Role = *req.Role
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	requestedOrg := ""
	if req.OrgID != nil {
		requestedOrg = *req.OrgID
	} else if user.OrgID != nil {
		requestedOrg = *user.OrgID
	}
	orgID, orgName, err := resolveUserOrg(user.Role, strPtrOrNil(requestedOrg))
	if err != nil {
		return nil, err
	}
	user.OrgID = orgID
	user.OrgName = orgName

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already in use")
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	s.audit(ctx, actor, models.AuditActionUserUpdate, user.ID)
	user.PasswordHash = ""
	return user, nil
}

// UpdatePermissions replaces an account's permission grants. Only super_admin
// may touch grants, and the users module stays closed below super_admin.
func (s *UserService) UpdatePermissions(ctx context.Context, actor *models.User, id string, req dto.UpdatePermissionsRequest) (*models.User, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super_admin may edit permissions")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid permissions payload")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	perms := req.Permissions.Normalized()
	if user.Role != models.RoleSuperAdmin {
		perms[models.ModuleUsers] = models.PermissionGrant{}
	}

	if err := s.repo.UpdatePermissions(ctx, id, perms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update permissions")
	}

	s.audit(ctx, actor, models.AuditActionUserUpdate, user.ID)
	user.Permissions = perms
	user.PasswordHash = ""
	return user, nil
}

// ResetPassword sets a new password for another account and revokes its
// refresh tokens.
func (s *UserService) ResetPassword(ctx context.Context, actor *models.User, id string, req dto.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}

	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset password")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after reset", zap.Error(err))
	}

	s.audit(ctx, actor, models.AuditActionPasswordChange, id)
	return nil
}

// Deactivate disables an account. Self-deactivation is rejected so the last
// super_admin cannot lock everyone out by accident.
func (s *UserService) Deactivate(ctx context.Context, actor *models.User, id string) error {
	if actor.ID == id {
		return appErrors.Clone(appErrors.ErrForbidden, "you cannot deactivate your own account")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate user")
	}
	if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke refresh tokens on deactivation", zap.Error(err))
	}

	s.audit(ctx, actor, models.AuditActionUserDelete, id)
	return nil
}

// ToggleStatus flips an account between active and inactive. Deactivation
// revokes the account's sessions; self-toggle is rejected.
func (s *UserService) ToggleStatus(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	if actor.ID == id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot toggle your own account")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = !user.Active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle user status")
	}
	if !user.Active {
		if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke refresh tokens on deactivation", zap.Error(err))
		}
	}

	s.audit(ctx, actor, models.AuditActionUserUpdate, id)
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile lets an authenticated user edit their own display fields.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, req dto.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.ExistsByUsernameOrEmail(ctx, user.Username, *req.Email, user.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check uniqueness")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		user.Email = *req.Email
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	return user, nil
}

// checkRoleAssignment keeps super_admin grants in super_admin hands.
func (s *UserService) checkRoleAssignment(actor *models.User, role models.UserRole) error {
	if !role.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown role %q", role))
	}
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only super_admin may assign the super_admin role")
	}
	return nil
}

func (s *UserService) audit(ctx context.Context, actor *models.User, action, targetID string) {
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		Resource:   "users",
		ResourceID: &targetID,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to record user audit log", zap.Error(err))
	}
}

// resolveUserOrg enforces the role/organization invariant: org_admin needs a
// catalogued organization, elevated roles carry none.
func resolveUserOrg(role models.UserRole, orgID *string) (*string, *string, error) {
	if role == models.RoleOrgAdmin {
		if orgID == nil || *orgID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "org_admin requires an organization")
		}
		if !models.ValidOrgID(*orgID) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown organization %q", *orgID))
		}
		name := models.OrgName(*orgID)
		return orgID, &name, nil
	}
	return nil, nil, nil
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
