package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mfauzi77/paudhi-backend/internal/models"
)

func serveWith(user *models.User, gate gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	}, gate, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestRequireRolesDeniesMissingUser(t *testing.T) {
	rec := serveWith(nil, RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesDeniesOtherRole(t *testing.T) {
	org := "KEMENKES"
	user := &models.User{ID: "u1", Role: models.RoleOrgAdmin, OrgID: &org}
	rec := serveWith(user, RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermissionChecksGrant(t *testing.T) {
	org := "KEMENKES"
	user := &models.User{
		ID:    "u1",
		Role:  models.RoleOrgAdmin,
		OrgID: &org,
		Permissions: models.PermissionSet{
			models.ModuleReports: {Read: true},
		},
	}

	rec := serveWith(user, RequirePermission(models.ModuleReports, models.ActionRead))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveWith(user, RequirePermission(models.ModuleReports, models.ActionDelete))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "indicatorReports")
}

func TestSuperAdminBypassesGrants(t *testing.T) {
	user := &models.User{ID: "root", Role: models.RoleSuperAdmin}
	rec := serveWith(user, RequirePermission(models.ModuleUsers, models.ActionDelete))
	assert.Equal(t, http.StatusOK, rec.Code)
}
