package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

func orgAdmin(orgID string) *models.User {
	name := models.OrgName(orgID)
	return &models.User{
		ID:      "u-1",
		Role:    models.RoleOrgAdmin,
		OrgID:   &orgID,
		OrgName: &name,
		Active:  true,
	}
}

func TestFilter(t *testing.T) {
	t.Run("elevated roles get empty filter", func(t *testing.T) {
		for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin} {
			filter, err := Filter(&models.User{ID: "u", Role: role})
			require.NoError(t, err)
			assert.Empty(t, filter)
		}
	})

	t.Run("org admin pinned to own org", func(t *testing.T) {
		filter, err := Filter(orgAdmin("KEMENKES"))
		require.NoError(t, err)
		assert.Equal(t, "KEMENKES", filter)
	})

	t.Run("org admin without org rejected", func(t *testing.T) {
		_, err := Filter(&models.User{ID: "u", Role: models.RoleOrgAdmin})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	})

	t.Run("nil user unauthorized", func(t *testing.T) {
		_, err := Filter(nil)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	})
}

func TestResolveWriteOrg(t *testing.T) {
	t.Run("org admin gets own org injected when payload omits it", func(t *testing.T) {
		orgID, orgName, err := ResolveWriteOrg(orgAdmin("KEMENAG"), "")
		require.NoError(t, err)
		assert.Equal(t, "KEMENAG", orgID)
		assert.Equal(t, models.OrgName("KEMENAG"), orgName)
	})

	t.Run("org admin may name own org explicitly", func(t *testing.T) {
		orgID, _, err := ResolveWriteOrg(orgAdmin("KEMENAG"), "KEMENAG")
		require.NoError(t, err)
		assert.Equal(t, "KEMENAG", orgID)
	})

	t.Run("org admin cross-org write denied", func(t *testing.T) {
		_, _, err := ResolveWriteOrg(orgAdmin("KEMENAG"), "KEMENKES")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
		assert.Contains(t, appErr.Message, "KEMENKES")
		assert.Contains(t, appErr.Message, "KEMENAG")
	})

	t.Run("elevated user must name a catalogued org", func(t *testing.T) {
		_, _, err := ResolveWriteOrg(&models.User{ID: "u", Role: models.RoleSuperAdmin}, "NOT_A_MINISTRY")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

		orgID, orgName, err := ResolveWriteOrg(&models.User{ID: "u", Role: models.RoleSuperAdmin}, "BAPPENAS")
		require.NoError(t, err)
		assert.Equal(t, "BAPPENAS", orgID)
		assert.NotEmpty(t, orgName)
	})
}

func TestValidateRecordAccess(t *testing.T) {
	t.Run("foreign record denied with both orgs named", func(t *testing.T) {
		err := ValidateRecordAccess(orgAdmin("KEMENSOS"), EntityReport, "BPS")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
		assert.Contains(t, appErr.Message, "BPS")
		assert.Contains(t, appErr.Message, "KEMENSOS")
	})

	t.Run("own record allowed", func(t *testing.T) {
		assert.NoError(t, ValidateRecordAccess(orgAdmin("KEMENSOS"), EntityReport, "KEMENSOS"))
	})

	t.Run("elevated roles bypass ownership", func(t *testing.T) {
		assert.NoError(t, ValidateRecordAccess(&models.User{ID: "u", Role: models.RoleAdmin}, EntityReport, "BPS"))
	})
}

func TestValidateBulkAccess(t *testing.T) {
	actor := orgAdmin("KEMENDAGRI")

	t.Run("single foreign item rejects whole batch", func(t *testing.T) {
		records := []Owned{
			{ID: "r1", OrgID: "KEMENDAGRI"},
			{ID: "r2", OrgID: "KEMENKES"},
			{ID: "r3", OrgID: "KEMENDAGRI"},
		}
		err := ValidateBulkAccess(actor, EntityReport, records)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
		assert.Contains(t, appErr.Message, "r2")
	})

	t.Run("homogeneous batch allowed", func(t *testing.T) {
		records := []Owned{
			{ID: "r1", OrgID: "KEMENDAGRI"},
			{ID: "r2", OrgID: "KEMENDAGRI"},
		}
		assert.NoError(t, ValidateBulkAccess(actor, EntityReport, records))
	})

	t.Run("empty batch allowed", func(t *testing.T) {
		assert.NoError(t, ValidateBulkAccess(actor, EntityReport, nil))
	})
}
