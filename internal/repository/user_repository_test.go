package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfauzi77/paudhi-backend/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(now time.Time, perms []byte) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "full_name", "role", "org_id", "org_name", "active", "last_login", "permissions", "created_at", "updated_at"}).
		AddRow("1", "kemenkes_admin", "kemenkes@example.go.id", "hash", "Admin Kemenkes", string(models.RoleOrgAdmin), "KEMENKES", "Kementerian Kesehatan", true, now, perms, now, now)
}

func TestFindByUsernameOrEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	perms := []byte(`{"news":{"create":true,"read":true,"update":false,"delete":false}}`)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE username = $1 OR LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("kemenkes_admin").
		WillReturnRows(userRows(time.Now(), perms))

	user, err := repo.FindByUsernameOrEmail(context.Background(), "kemenkes_admin")
	require.NoError(t, err)
	assert.Equal(t, "kemenkes_admin", user.Username)
	assert.Equal(t, models.RoleOrgAdmin, user.Role)
	require.NotNil(t, user.OrgID)
	assert.Equal(t, "KEMENKES", *user.OrgID)
	assert.True(t, user.Permissions.Allows(models.ModuleNews, models.ActionCreate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDScansLegacyPermissions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	// Rows migrated from the old deployment still carry the array shape.
	legacy := []byte(`[{"module":"indicatorReports","actions":["read","update"]}]`)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("1").
		WillReturnRows(userRows(time.Now(), legacy))

	user, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, user.Permissions.Allows(models.ModuleReports, models.ActionRead))
	assert.False(t, user.Permissions.Allows(models.ModuleReports, models.ActionDelete))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Username:     "bps_admin",
		Email:        "bps@example.go.id",
		PasswordHash: "hash",
		Role:         models.RoleOrgAdmin,
		Permissions:  models.DefaultPermissions(models.RoleOrgAdmin),
		Active:       true,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersWithOrgFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM users WHERE 1=1 AND org_id = $1")).
		WithArgs("BPS").
		WillReturnRows(countRows)

	perms := []byte(`{}`)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("BPS", 20, 0).
		WillReturnRows(userRows(time.Now(), perms))

	users, total, err := repo.List(context.Background(), models.UserFilter{OrgID: "BPS"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "1", UserID: "u1", Token: "token", ExpiresAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateMissingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET active = false").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
