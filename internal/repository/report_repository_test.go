package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfauzi77/paudhi-backend/internal/models"
)

func reportRows(now time.Time) *sqlmock.Rows {
	indicators := []byte(`[{"name":"Akses PAUD","target_unit":"persen","resource_count":3,"years":[{"year":2024,"target":34,"actual":30,"percentage":88,"category":"NOT_ACHIEVED"}]}]`)
	return sqlmock.NewRows([]string{"id", "org_id", "org_name", "program", "total_resource_count", "indicators", "status", "approved_by", "approved_at", "rejection_reason", "submitted_at", "active", "created_by", "updated_by", "created_at", "updated_at"}).
		AddRow("r1", "KEMENKES", "Kementerian Kesehatan", "Layanan Holistik Integratif", 3.0, indicators, string(models.ReportStatusPending), nil, nil, nil, now, true, "u1", nil, now, now)
}

func TestFindReportByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + reportColumns + " FROM indicator_reports WHERE id = $1 AND active = true LIMIT 1")).
		WithArgs("r1").
		WillReturnRows(reportRows(time.Now()))

	report, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "KEMENKES", report.OrgID)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	require.Len(t, report.Indicators, 1)
	assert.Equal(t, 88, report.Indicators[0].Years[0].Percentage)
	assert.Equal(t, models.CategoryNotAchieved, report.Indicators[0].Years[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReportsScopedToOrg(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM indicator_reports WHERE active = true AND org_id = $1")).
		WithArgs("KEMENKES").
		WillReturnRows(countRows)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY updated_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("KEMENKES", 20, 0).
		WillReturnRows(reportRows(time.Now()))

	reports, total, err := repo.List(context.Background(), models.ReportFilter{OrgID: "KEMENKES"})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOwnership(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"id", "org_id"}).
		AddRow("r1", "KEMENKES").
		AddRow("r2", "BPS")
	mock.ExpectQuery("SELECT id, org_id FROM indicator_reports").
		WithArgs("r1", "r2").
		WillReturnRows(rows)

	owners, err := repo.FindOwnership(context.Background(), []string{"r1", "r2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"r1": "KEMENKES", "r2": "BPS"}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkSoftDeleteSkipsMissingRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("UPDATE indicator_reports SET active = false").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE indicator_reports SET active = false").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE indicator_reports SET active = false").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.BulkSoftDelete(context.Background(), []string{"r1", "gone", "r3"}, "actor")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteMissingReport(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("UPDATE indicator_reports SET active = false").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "missing", "actor")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.ReportStatusPending), 4).
		AddRow(string(models.ReportStatusApproved), 10)
	mock.ExpectQuery("SELECT status, COUNT").WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts[models.ReportStatusPending])
	assert.Equal(t, 10, counts[models.ReportStatusApproved])
	assert.NoError(t, mock.ExpectationsWereMet())
}
