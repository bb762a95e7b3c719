package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/middleware"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/service"
)

type fakeReportRepo struct {
	reports map[string]*models.IndicatorReport
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*models.IndicatorReport{}}
}

func (r *fakeReportRepo) Create(ctx context.Context, report *models.IndicatorReport) error {
	if report.ID == "" {
		report.ID = "r-1"
	}
	copy := *report
	r.reports[report.ID] = &copy
	return nil
}

func (r *fakeReportRepo) FindByID(ctx context.Context, id string) (*models.IndicatorReport, error) {
	if report, ok := r.reports[id]; ok && report.Active {
		copy := *report
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *fakeReportRepo) Update(ctx context.Context, report *models.IndicatorReport) error {
	copy := *report
	r.reports[report.ID] = &copy
	return nil
}

func (r *fakeReportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.IndicatorReport, int, error) {
	result := []models.IndicatorReport{}
	for _, report := range r.reports {
		if !report.Active {
			continue
		}
		if filter.OrgID != "" && report.OrgID != filter.OrgID {
			continue
		}
		result = append(result, *report)
	}
	return result, len(result), nil
}

func (r *fakeReportRepo) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error) {
	return nil, nil
}

func (r *fakeReportRepo) ListYears(ctx context.Context) ([]int, error) {
	return nil, nil
}

func (r *fakeReportRepo) FindOwnership(ctx context.Context, ids []string) (map[string]string, error) {
	owners := map[string]string{}
	for _, id := range ids {
		if report, ok := r.reports[id]; ok && report.Active {
			owners[id] = report.OrgID
		}
	}
	return owners, nil
}

func (r *fakeReportRepo) SoftDelete(ctx context.Context, id, actorID string) error {
	if report, ok := r.reports[id]; ok && report.Active {
		report.Active = false
		return nil
	}
	return sql.ErrNoRows
}

func (r *fakeReportRepo) BulkSoftDelete(ctx context.Context, ids []string, actorID string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if r.SoftDelete(ctx, id, actorID) == nil {
			deleted++
		}
	}
	return deleted, nil
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateDashboards(ctx context.Context) {}

func injectUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, user)
		c.Next()
	}
}

func newReportRouter(repo *fakeReportRepo, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewReportService(repo, noopInvalidator{}, nil, zap.NewNop())
	export := service.NewExportService(repo, zap.NewNop())
	h := NewReportHandler(svc, export)

	r := gin.New()
	r.Use(injectUser(user))
	r.GET("/reports", h.List)
	r.GET("/reports/export", h.Export)
	r.POST("/reports", h.Create)
	r.POST("/reports/:id/submit", h.Submit)
	r.POST("/reports/:id/review", h.Review)
	return r
}

func orgAdminUser(orgID string) *models.User {
	return &models.User{
		ID:    "u-" + orgID,
		Role:  models.RoleOrgAdmin,
		OrgID: &orgID,
	}
}

func TestReportHandlerCreateStartsDraft(t *testing.T) {
	repo := newFakeReportRepo()
	r := newReportRouter(repo, orgAdminUser("KEMENKES"))

	body := `{"program":"Gizi Ibu dan Anak","indicators":[{"name":"Cakupan","years":[{"year":2024,"target":100,"actual":"75"}]}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var envelope struct {
		Data models.IndicatorReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, models.ReportStatusDraft, envelope.Data.Status)
	assert.Equal(t, "KEMENKES", envelope.Data.OrgID)
}

func TestReportHandlerReviewOutsidePendingFails(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["r-9"] = &models.IndicatorReport{
		ID: "r-9", OrgID: "BPS", Status: models.ReportStatusDraft, Active: true,
	}
	admin := &models.User{ID: "adm", Role: models.RoleSuperAdmin}
	r := newReportRouter(repo, admin)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reports/r-9/review",
		strings.NewReader(`{"decision":"approved"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
}

func TestReportHandlerListScopesToOwnOrg(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["mine"] = &models.IndicatorReport{ID: "mine", OrgID: "KEMENKES", Status: models.ReportStatusDraft, Active: true}
	repo.reports["theirs"] = &models.IndicatorReport{ID: "theirs", OrgID: "BPS", Status: models.ReportStatusDraft, Active: true}
	r := newReportRouter(repo, orgAdminUser("KEMENKES"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?org_id=BPS", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.IndicatorReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "mine", envelope.Data[0].ID)
}

func TestReportHandlerExportCSV(t *testing.T) {
	repo := newFakeReportRepo()
	repo.reports["mine"] = &models.IndicatorReport{
		ID: "mine", OrgID: "KEMENKES", OrgName: "Kementerian Kesehatan",
		Program: "Gizi", Status: models.ReportStatusApproved, Active: true,
		Indicators: models.IndicatorList{{
			Name: "Cakupan",
			Years: []models.YearRecord{{
				Year: 2024, Target: 100, Actual: 75, Percentage: 75,
				Category: models.CategoryNotAchieved,
			}},
		}},
	}
	r := newReportRouter(repo, orgAdminUser("KEMENKES"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/export?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Cakupan")
	assert.Contains(t, rec.Body.String(), "NOT_ACHIEVED")
}
