package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

type reportRepoStub struct {
	reports map[string]*models.IndicatorReport
	filter  models.ReportFilter
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{reports: make(map[string]*models.IndicatorReport)}
}

func (r *reportRepoStub) Create(ctx context.Context, report *models.IndicatorReport) error {
	if report.ID == "" {
		report.ID = "r-" + report.Program
	}
	copy := *report
	r.reports[report.ID] = &copy
	return nil
}

func (r *reportRepoStub) FindByID(ctx context.Context, id string) (*models.IndicatorReport, error) {
	if report, ok := r.reports[id]; ok && report.Active {
		copy := *report
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *reportRepoStub) Update(ctx context.Context, report *models.IndicatorReport) error {
	if _, ok := r.reports[report.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *report
	r.reports[report.ID] = &copy
	return nil
}

func (r *reportRepoStub) List(ctx context.Context, filter models.ReportFilter) ([]models.IndicatorReport, int, error) {
	r.filter = filter
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

func (r *reportRepoStub) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error) {
	result := []models.IndicatorReport{}
	for _, report := range r.reports {
		if report.Active && report.Status == status {
			result = append(result, *report)
		}
	}
	return result, nil
}

func (r *reportRepoStub) ListYears(ctx context.Context) ([]int, error) {
	seen := map[int]bool{}
	years := []int{}
	for _, report := range r.reports {
		if !report.Active {
			continue
		}
		for _, ind := range report.Indicators {
			for _, rec := range ind.Years {
				if !seen[rec.Year] {
					seen[rec.Year] = true
					years = append(years, rec.Year)
				}
			}
		}
	}
	return years, nil
}

func (r *reportRepoStub) FindOwnership(ctx context.Context, ids []string) (map[string]string, error) {
	owners := map[string]string{}
	for _, id := range ids {
		if report, ok := r.reports[id]; ok && report.Active {
			owners[id] = report.OrgID
		}
	}
	return owners, nil
}

func (r *reportRepoStub) SoftDelete(ctx context.Context, id, actorID string) error {
	report, ok := r.reports[id]
	if !ok || !report.Active {
		return sql.ErrNoRows
	}
	report.Active = false
	return nil
}

func (r *reportRepoStub) CountByStatus(ctx context.Context) (map[models.ReportStatus]int, error) {
	counts := map[models.ReportStatus]int{}
	for _, report := range r.reports {
		if report.Active {
			counts[report.Status]++
		}
	}
	return counts, nil
}

func (r *reportRepoStub) BulkSoftDelete(ctx context.Context, ids []string, actorID string) (int, error) {
	deleted := 0
	for _, id := range ids {
		if err := r.SoftDelete(ctx, id, actorID); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

type cacheStub struct {
	invalidations int
}

func (c *cacheStub) InvalidateDashboards(ctx context.Context) {
	c.invalidations++
}

func testOrgAdmin(orgID string) *models.User {
	name := models.OrgName(orgID)
	return &models.User{ID: "org-" + orgID, Role: models.RoleOrgAdmin, OrgID: &orgID, OrgName: &name, Active: true}
}

func testAdmin() *models.User {
	return &models.User{ID: "admin-1", Role: models.RoleAdmin, Active: true}
}

func newReportService(repo *reportRepoStub, cache *cacheStub) *ReportService {
	return NewReportService(repo, cache, nil, zap.NewNop())
}

func metric(raw string) models.MetricValue {
	var m models.MetricValue
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		panic(err)
	}
	return m
}

func TestCreateReportInjectsOwnOrg(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	actor := testOrgAdmin("KEMENAG")

	report, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{
		Program: "BOP PAUD",
		Indicators: []dto.IndicatorInput{{
			Name:          "Jumlah lembaga penerima",
			ResourceCount: 2,
			Years:         []dto.YearInput{{Year: 2024, Target: metric(`34`), Actual: metric(`30`)}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "KEMENAG", report.OrgID)
	assert.Equal(t, models.ReportStatusDraft, report.Status)
	assert.Equal(t, 2.0, report.TotalResourceCount)

	year := report.Indicators[0].Years[0]
	assert.Equal(t, 88, year.Percentage)
	assert.Equal(t, models.CategoryNotAchieved, year.Category)
}

func TestCreateReportCrossOrgDenied(t *testing.T) {
	svc := newReportService(newReportRepoStub(), &cacheStub{})

	_, err := svc.Create(context.Background(), testOrgAdmin("KEMENAG"), dto.CreateReportRequest{
		OrgID:   "KEMENKES",
		Program: "Program lain",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCreateReportDerivesNotReported(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})

	report, err := svc.Create(context.Background(), testAdmin(), dto.CreateReportRequest{
		OrgID:   "BPS",
		Program: "Survei PAUD",
		Indicators: []dto.IndicatorInput{{
			Name: "Cakupan data",
			Years: []dto.YearInput{
				{Year: 2023, Target: metric(`"-"`), Actual: metric(`"-"`)},
				{Year: 2024, Target: metric(`0`), Actual: metric(`0`)},
				{Year: 2025, Target: metric(`"12,5"`), Actual: metric(`"25"`)},
			},
		}},
	})
	require.NoError(t, err)

	years := report.Indicators[0].Years
	assert.Equal(t, models.CategoryNotReported, years[0].Category)
	assert.Equal(t, models.CategoryNotReported, years[1].Category)
	assert.Equal(t, models.CategoryAchieved, years[2].Category)
	assert.Equal(t, 200, years[2].Percentage)
}

func TestSubmitReport(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	actor := testOrgAdmin("KEMENSOS")

	created, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Bansos PAUD"})
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// Re-submitting a pending report is an invalid transition.
	_, err = svc.Submit(context.Background(), actor, created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestReviewApprove(t *testing.T) {
	repo := newReportRepoStub()
	cache := &cacheStub{}
	svc := newReportService(repo, cache)
	owner := testOrgAdmin("KEMENPPPA")
	reviewer := testAdmin()

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "PISA"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)

	approved, err := svc.Review(context.Background(), reviewer, created.ID, dto.ReviewReportRequest{Decision: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, reviewer.ID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, 1, cache.invalidations)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	owner := testOrgAdmin("KEMENDAGRI")

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "SPM PAUD"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), testAdmin(), created.ID, dto.ReviewReportRequest{Decision: "rejected"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	rejected, err := svc.Review(context.Background(), testAdmin(), created.ID, dto.ReviewReportRequest{Decision: "rejected", Reason: "data tahun 2024 belum lengkap"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
}

func TestReviewOutsidePendingFails(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	owner := testOrgAdmin("BAPPENAS")

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "RAN PAUD HI"})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), testAdmin(), created.ID, dto.ReviewReportRequest{Decision: "approved"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestReturnToDraftClearsWorkflowStamps(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	owner := testOrgAdmin("KEMENDES_PDTT")
	reviewer := testAdmin()

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "Dana Desa PAUD"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), reviewer, created.ID, dto.ReviewReportRequest{Decision: "rejected", Reason: "revisi"})
	require.NoError(t, err)

	draft, err := svc.ReturnToDraft(context.Background(), reviewer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDraft, draft.Status)
	assert.Nil(t, draft.ApprovedBy)
	assert.Nil(t, draft.ApprovedAt)
	assert.Nil(t, draft.RejectionReason)
	assert.Nil(t, draft.SubmittedAt)

	// The report can go through the workflow again.
	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)
}

func TestReturnToDraftRequiresElevatedRole(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	owner := testOrgAdmin("KEMENKES")

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "Gizi PAUD"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)
	approved, err := svc.Review(context.Background(), testAdmin(), created.ID, dto.ReviewReportRequest{Decision: "approved"})
	require.NoError(t, err)

	// Neither the owner nor an org_admin from another ministry may unwind
	// an approved report.
	for _, actor := range []*models.User{owner, testOrgAdmin("BPS")} {
		_, err = svc.ReturnToDraft(context.Background(), actor, created.ID)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	}

	still, err := svc.Get(context.Background(), testAdmin(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusApproved, still.Status)
	require.NotNil(t, still.ApprovedBy)
	assert.Equal(t, *approved.ApprovedBy, *still.ApprovedBy)
}

func TestGetForeignReportForbidden(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})

	created, err := svc.Create(context.Background(), testOrgAdmin("KEMENKES"), dto.CreateReportRequest{Program: "Posyandu"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), testOrgAdmin("BPS"), created.ID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "KEMENKES")
	assert.Contains(t, appErr.Message, "BPS")
}

func TestListScopesOrgAdmin(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})

	_, err := svc.Create(context.Background(), testOrgAdmin("KEMENKES"), dto.CreateReportRequest{Program: "Gizi"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testOrgAdmin("BPS"), dto.CreateReportRequest{Program: "Sensus"})
	require.NoError(t, err)

	reports, total, err := svc.List(context.Background(), testOrgAdmin("KEMENKES"), models.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reports, 1)
	assert.Equal(t, "KEMENKES", reports[0].OrgID)

	// An org_admin cannot widen the filter to a foreign organization.
	reports, _, err = svc.List(context.Background(), testOrgAdmin("KEMENKES"), models.ReportFilter{OrgID: "BPS"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "KEMENKES", reports[0].OrgID)

	// Elevated roles see everything.
	_, total, err = svc.List(context.Background(), testAdmin(), models.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestBulkDeleteRejectsForeignItem(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	actor := testOrgAdmin("KEMENKES")

	own, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Imunisasi"})
	require.NoError(t, err)
	foreign, err := svc.Create(context.Background(), testOrgAdmin("BPS"), dto.CreateReportRequest{Program: "Statistik"})
	require.NoError(t, err)

	_, err = svc.BulkDelete(context.Background(), actor, dto.BulkDeleteRequest{IDs: []string{own.ID, foreign.ID}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Nothing was deleted, including the actor's own record.
	stillThere, err := svc.Get(context.Background(), actor, own.ID)
	require.NoError(t, err)
	assert.True(t, stillThere.Active)
}

func TestBulkDeleteOwnRecords(t *testing.T) {
	repo := newReportRepoStub()
	cache := &cacheStub{}
	svc := newReportService(repo, cache)
	actor := testOrgAdmin("KEMENKES")

	first, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Stunting"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Imunisasi"})
	require.NoError(t, err)

	result, err := svc.BulkDelete(context.Background(), actor, dto.BulkDeleteRequest{IDs: []string{first.ID, second.ID}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, 1, cache.invalidations)
}

func TestBulkUpdateReassignsProgram(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	actor := testOrgAdmin("KEMENAG")

	first, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Lama"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Lama juga"})
	require.NoError(t, err)

	result, err := svc.BulkUpdate(context.Background(), actor, []string{first.ID, second.ID}, "Program baru")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Updated)

	updated, err := svc.Get(context.Background(), actor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Program baru", updated.Program)
}

func TestBulkUpdateRejectsForeignItem(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	actor := testOrgAdmin("KEMENAG")

	own, err := svc.Create(context.Background(), actor, dto.CreateReportRequest{Program: "Sendiri"})
	require.NoError(t, err)
	foreign, err := svc.Create(context.Background(), testOrgAdmin("BPS"), dto.CreateReportRequest{Program: "Orang lain"})
	require.NoError(t, err)

	_, err = svc.BulkUpdate(context.Background(), actor, []string{own.ID, foreign.ID}, "Baru")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	unchanged, err := svc.Get(context.Background(), actor, own.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sendiri", unchanged.Program)
}

func TestPublicGetHidesUnapproved(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportService(repo, &cacheStub{})
	owner := testOrgAdmin("KEMENSOS")

	created, err := svc.Create(context.Background(), owner, dto.CreateReportRequest{Program: "Bansos"})
	require.NoError(t, err)

	_, err = svc.PublicGet(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), owner, created.ID)
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), testAdmin(), created.ID, dto.ReviewReportRequest{Decision: "approved"})
	require.NoError(t, err)

	visible, err := svc.PublicGet(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, visible.ID)
}

func TestYearsFallsBackWhenEmpty(t *testing.T) {
	svc := newReportService(newReportRepoStub(), &cacheStub{})

	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, years)
	assert.Equal(t, 2020, years[len(years)-1])
}
