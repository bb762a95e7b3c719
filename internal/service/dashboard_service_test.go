package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.sets++
	return nil
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) ObserveCacheHit()  { m.hits++ }
func (m *countingMetrics) ObserveCacheMiss() { m.misses++ }

type newsCountStub struct{ counts map[models.NewsStatus]int }

func (s *newsCountStub) CountByStatus(ctx context.Context) (map[models.NewsStatus]int, error) {
	return s.counts, nil
}

type userCountStub struct{ active int }

func (s *userCountStub) CountActive(ctx context.Context) (int, error) { return s.active, nil }

func seedApprovedReport(t *testing.T, repo *reportRepoStub, orgID, program string, years []models.YearRecord) {
	t.Helper()
	repo.reports["r-"+orgID+"-"+program] = &models.IndicatorReport{
		ID:      "r-" + orgID + "-" + program,
		OrgID:   orgID,
		OrgName: models.OrgName(orgID),
		Program: program,
		Indicators: models.IndicatorList{{
			Name:          "indikator",
			ResourceCount: 1,
			Years:         years,
		}},
		TotalResourceCount: 1,
		Status:             models.ReportStatusApproved,
		Active:             true,
	}
}

func TestPublicSummaryAggregatesApprovedOnly(t *testing.T) {
	reports := newReportRepoStub()
	cache := newMemoryCache()
	metrics := &countingMetrics{}
	svc := NewDashboardService(reports, &newsCountStub{}, &userCountStub{}, cache, metrics, zap.NewNop(), time.Minute, "dash:public", "dash:admin")

	seedApprovedReport(t, reports, "KEMENKES", "Gizi", []models.YearRecord{
		{Year: 2024, Target: 100, Actual: 120, Percentage: 120, Category: models.CategoryAchieved},
		{Year: 2025, Target: 100, Actual: 40, Percentage: 40, Category: models.CategoryNotAchieved},
	})
	seedApprovedReport(t, reports, "BPS", "Data", []models.YearRecord{
		{Year: 2024, Category: models.CategoryNotReported},
	})
	// A pending report must not contribute.
	reports.reports["pending"] = &models.IndicatorReport{
		ID: "pending", OrgID: "KEMENAG", OrgName: models.OrgName("KEMENAG"),
		Status: models.ReportStatusPending, Active: true,
		Indicators: models.IndicatorList{{Years: []models.YearRecord{{Year: 2024, Category: models.CategoryAchieved}}}},
	}

	summary, err := svc.PublicSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalReports)
	assert.Equal(t, 2, summary.TotalOrgs)
	assert.Equal(t, 1, summary.Categories.Achieved)
	assert.Equal(t, 1, summary.Categories.NotAchieved)
	assert.Equal(t, 1, summary.Categories.NotReported)
	require.Len(t, summary.PerOrg, 2)
	assert.Equal(t, "BPS", summary.PerOrg[0].OrgID)
	assert.Equal(t, 1, metrics.misses)

	// Second read is served from cache.
	again, err := svc.PublicSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.TotalReports, again.TotalReports)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, cache.sets)
}

func TestAdminSummaryCounts(t *testing.T) {
	svc := NewDashboardService(
		&countingReportRepo{pending: 3, approved: 7, rejected: 1, draft: 2},
		&newsCountStub{counts: map[models.NewsStatus]int{models.NewsStatusPublish: 5, models.NewsStatusDraft: 2}},
		&userCountStub{active: 12},
		newMemoryCache(), nil, zap.NewNop(), time.Minute, "dash:public", "dash:admin")

	summary, err := svc.AdminSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.AdminDashboardResponse{
		PendingReports:  3,
		ApprovedReports: 7,
		RejectedReports: 1,
		DraftReports:    2,
		PublishedNews:   5,
		DraftNews:       2,
		ActiveUsers:     12,
	}, summary)
}

type countingReportRepo struct {
	pending, approved, rejected, draft int
}

func (r *countingReportRepo) ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error) {
	return nil, nil
}

func (r *countingReportRepo) CountByStatus(ctx context.Context) (map[models.ReportStatus]int, error) {
	return map[models.ReportStatus]int{
		models.ReportStatusPending:  r.pending,
		models.ReportStatusApproved: r.approved,
		models.ReportStatusRejected: r.rejected,
		models.ReportStatusDraft:    r.draft,
	}, nil
}
