package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// DashboardCache is the Redis-backed aggregate cache.
type DashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type dashboardReportRepository interface {
	ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error)
	CountByStatus(ctx context.Context) (map[models.ReportStatus]int, error)
}

type dashboardNewsRepository interface {
	CountByStatus(ctx context.Context) (map[models.NewsStatus]int, error)
}

type dashboardUserRepository interface {
	CountActive(ctx context.Context) (int, error)
}

// CacheObserver records cache hit/miss outcomes.
type CacheObserver interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// DashboardService aggregates approved reports into the public summary and
// workload counts for staff. Aggregates are cached; only approved reports
// ever contribute to public figures.
type DashboardService struct {
	reports  dashboardReportRepository
	news     dashboardNewsRepository
	users    dashboardUserRepository
	cache    DashboardCache
	metrics  CacheObserver
	logger   *zap.Logger
	cacheTTL time.Duration

	cacheKeyPublic string
	cacheKeyAdmin  string
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(
	reports dashboardReportRepository,
	news dashboardNewsRepository,
	users dashboardUserRepository,
	cache DashboardCache,
	metrics CacheObserver,
	logger *zap.Logger,
	cacheTTL time.Duration,
	cacheKeyPublic, cacheKeyAdmin string,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		reports:        reports,
		news:           news,
		users:          users,
		cache:          cache,
		metrics:        metrics,
		logger:         logger,
		cacheTTL:       cacheTTL,
		cacheKeyPublic: cacheKeyPublic,
		cacheKeyAdmin:  cacheKeyAdmin,
	}
}

// PublicSummary returns the public dashboard aggregate, served from cache
// when available.
func (s *DashboardService) PublicSummary(ctx context.Context) (*dto.PublicDashboardResponse, error) {
	var cached dto.PublicDashboardResponse
	if err := s.cache.Get(ctx, s.cacheKeyPublic, &cached); err == nil {
		s.observeHit()
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("public dashboard cache read failed", zap.Error(err))
	}
	s.observeMiss()

	approved, err := s.reports.ListByStatus(ctx, models.ReportStatusApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate dashboard")
	}

	summary := buildPublicSummary(approved)
	if err := s.cache.Set(ctx, s.cacheKeyPublic, summary, s.cacheTTL); err != nil {
		s.logger.Warn("public dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

// AdminSummary returns workload counts for signed-in staff.
func (s *DashboardService) AdminSummary(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var cached dto.AdminDashboardResponse
	if err := s.cache.Get(ctx, s.cacheKeyAdmin, &cached); err == nil {
		s.observeHit()
		return &cached, nil
	}
	s.observeMiss()

	reportCounts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reports")
	}
	newsCounts, err := s.news.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count news")
	}
	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	summary := &dto.AdminDashboardResponse{
		PendingReports:  reportCounts[models.ReportStatusPending],
		ApprovedReports: reportCounts[models.ReportStatusApproved],
		RejectedReports: reportCounts[models.ReportStatusRejected],
		DraftReports:    reportCounts[models.ReportStatusDraft],
		PublishedNews:   newsCounts[models.NewsStatusPublish],
		DraftNews:       newsCounts[models.NewsStatusDraft],
		ActiveUsers:     activeUsers,
	}
	if err := s.cache.Set(ctx, s.cacheKeyAdmin, summary, s.cacheTTL); err != nil {
		s.logger.Warn("admin dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *DashboardService) observeHit() {
	if s.metrics != nil {
		s.metrics.ObserveCacheHit()
	}
}

func (s *DashboardService) observeMiss() {
	if s.metrics != nil {
		s.metrics.ObserveCacheMiss()
	}
}

func buildPublicSummary(approved []models.IndicatorReport) *dto.PublicDashboardResponse {
	perOrg := map[string]*models.OrgSummary{}
	summary := &dto.PublicDashboardResponse{TotalReports: len(approved)}

	for _, report := range approved {
		summary.TotalResourceCount += report.TotalResourceCount

		org, ok := perOrg[report.OrgID]
		if !ok {
			org = &models.OrgSummary{OrgID: report.OrgID, OrgName: report.OrgName}
			perOrg[report.OrgID] = org
		}
		for _, indicator := range report.Indicators {
			for _, year := range indicator.Years {
				switch year.Category {
				case models.CategoryAchieved:
					org.Achieved++
					summary.Categories.Achieved++
				case models.CategoryNotAchieved:
					org.NotAchieved++
					summary.Categories.NotAchieved++
				default:
					org.NotReported++
					summary.Categories.NotReported++
				}
			}
		}
	}

	summary.TotalOrgs = len(perOrg)
	summary.PerOrg = make([]models.OrgSummary, 0, len(perOrg))
	for _, org := range perOrg {
		summary.PerOrg = append(summary.PerOrg, *org)
	}
	sort.Slice(summary.PerOrg, func(i, j int) bool {
		return summary.PerOrg[i].OrgID < summary.PerOrg[j].OrgID
	})
	return summary
}
