package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/scope"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// ReportRepository abstracts persistence used by the report workflow.
type ReportRepository interface {
	Create(ctx context.Context, report *models.IndicatorReport) error
	FindByID(ctx context.Context, id string) (*models.IndicatorReport, error)
	Update(ctx context.Context, report *models.IndicatorReport) error
	List(ctx context.Context, filter models.ReportFilter) ([]models.IndicatorReport, int, error)
	ListByStatus(ctx context.Context, status models.ReportStatus) ([]models.IndicatorReport, error)
	ListYears(ctx context.Context) ([]int, error)
	FindOwnership(ctx context.Context, ids []string) (map[string]string, error)
	SoftDelete(ctx context.Context, id, actorID string) error
	BulkSoftDelete(ctx context.Context, ids []string, actorID string) (int, error)
}

// DashboardInvalidator drops cached aggregates after workflow transitions.
type DashboardInvalidator interface {
	InvalidateDashboards(ctx context.Context)
}

// TransitionObserver records workflow transitions for monitoring.
type TransitionObserver interface {
	ObserveTransition(entity, transition string)
}

// BulkDeleteResult reports the best-effort outcome of a bulk delete.
type BulkDeleteResult struct {
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
}

// BulkUpdateResult reports the best-effort outcome of a bulk update.
type BulkUpdateResult struct {
	Requested int `json:"requested"`
	Updated   int `json:"updated"`
}

// ReportService implements the indicator report workflow: content CRUD under
// organization scoping plus the draft/pending/approved/rejected transitions.
type ReportService struct {
	repo     ReportRepository
	cache    DashboardInvalidator
	metrics  TransitionObserver
	logger   *zap.Logger
	validate *validator.Validate
}

// NewReportService constructs a ReportService. metrics may be nil.
func NewReportService(repo ReportRepository, cache DashboardInvalidator, metrics TransitionObserver, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:     repo,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *ReportService) observeTransition(to models.ReportStatus) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(scope.EntityReport), string(to))
	}
}

// Create stores a new draft report attributed to the resolved organization.
func (s *ReportService) Create(ctx context.Context, actor *models.User, req dto.CreateReportRequest) (*models.IndicatorReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	orgID, orgName, err := scope.ResolveWriteOrg(actor, req.OrgID)
	if err != nil {
		return nil, err
	}

	indicators := buildIndicators(req.Indicators)
	report := &models.IndicatorReport{
		OrgID:              orgID,
		OrgName:            orgName,
		Program:            req.Program,
		Indicators:         indicators,
		TotalResourceCount: indicators.TotalResourceCount(),
		Status:             models.ReportStatusDraft,
		Active:             true,
		CreatedBy:          actor.ID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	s.logger.Info("report created",
		zap.String("reportId", report.ID),
		zap.String("orgId", report.OrgID),
		zap.String("actorId", actor.ID))
	return report, nil
}

// Get returns one report after the ownership check.
func (s *ReportService) Get(ctx context.Context, actor *models.User, id string) (*models.IndicatorReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scope.ValidateRecordAccess(actor, scope.EntityReport, report.OrgID); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns reports visible to the actor. Org-scoped actors only ever see
// their own organization regardless of the requested filter.
func (s *ReportService) List(ctx context.Context, actor *models.User, filter models.ReportFilter) ([]models.IndicatorReport, int, error) {
	orgFilter, err := scope.Filter(actor)
	if err != nil {
		return nil, 0, err
	}
	if orgFilter != "" {
		filter.OrgID = orgFilter
	}
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, total, nil
}

// PublicList returns approved reports only, regardless of the requested
// status. Anonymous callers hit this path.
func (s *ReportService) PublicList(ctx context.Context, filter models.ReportFilter) ([]models.IndicatorReport, int, error) {
	filter.Status = models.ReportStatusApproved
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, total, nil
}

// PublicGet returns one approved report. Anything not approved is invisible
// to anonymous callers and surfaces as NotFound.
func (s *ReportService) PublicGet(ctx context.Context, id string) (*models.IndicatorReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return report, nil
}

// Years returns the distinct reporting years found in stored data. An empty
// database still yields a usable default range for year pickers.
func (s *ReportService) Years(ctx context.Context) ([]int, error) {
	years, err := s.repo.ListYears(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report years")
	}
	if len(years) == 0 {
		for y := time.Now().Year(); y >= 2020; y-- {
			years = append(years, y)
		}
	}
	return years, nil
}

// Pending returns the review queue.
func (s *ReportService) Pending(ctx context.Context) ([]models.IndicatorReport, error) {
	reports, err := s.repo.ListByStatus(ctx, models.ReportStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending reports")
	}
	return reports, nil
}

// Update replaces the editable content of a report. Workflow fields are not
// reachable from here; derived year figures are always recomputed.
func (s *ReportService) Update(ctx context.Context, actor *models.User, id string, req dto.UpdateReportRequest) (*models.IndicatorReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scope.ValidateRecordAccess(actor, scope.EntityReport, report.OrgID); err != nil {
		return nil, err
	}

	if req.Program != nil {
		report.Program = *req.Program
	}
	if req.Indicators != nil {
		report.Indicators = buildIndicators(req.Indicators)
		report.TotalResourceCount = report.Indicators.TotalResourceCount()
	}
	report.UpdatedBy = &actor.ID

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report")
	}
	return report, nil
}

// Submit moves a draft into the review queue.
func (s *ReportService) Submit(ctx context.Context, actor *models.User, id string) (*models.IndicatorReport, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scope.ValidateRecordAccess(actor, scope.EntityReport, report.OrgID); err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusDraft {
		return nil, transitionError(report.Status, models.ReportStatusPending)
	}

	now := time.Now().UTC()
	report.Status = models.ReportStatusPending
	report.SubmittedAt = &now
	report.UpdatedBy = &actor.ID

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit report")
	}

	s.observeTransition(models.ReportStatusPending)
	s.logger.Info("report submitted",
		zap.String("reportId", report.ID),
		zap.String("actorId", actor.ID))
	return report, nil
}

// Review resolves a pending report. The approved decision requires no reason;
// a rejection without one is a validation error. Both stamp the reviewer.
func (s *ReportService) Review(ctx context.Context, actor *models.User, id string, req dto.ReviewReportRequest) (*models.IndicatorReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusPending {
		return nil, transitionError(report.Status, models.ReportStatus(req.Decision))
	}

	now := time.Now().UTC()
	report.ApprovedBy = &actor.ID
	report.ApprovedAt = &now
	report.UpdatedBy = &actor.ID

	switch models.ReportStatus(req.Decision) {
	case models.ReportStatusApproved:
		report.Status = models.ReportStatusApproved
		report.RejectionReason = nil
	case models.ReportStatusRejected:
		if req.Reason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "rejection requires a reason")
		}
		report.Status = models.ReportStatusRejected
		report.RejectionReason = &req.Reason
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown decision %q", req.Decision))
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review report")
	}

	s.cache.InvalidateDashboards(ctx)
	s.observeTransition(report.Status)
	s.logger.Info("report reviewed",
		zap.String("reportId", report.ID),
		zap.String("decision", string(report.Status)),
		zap.String("reviewerId", actor.ID))
	return report, nil
}

// ReturnToDraft walks a report back to draft from any state, clearing every
// workflow stamp so the next submission starts clean. Like approve and
// reject, only admin and super_admin may do this.
func (s *ReportService) ReturnToDraft(ctx context.Context, actor *models.User, id string) (*models.IndicatorReport, error) {
	if !elevated(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admin or super_admin may return a report to draft")
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	wasApproved := report.Status == models.ReportStatusApproved
	report.Status = models.ReportStatusDraft
	report.ApprovedBy = nil
	report.ApprovedAt = nil
	report.RejectionReason = nil
	report.SubmittedAt = nil
	report.UpdatedBy = &actor.ID

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to return report to draft")
	}

	if wasApproved {
		s.cache.InvalidateDashboards(ctx)
	}
	s.observeTransition(models.ReportStatusDraft)
	return report, nil
}

// Delete soft-deletes one report after the ownership check.
func (s *ReportService) Delete(ctx context.Context, actor *models.User, id string) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := scope.ValidateRecordAccess(actor, scope.EntityReport, report.OrgID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}
	if report.Status == models.ReportStatusApproved {
		s.cache.InvalidateDashboards(ctx)
	}
	return nil
}

// BulkDelete soft-deletes many reports. Ownership is validated over the whole
// batch first; one foreign record rejects everything before any deletion.
// Once past that check the deletes are applied best-effort, one by one.
func (s *ReportService) BulkDelete(ctx context.Context, actor *models.User, req dto.BulkDeleteRequest) (*BulkDeleteResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk delete payload")
	}

	owners, err := s.repo.FindOwnership(ctx, req.IDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report ownership")
	}

	owned := make([]scope.Owned, 0, len(owners))
	for id, orgID := range owners {
		owned = append(owned, scope.Owned{ID: id, OrgID: orgID})
	}
	if err := scope.ValidateBulkAccess(actor, scope.EntityReport, owned); err != nil {
		return nil, err
	}

	deleted, err := s.repo.BulkSoftDelete(ctx, req.IDs, actor.ID)
	if err != nil {
		s.logger.Error("bulk delete aborted mid-batch",
			zap.Int("deleted", deleted),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk delete failed")
	}

	s.cache.InvalidateDashboards(ctx)
	return &BulkDeleteResult{Requested: len(req.IDs), Deleted: deleted}, nil
}

// BulkUpdate renames the program field across many reports under the same
// all-or-nothing ownership gate as BulkDelete. Rows that vanished between the
// gate and the write are skipped.
func (s *ReportService) BulkUpdate(ctx context.Context, actor *models.User, ids []string, program string) (*BulkUpdateResult, error) {
	if len(ids) == 0 || program == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ids and program are required")
	}

	owners, err := s.repo.FindOwnership(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report ownership")
	}
	owned := make([]scope.Owned, 0, len(owners))
	for id, orgID := range owners {
		owned = append(owned, scope.Owned{ID: id, OrgID: orgID})
	}
	if err := scope.ValidateBulkAccess(actor, scope.EntityReport, owned); err != nil {
		return nil, err
	}

	updated := 0
	for _, id := range ids {
		report, err := s.repo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		report.Program = program
		report.UpdatedBy = &actor.ID
		if err := s.repo.Update(ctx, report); err != nil {
			s.logger.Warn("bulk update skipped report", zap.String("reportId", id), zap.Error(err))
			continue
		}
		updated++
	}
	return &BulkUpdateResult{Requested: len(ids), Updated: updated}, nil
}

func (s *ReportService) load(ctx context.Context, id string) (*models.IndicatorReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report")
	}
	return report, nil
}

func buildIndicators(inputs []dto.IndicatorInput) models.IndicatorList {
	indicators := make(models.IndicatorList, 0, len(inputs))
	for _, in := range inputs {
		years := make([]models.YearRecord, 0, len(in.Years))
		for _, y := range in.Years {
			years = append(years, models.DeriveYearRecord(y.Year, y.Target, y.Actual, y.Note))
		}
		indicators = append(indicators, models.Indicator{
			Name:          in.Name,
			TargetUnit:    in.TargetUnit,
			ResourceCount: in.ResourceCount,
			Years:         years,
		})
	}
	return indicators
}

func transitionError(from, to models.ReportStatus) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("cannot move report from %s to %s", from, to))
}
