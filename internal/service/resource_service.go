package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/scope"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// ResourceRepository abstracts persistence for the learning library.
type ResourceRepository interface {
	Create(ctx context.Context, res *models.LearningResource) error
	FindByID(ctx context.Context, id string) (*models.LearningResource, error)
	Update(ctx context.Context, res *models.LearningResource) error
	List(ctx context.Context, filter models.ResourceFilter) ([]models.LearningResource, int, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementDownloads(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id, actorID string) error
	StatsByType(ctx context.Context) ([]models.ResourceStatsSummary, error)
}

// ResourceService manages the learning-material library. Records are
// org-attributed when created by an org-scoped account.
type ResourceService struct {
	repo     ResourceRepository
	logger   *zap.Logger
	validate *validator.Validate
}

// NewResourceService constructs a ResourceService.
func NewResourceService(repo ResourceRepository, logger *zap.Logger) *ResourceService {
	return &ResourceService{repo: repo, logger: logger, validate: validator.New()}
}

// Create stores a new resource. For org_admin authors the record is pinned
// to their own organization; elevated authors may leave it unattributed.
func (s *ResourceService) Create(ctx context.Context, actor *models.User, req dto.CreateResourceRequest) (*models.LearningResource, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	res := &models.LearningResource{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Author:      req.Author,
		AgeGroup:    req.AgeGroup,
		Aspect:      req.Aspect,
		Tags:        req.Tags,
		Thumbnail:   req.Thumbnail,
		URL:         req.URL,
		Active:      true,
		CreatedBy:   actor.ID,
	}

	requested := ""
	if req.OrgID != nil {
		requested = *req.OrgID
	}
	if requested != "" || actor.Role == models.RoleOrgAdmin {
		orgID, orgName, err := scope.ResolveWriteOrg(actor, requested)
		if err != nil {
			return nil, err
		}
		res.OrgID = &orgID
		res.OrgName = &orgName
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}

	s.logger.Info("resource created",
		zap.String("resourceId", res.ID),
		zap.String("type", string(res.Type)),
		zap.String("actorId", actor.ID))
	return res, nil
}

// Get returns one resource and optionally counts the public view.
func (s *ResourceService) Get(ctx context.Context, id string, countView bool) (*models.LearningResource, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if countView {
		if err := s.repo.IncrementViews(ctx, id); err != nil {
			s.logger.Warn("failed to count resource view", zap.String("resourceId", id), zap.Error(err))
		} else {
			res.Views++
		}
	}
	return res, nil
}

// List returns resources; the library is public so no scoping applies to
// reads, only the hidden flag is restricted to elevated callers.
func (s *ResourceService) List(ctx context.Context, actor *models.User, filter models.ResourceFilter) ([]models.LearningResource, int, error) {
	if !elevated(actor) {
		filter.IncludeHidden = false
	}
	resources, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	return resources, total, nil
}

// Update applies a partial edit after the ownership check.
func (s *ResourceService) Update(ctx context.Context, actor *models.User, id string, req dto.UpdateResourceRequest) (*models.LearningResource, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}

	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateOwnership(actor, res); err != nil {
		return nil, err
	}

	if req.Title != nil {
		res.Title = *req.Title
	}
	if req.Description != nil {
		res.Description = *req.Description
	}
	if req.Type != nil {
		res.Type = *req.Type
	}
	if req.Category != nil {
		res.Category = *req.Category
	}
	if req.Author != nil {
		res.Author = *req.Author
	}
	if req.AgeGroup != nil {
		res.AgeGroup = req.AgeGroup
	}
	if req.Aspect != nil {
		res.Aspect = req.Aspect
	}
	if req.Tags != nil {
		res.Tags = req.Tags
	}
	if req.Thumbnail != nil {
		res.Thumbnail = req.Thumbnail
	}
	if req.URL != nil {
		res.URL = req.URL
	}
	if req.Active != nil {
		res.Active = *req.Active
	}
	res.UpdatedBy = &actor.ID

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return res, nil
}

// Download counts a download; the handler redirects to the stored URL.
func (s *ResourceService) Download(ctx context.Context, id string) (*models.LearningResource, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementDownloads(ctx, id); err != nil {
		s.logger.Warn("failed to count resource download", zap.String("resourceId", id), zap.Error(err))
	} else {
		res.Downloads++
	}
	return res, nil
}

// Delete soft-deletes one resource after the ownership check.
func (s *ResourceService) Delete(ctx context.Context, actor *models.User, id string) error {
	res, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.validateOwnership(actor, res); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete resource")
	}
	return nil
}

// Stats aggregates the per-type library counters.
func (s *ResourceService) Stats(ctx context.Context) ([]models.ResourceStatsSummary, error) {
	stats, err := s.repo.StatsByType(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate resource stats")
	}
	return stats, nil
}

func (s *ResourceService) load(ctx context.Context, id string) (*models.LearningResource, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch resource")
	}
	return res, nil
}

// validateOwnership applies the org check only to attributed records. An
// unattributed record is central content and needs an elevated role.
func (s *ResourceService) validateOwnership(actor *models.User, res *models.LearningResource) error {
	if res.OrgID != nil {
		return scope.ValidateRecordAccess(actor, scope.EntityResource, *res.OrgID)
	}
	if !elevated(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "central resources can only be modified by elevated roles")
	}
	return nil
}
