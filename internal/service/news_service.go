package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// NewsRepository abstracts persistence used by the news workflow.
type NewsRepository interface {
	Create(ctx context.Context, article *models.NewsArticle) error
	FindByID(ctx context.Context, id string) (*models.NewsArticle, error)
	Update(ctx context.Context, article *models.NewsArticle) error
	List(ctx context.Context, filter models.NewsFilter) ([]models.NewsArticle, int, error)
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) (int64, error)
	SoftDelete(ctx context.Context, id string) error
}

// NewsService implements the news content lifecycle with its two-state
// publication workflow. Publishing is reserved to super_admin.
type NewsService struct {
	repo       NewsRepository
	logger     *zap.Logger
	validate   *validator.Validate
	uploadPath string
}

// NewNewsService constructs a NewsService. uploadPath is the prefix applied
// to bare image filenames.
func NewNewsService(repo NewsRepository, logger *zap.Logger, uploadPath string) *NewsService {
	if uploadPath == "" {
		uploadPath = "/uploads/news/"
	}
	return &NewsService{
		repo:       repo,
		logger:     logger,
		validate:   validator.New(),
		uploadPath: uploadPath,
	}
}

// Create stores a new article authored by the actor. Articles start in draft
// unless a super_admin creates them published directly.
func (s *NewsService) Create(ctx context.Context, actor *models.User, req dto.CreateNewsRequest) (*models.NewsArticle, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}

	status := req.Status
	if status == "" {
		status = models.NewsStatusDraft
	}
	if status == models.NewsStatusPublish && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super_admin may publish news")
	}

	article := &models.NewsArticle{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Image:    s.normalizeImage(req.Image),
		AuthorID: actor.ID,
		Status:   status,
		Source:   req.Source,
		Category: req.Category,
		Active:   true,
	}
	applyAuthorSource(article, actor)

	if status == models.NewsStatusPublish {
		now := time.Now().UTC()
		article.ApprovedBy = &actor.ID
		article.ApprovedAt = &now
		article.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create news")
	}

	s.logger.Info("news created",
		zap.String("newsId", article.ID),
		zap.String("status", string(article.Status)),
		zap.String("authorId", actor.ID))
	return article, nil
}

// Get returns one article under the visibility rule: non-elevated callers
// (including anonymous ones) only see published articles. Public reads bump
// the view counter.
func (s *NewsService) Get(ctx context.Context, actor *models.User, id string, countView bool) (*models.NewsArticle, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !elevated(actor) && article.Status != models.NewsStatusPublish {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "news not found")
	}
	if countView {
		if err := s.repo.IncrementViews(ctx, id); err != nil && err != sql.ErrNoRows {
			s.logger.Warn("failed to count news view", zap.String("newsId", id), zap.Error(err))
		} else if err == nil {
			article.Views++
		}
	}
	return article, nil
}

// List returns articles. Anonymous and non-elevated callers are pinned to
// published articles regardless of the requested status filter.
func (s *NewsService) List(ctx context.Context, actor *models.User, filter models.NewsFilter) ([]models.NewsArticle, int, error) {
	if !elevated(actor) {
		filter.Status = models.NewsStatusPublish
	}
	articles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	return articles, total, nil
}

// Update applies a partial edit. A status change to publish through this
// generic path is rejected for everyone below super_admin, independent of
// the dedicated transition endpoint.
func (s *NewsService) Update(ctx context.Context, actor *models.User, id string, req dto.UpdateNewsRequest) (*models.NewsArticle, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}

	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canEdit(actor, article); err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status == models.NewsStatusPublish && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super_admin may publish news")
	}

	if req.Title != nil {
		article.Title = *req.Title
	}
	if req.Content != nil {
		article.Content = *req.Content
	}
	if req.Excerpt != nil {
		article.Excerpt = *req.Excerpt
	}
	if req.Image != nil {
		article.Image = s.normalizeImage(req.Image)
	}
	if req.Source != nil {
		article.Source = req.Source
	}
	if req.Category != nil {
		article.Category = *req.Category
	}
	if req.Active != nil {
		article.Active = *req.Active
	}
	if req.Status != nil && *req.Status != article.Status {
		s.applyTransition(article, actor, *req.Status)
	}
	applyAuthorSource(article, actor)

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update news")
	}
	return article, nil
}

// UpdateStatus runs the dedicated publish/return-to-draft transition.
func (s *NewsService) UpdateStatus(ctx context.Context, actor *models.User, id string, req dto.UpdateNewsStatusRequest) (*models.NewsArticle, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super_admin may change news status")
	}

	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == models.NewsStatusPublish && article.Status != models.NewsStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot publish news from %s", article.Status))
	}

	s.applyTransition(article, actor, req.Status)

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update news status")
	}

	s.logger.Info("news status changed",
		zap.String("newsId", article.ID),
		zap.String("status", string(article.Status)),
		zap.String("actorId", actor.ID))
	return article, nil
}

// Like bumps the like counter and returns the new total.
func (s *NewsService) Like(ctx context.Context, id string) (int64, error) {
	likes, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to like news")
	}
	return likes, nil
}

// Delete soft-deletes one article. Authors may delete their own drafts;
// anything else requires an elevated role.
func (s *NewsService) Delete(ctx context.Context, actor *models.User, id string) error {
	article, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canEdit(actor, article); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete news")
	}
	return nil
}

func (s *NewsService) load(ctx context.Context, id string) (*models.NewsArticle, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch news")
	}
	return article, nil
}

func (s *NewsService) canEdit(actor *models.User, article *models.NewsArticle) error {
	if elevated(actor) || article.AuthorID == actor.ID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "you may only modify your own articles")
}

func (s *NewsService) applyTransition(article *models.NewsArticle, actor *models.User, status models.NewsStatus) {
	switch status {
	case models.NewsStatusPublish:
		now := time.Now().UTC()
		article.Status = models.NewsStatusPublish
		article.ApprovedBy = &actor.ID
		article.ApprovedAt = &now
		article.PublishedAt = &now
		article.Active = true
	case models.NewsStatusDraft:
		article.Status = models.NewsStatusDraft
		article.ApprovedBy = nil
		article.ApprovedAt = nil
		article.PublishedAt = nil
	}
}

// normalizeImage keeps absolute URLs and rooted paths, and prefixes bare
// filenames with the upload directory.
func (s *NewsService) normalizeImage(image *string) *string {
	if image == nil {
		return nil
	}
	ref := strings.TrimSpace(*image)
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return &ref
	}
	normalized := strings.TrimSuffix(s.uploadPath, "/") + "/" + ref
	return &normalized
}

// applyAuthorSource stamps the source from the author's organization when the
// author is org-scoped. The client-supplied value never wins in that case.
func applyAuthorSource(article *models.NewsArticle, actor *models.User) {
	if actor.Role == models.RoleOrgAdmin && actor.OrgName != nil {
		article.Source = actor.OrgName
	}
}

func elevated(actor *models.User) bool {
	return actor != nil && actor.Role.Elevated()
}
