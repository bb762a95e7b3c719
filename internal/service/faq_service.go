package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// FAQRepository abstracts persistence for FAQ entries.
type FAQRepository interface {
	Create(ctx context.Context, faq *models.FAQ) error
	FindByID(ctx context.Context, id string) (*models.FAQ, error)
	Update(ctx context.Context, faq *models.FAQ) error
	List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, error)
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
	Delete(ctx context.Context, id string) error
}

// FAQService manages the public question/answer entries. Writes are gated by
// the faq module permission at the router; reads are public.
type FAQService struct {
	repo     FAQRepository
	logger   *zap.Logger
	validate *validator.Validate
}

// NewFAQService constructs a FAQService.
func NewFAQService(repo FAQRepository, logger *zap.Logger) *FAQService {
	return &FAQService{repo: repo, logger: logger, validate: validator.New()}
}

// Create stores a new FAQ entry.
func (s *FAQService) Create(ctx context.Context, actor *models.User, req dto.CreateFAQRequest) (*models.FAQ, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faq payload")
	}

	faq := &models.FAQ{
		Question:  req.Question,
		Answer:    req.Answer,
		Category:  req.Category,
		Tags:      req.Tags,
		SortOrder: req.SortOrder,
		Active:    true,
		CreatedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faq")
	}
	return faq, nil
}

// Get returns one FAQ entry. Hidden entries are only visible to elevated
// callers; everyone else gets NotFound.
func (s *FAQService) Get(ctx context.Context, actor *models.User, id string) (*models.FAQ, error) {
	faq, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !faq.Active && !elevated(actor) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faq not found")
	}
	return faq, nil
}

func (s *FAQService) load(ctx context.Context, id string) (*models.FAQ, error) {
	faq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faq not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch faq")
	}
	return faq, nil
}

// List returns FAQ entries; hidden ones only for elevated callers.
func (s *FAQService) List(ctx context.Context, actor *models.User, filter models.FAQFilter) ([]models.FAQ, error) {
	if !elevated(actor) {
		filter.IncludeHidden = false
	}
	faqs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faqs")
	}
	return faqs, nil
}

// Update applies a partial edit to an entry.
func (s *FAQService) Update(ctx context.Context, actor *models.User, id string, req dto.UpdateFAQRequest) (*models.FAQ, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faq payload")
	}

	faq, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Question != nil {
		faq.Question = *req.Question
	}
	if req.Answer != nil {
		faq.Answer = *req.Answer
	}
	if req.Category != nil {
		faq.Category = *req.Category
	}
	if req.Tags != nil {
		faq.Tags = req.Tags
	}
	if req.SortOrder != nil {
		faq.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		faq.Active = *req.Active
	}

	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faq")
	}
	return faq, nil
}

// Toggle flips an entry's visibility.
func (s *FAQService) Toggle(ctx context.Context, id string) (*models.FAQ, error) {
	faq, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	faq.Active = !faq.Active
	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle faq")
	}
	return faq, nil
}

// Reorder replaces the display position of the listed entries. Positions are
// applied one by one; an unknown ID fails the request.
func (s *FAQService) Reorder(ctx context.Context, req dto.ReorderFAQRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	for _, item := range req.Items {
		if err := s.repo.UpdateSortOrder(ctx, item.ID, item.SortOrder); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "faq not found: "+item.ID)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder faqs")
		}
	}
	return nil
}

// Delete removes an entry permanently.
func (s *FAQService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "faq not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faq")
	}
	return nil
}
