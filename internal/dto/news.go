package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// CreateNewsRequest describes payload for creating a news article. Status is
// optional and defaults to draft; non-elevated callers cannot set publish.
type CreateNewsRequest struct {
	Title    string            `json:"title" validate:"required"`
	Content  string            `json:"content" validate:"required"`
	Excerpt  string            `json:"excerpt"`
	Image    *string           `json:"image"`
	Source   *string           `json:"source"`
	Category string            `json:"category"`
	Status   models.NewsStatus `json:"status" validate:"omitempty,oneof=draft publish"`
}

// UpdateNewsRequest describes a partial news update.
type UpdateNewsRequest struct {
	Title    *string            `json:"title"`
	Content  *string            `json:"content"`
	Excerpt  *string            `json:"excerpt"`
	Image    *string            `json:"image"`
	Source   *string            `json:"source"`
	Category *string            `json:"category"`
	Status   *models.NewsStatus `json:"status" validate:"omitempty,oneof=draft publish"`
	Active   *bool              `json:"active"`
}

// UpdateNewsStatusRequest carries the dedicated publish/unpublish transition.
type UpdateNewsStatusRequest struct {
	Status models.NewsStatus `json:"status" validate:"required,oneof=draft publish"`
}
