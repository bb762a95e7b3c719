package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// CreateResourceRequest describes payload for adding a learning resource.
type CreateResourceRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	Type        models.ResourceType `json:"type" validate:"required,oneof=guide video tools"`
	Category    string              `json:"category" validate:"required"`
	Author      string              `json:"author"`
	AgeGroup    *string             `json:"age_group"`
	Aspect      *string             `json:"aspect"`
	Tags        models.StringList   `json:"tags"`
	Thumbnail   *string             `json:"thumbnail"`
	URL         *string             `json:"url"`
	OrgID       *string             `json:"org_id"`
}

// UpdateResourceRequest describes a partial learning resource update.
type UpdateResourceRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Type        *models.ResourceType `json:"type" validate:"omitempty,oneof=guide video tools"`
	Category    *string              `json:"category"`
	Author      *string              `json:"author"`
	AgeGroup    *string              `json:"age_group"`
	Aspect      *string              `json:"aspect"`
	Tags        models.StringList    `json:"tags"`
	Thumbnail   *string              `json:"thumbnail"`
	URL         *string              `json:"url"`
	Active      *bool                `json:"active"`
}
