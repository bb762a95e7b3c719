package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// CreateFAQRequest describes payload for adding a FAQ entry.
type CreateFAQRequest struct {
	Question  string            `json:"question" validate:"required"`
	Answer    string            `json:"answer" validate:"required"`
	Category  string            `json:"category"`
	Tags      models.StringList `json:"tags"`
	SortOrder int               `json:"sort_order"`
}

// FAQOrderInput positions one entry within the display order.
type FAQOrderInput struct {
	ID        string `json:"id" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

// ReorderFAQRequest replaces the display order of the listed entries.
type ReorderFAQRequest struct {
	Items []FAQOrderInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateFAQRequest describes a partial FAQ update.
type UpdateFAQRequest struct {
	Question  *string           `json:"question"`
	Answer    *string           `json:"answer"`
	Category  *string           `json:"category"`
	Tags      models.StringList `json:"tags"`
	SortOrder *int              `json:"sort_order"`
	Active    *bool             `json:"active"`
}
