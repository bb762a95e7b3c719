package dto

import "github.com/mfauzi77/paudhi-backend/internal/models"

// YearInput is one year's raw figures as submitted by a ministry. Target and
// actual accept numbers, comma-decimal strings, or "-" for not reported.
type YearInput struct {
	Year   int                `json:"year" validate:"required,min=2000,max=2100"`
	Target models.MetricValue `json:"target"`
	Actual models.MetricValue `json:"actual"`
	Note   string             `json:"note"`
}

// IndicatorInput is one indicator block of a create or update payload.
type IndicatorInput struct {
	Name          string      `json:"name" validate:"required"`
	TargetUnit    string      `json:"target_unit"`
	ResourceCount float64     `json:"resource_count" validate:"min=0"`
	Years         []YearInput `json:"years" validate:"dive"`
}

// CreateReportRequest describes the payload for creating an indicator report.
// OrgID is ignored for org-scoped users; their own organization is applied.
type CreateReportRequest struct {
	OrgID      string           `json:"org_id"`
	Program    string           `json:"program" validate:"required"`
	Indicators []IndicatorInput `json:"indicators" validate:"dive"`
}

// UpdateReportRequest describes a partial report update. Nil fields are left
// untouched; workflow fields (status, reviewer stamps) are never settable here.
type UpdateReportRequest struct {
	Program    *string          `json:"program"`
	Indicators []IndicatorInput `json:"indicators" validate:"omitempty,dive"`
}

// ReviewReportRequest carries the approve/reject decision of a reviewer.
type ReviewReportRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Reason   string `json:"reason"`
}

// BulkDeleteRequest lists record IDs for a bulk soft delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// BulkOperationRequest is the combined bulk endpoint payload. Program is only
// consulted for the update operation.
type BulkOperationRequest struct {
	Operation string   `json:"operation" validate:"required,oneof=delete update"`
	IDs       []string `json:"ids" validate:"required,min=1,dive,required"`
	Program   *string  `json:"program"`
}
