package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfauzi77/paudhi-backend/internal/dto"
	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/service"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
	"github.com/mfauzi77/paudhi-backend/pkg/response"
)

// ReportHandler exposes the indicator report workflow endpoints.
type ReportHandler struct {
	service *service.ReportService
	export  *service.ExportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService, export *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc, export: export}
}

func reportFilterFromQuery(c *gin.Context) models.ReportFilter {
	page, pageSize := pageParams(c)
	return models.ReportFilter{
		OrgID:    c.Query("org_id"),
		Status:   models.ReportStatus(c.Query("status")),
		Search:   c.Query("search"),
		Year:     queryInt(c, "year", 0),
		Page:     page,
		PageSize: pageSize,
	}
}

// List godoc
// @Summary List indicator reports
// @Description Organization-scoped accounts only ever see their own reports
// @Tags Reports
// @Produce json
// @Param org_id query string false "Filter by organization"
// @Param status query string false "Filter by workflow status"
// @Param year query int false "Filter by reporting year"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	filter := reportFilterFromQuery(c)
	reports, total, err := h.service.List(c.Request.Context(), userFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination(filter.Page, filter.PageSize, total))
}

// PublicList godoc
// @Summary List approved reports for the public site
// @Tags Reports
// @Produce json
// @Param org_id query string false "Filter by organization"
// @Success 200 {object} response.Envelope
// @Router /reports/public [get]
func (h *ReportHandler) PublicList(c *gin.Context) {
	filter := reportFilterFromQuery(c)
	reports, total, err := h.service.PublicList(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination(filter.Page, filter.PageSize, total))
}

// PublicGet godoc
// @Summary Get one approved report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/public/{id} [get]
func (h *ReportHandler) PublicGet(c *gin.Context) {
	report, err := h.service.PublicGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Years godoc
// @Summary Reporting years available in stored data
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/years/public [get]
func (h *ReportHandler) Years(c *gin.Context) {
	years, err := h.service.Years(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// Pending godoc
// @Summary Review queue of pending reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/pending [get]
func (h *ReportHandler) Pending(c *gin.Context) {
	reports, err := h.service.Pending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Get godoc
// @Summary Get one indicator report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.service.Get(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Create godoc
// @Summary Create indicator report
// @Description New reports always start in draft
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	report, err := h.service.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Update godoc
// @Summary Update report content
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.UpdateReportRequest true "Report payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(c *gin.Context) {
	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	report, err := h.service.Update(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Submit godoc
// @Summary Submit report for review
// @Description Moves a draft into the pending queue
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/submit [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	report, err := h.service.Submit(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Review godoc
// @Summary Approve or reject a pending report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.ReviewReportRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/{id}/review [post]
func (h *ReportHandler) Review(c *gin.Context) {
	var req dto.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	report, err := h.service.Review(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Approve godoc
// @Summary Approve a pending report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/approve [post]
func (h *ReportHandler) Approve(c *gin.Context) {
	report, err := h.service.Review(c.Request.Context(), userFromContext(c), c.Param("id"),
		dto.ReviewReportRequest{Decision: string(models.ReportStatusApproved)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Reject godoc
// @Summary Reject a pending report with a reason
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body object true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/reject [post]
func (h *ReportHandler) Reject(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}

	report, err := h.service.Review(c.Request.Context(), userFromContext(c), c.Param("id"),
		dto.ReviewReportRequest{Decision: string(models.ReportStatusRejected), Reason: payload.Reason})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ReturnToDraft godoc
// @Summary Return report to draft
// @Description Clears review stamps so the report can be edited and resubmitted
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/{id}/return-draft [post]
func (h *ReportHandler) ReturnToDraft(c *gin.Context) {
	report, err := h.service.ReturnToDraft(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Delete godoc
// @Summary Soft delete a report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Bulk godoc
// @Summary Bulk delete or update reports
// @Description Rejects the whole batch if any report belongs to another organization
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.BulkOperationRequest true "Operation and report IDs"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/bulk [post]
func (h *ReportHandler) Bulk(c *gin.Context) {
	var req dto.BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}

	actor := userFromContext(c)
	switch req.Operation {
	case "delete":
		if !actor.HasPermission(models.ModuleReports, models.ActionDelete) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing delete permission on "+string(models.ModuleReports)))
			return
		}
		result, err := h.service.BulkDelete(c.Request.Context(), actor, dto.BulkDeleteRequest{IDs: req.IDs})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	case "update":
		if !actor.HasPermission(models.ModuleReports, models.ActionUpdate) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing update permission on "+string(models.ModuleReports)))
			return
		}
		program := ""
		if req.Program != nil {
			program = *req.Program
		}
		result, err := h.service.BulkUpdate(c.Request.Context(), actor, req.IDs, program)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown bulk operation"))
	}
}

// Export godoc
// @Summary Export reports as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	filter := reportFilterFromQuery(c)

	result, err := h.export.ExportReports(c.Request.Context(), userFromContext(c), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
