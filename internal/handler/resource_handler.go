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

// ResourceHandler exposes the learning library endpoints.
type ResourceHandler struct {
	service *service.ResourceService
}

// NewResourceHandler constructs a resource handler.
func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: svc}
}

// List godoc
// @Summary List learning resources
// @Tags Resources
// @Produce json
// @Param type query string false "Filter by type (guide, video, tools)"
// @Param category query string false "Filter by category"
// @Param search query string false "Search title and description"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.ResourceFilter{
		Type:          models.ResourceType(c.Query("type")),
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		OrgID:         c.Query("org_id"),
		IncludeHidden: c.Query("include_hidden") == "true",
		Page:          page,
		PageSize:      pageSize,
	}

	resources, total, err := h.service.List(c.Request.Context(), userFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination(page, pageSize, total))
}

// Get godoc
// @Summary Get one resource
// @Description Counts a public view
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.service.Get(c.Request.Context(), c.Param("id"), userFromContext(c) == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Create godoc
// @Summary Create resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body dto.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resource payload"))
		return
	}

	resource, err := h.service.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Update godoc
// @Summary Update resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dto.UpdateResourceRequest true "Resource payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resource payload"))
		return
	}

	resource, err := h.service.Update(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Download godoc
// @Summary Download a resource
// @Description Counts the download then redirects to the stored URL
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 302 {string} string "redirect"
// @Failure 404 {object} response.Envelope
// @Router /resources/{id}/download [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	resource, err := h.service.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if resource.URL == nil || *resource.URL == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "resource has no downloadable file"))
		return
	}
	c.Redirect(http.StatusFound, *resource.URL)
}

// UpdateStats godoc
// @Summary Record a view or download against a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body object true "Counter type"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id}/stats [patch]
func (h *ResourceHandler) UpdateStats(c *gin.Context) {
	var payload struct {
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stats payload"))
		return
	}

	var (
		resource *models.LearningResource
		err      error
	)
	switch payload.Type {
	case "view":
		resource, err = h.service.Get(c.Request.Context(), c.Param("id"), true)
	case "download":
		resource, err = h.service.Download(c.Request.Context(), c.Param("id"))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "stats type must be view or download"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Stats godoc
// @Summary Library counters per resource type
// @Tags Resources
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /resources/stats [get]
func (h *ResourceHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Delete godoc
// @Summary Soft delete a resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
