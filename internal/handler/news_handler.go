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

// NewsHandler exposes news article endpoints.
type NewsHandler struct {
	service *service.NewsService
}

// NewNewsHandler constructs a news handler.
func NewNewsHandler(svc *service.NewsService) *NewsHandler {
	return &NewsHandler{service: svc}
}

// List godoc
// @Summary List news articles
// @Description Anonymous and org-scoped callers only see published articles
// @Tags News
// @Produce json
// @Param status query string false "Filter by status (staff only)"
// @Param category query string false "Filter by category"
// @Param search query string false "Search title and content"
// @Success 200 {object} response.Envelope
// @Router /news [get]
func (h *NewsHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := models.NewsFilter{
		Status:   models.NewsStatus(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	articles, total, err := h.service.List(c.Request.Context(), userFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, articles, pagination(page, pageSize, total))
}

// Get godoc
// @Summary Get one article
// @Description Counts a public view; drafts are hidden from public callers
// @Tags News
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /news/{id} [get]
func (h *NewsHandler) Get(c *gin.Context) {
	actor := userFromContext(c)
	article, err := h.service.Get(c.Request.Context(), actor, c.Param("id"), actor == nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Create godoc
// @Summary Create article
// @Tags News
// @Accept json
// @Produce json
// @Param payload body dto.CreateNewsRequest true "Article payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /news [post]
func (h *NewsHandler) Create(c *gin.Context) {
	var req dto.CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid article payload"))
		return
	}

	article, err := h.service.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, article)
}

// Update godoc
// @Summary Update article content
// @Tags News
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.UpdateNewsRequest true "Article payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /news/{id} [put]
func (h *NewsHandler) Update(c *gin.Context) {
	var req dto.UpdateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid article payload"))
		return
	}

	article, err := h.service.Update(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// UpdateStatus godoc
// @Summary Publish or unpublish an article
// @Description Publishing is restricted to super_admin
// @Tags News
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.UpdateNewsStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /news/{id}/status [patch]
func (h *NewsHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateNewsStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	article, err := h.service.UpdateStatus(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Publish godoc
// @Summary Publish a draft article
// @Tags News
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /news/{id}/publish [post]
func (h *NewsHandler) Publish(c *gin.Context) {
	article, err := h.service.UpdateStatus(c.Request.Context(), userFromContext(c), c.Param("id"),
		dto.UpdateNewsStatusRequest{Status: models.NewsStatusPublish})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// ReturnToDraft godoc
// @Summary Unpublish an article back to draft
// @Tags News
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /news/{id}/return-draft [post]
func (h *NewsHandler) ReturnToDraft(c *gin.Context) {
	article, err := h.service.UpdateStatus(c.Request.Context(), userFromContext(c), c.Param("id"),
		dto.UpdateNewsStatusRequest{Status: models.NewsStatusDraft})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Like godoc
// @Summary Like an article
// @Tags News
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /news/{id}/like [post]
func (h *NewsHandler) Like(c *gin.Context) {
	likes, err := h.service.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"likes": likes}, nil)
}

// Delete godoc
// @Summary Soft delete an article
// @Tags News
// @Produce json
// @Param id path string true "Article ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /news/{id} [delete]
func (h *NewsHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
