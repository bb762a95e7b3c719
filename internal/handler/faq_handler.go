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

// FAQHandler exposes FAQ endpoints.
type FAQHandler struct {
	service *service.FAQService
}

// NewFAQHandler constructs a FAQ handler.
func NewFAQHandler(svc *service.FAQService) *FAQHandler {
	return &FAQHandler{service: svc}
}

// List godoc
// @Summary List FAQ entries
// @Tags FAQ
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Search question and answer"
// @Success 200 {object} response.Envelope
// @Router /faq [get]
func (h *FAQHandler) List(c *gin.Context) {
	filter := models.FAQFilter{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		IncludeHidden: c.Query("include_hidden") == "true",
	}

	faqs, err := h.service.List(c.Request.Context(), userFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faqs, nil)
}

// All godoc
// @Summary List all FAQ entries including hidden ones
// @Tags FAQ
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /faq/all [get]
func (h *FAQHandler) All(c *gin.Context) {
	filter := models.FAQFilter{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		IncludeHidden: true,
	}

	faqs, err := h.service.List(c.Request.Context(), userFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faqs, nil)
}

// Get godoc
// @Summary Get one FAQ entry
// @Tags FAQ
// @Produce json
// @Param id path string true "FAQ ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faq/{id} [get]
func (h *FAQHandler) Get(c *gin.Context) {
	faq, err := h.service.Get(c.Request.Context(), userFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faq, nil)
}

// Create godoc
// @Summary Create FAQ entry
// @Tags FAQ
// @Accept json
// @Produce json
// @Param payload body dto.CreateFAQRequest true "FAQ payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faq [post]
func (h *FAQHandler) Create(c *gin.Context) {
	var req dto.CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faq payload"))
		return
	}

	faq, err := h.service.Create(c.Request.Context(), userFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faq)
}

// Update godoc
// @Summary Update FAQ entry
// @Tags FAQ
// @Accept json
// @Produce json
// @Param id path string true "FAQ ID"
// @Param payload body dto.UpdateFAQRequest true "FAQ payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faq/{id} [put]
func (h *FAQHandler) Update(c *gin.Context) {
	var req dto.UpdateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid faq payload"))
		return
	}

	faq, err := h.service.Update(c.Request.Context(), userFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faq, nil)
}

// Toggle godoc
// @Summary Show or hide a FAQ entry
// @Tags FAQ
// @Produce json
// @Param id path string true "FAQ ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faq/{id}/toggle [patch]
func (h *FAQHandler) Toggle(c *gin.Context) {
	faq, err := h.service.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faq, nil)
}

// Reorder godoc
// @Summary Replace the display order of FAQ entries
// @Tags FAQ
// @Accept json
// @Produce json
// @Param payload body dto.ReorderFAQRequest true "Entry positions"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faq/reorder [put]
func (h *FAQHandler) Reorder(c *gin.Context) {
	var req dto.ReorderFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}

	if err := h.service.Reorder(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reordered": len(req.Items)}, nil)
}

// Delete godoc
// @Summary Delete FAQ entry
// @Tags FAQ
// @Produce json
// @Param id path string true "FAQ ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faq/{id} [delete]
func (h *FAQHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
