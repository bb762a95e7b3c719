package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfauzi77/paudhi-backend/internal/service"
	"github.com/mfauzi77/paudhi-backend/pkg/response"
)

// DashboardHandler exposes the public and staff dashboard aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Public godoc
// @Summary Public achievement summary
// @Description Aggregates approved reports only
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Public(c *gin.Context) {
	summary, err := h.service.PublicSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Admin godoc
// @Summary Staff workload summary
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	summary, err := h.service.AdminSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
