package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/pkg/response"
)

// OrgHandler serves the fixed ministry catalogue.
type OrgHandler struct{}

// NewOrgHandler constructs an org handler.
func NewOrgHandler() *OrgHandler {
	return &OrgHandler{}
}

// List godoc
// @Summary List participating ministries
// @Tags Organizations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /orgs [get]
func (h *OrgHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.OrgCatalogue, nil)
}
