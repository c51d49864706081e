package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, claims *models.JWTClaims) (*models.Dashboard, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Personal dashboard
// @Description Counters plus recent requests and upcoming donations of the caller
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	dashboard, err := h.service.Get(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
