package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/middleware"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type donorSearchService interface {
	Search(ctx context.Context, criteria models.DonorSearchCriteria) ([]models.Profile, bool)
}

// DonorSearchHandler serves the public donor search.
type DonorSearchHandler struct {
	service donorSearchService
}

// NewDonorSearchHandler constructs a DonorSearchHandler.
func NewDonorSearchHandler(service donorSearchService) *DonorSearchHandler {
	return &DonorSearchHandler{service: service}
}

// Search godoc
// @Summary Search donors
// @Description Every non-empty filter narrows the result; failures yield an empty list
// @Tags Donors
// @Produce json
// @Param blood_group query string false "Blood group"
// @Param state query string false "State"
// @Param district query string false "District"
// @Param block query string false "Block"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /donors/search [get]
func (h *DonorSearchHandler) Search(c *gin.Context) {
	criteria := models.DonorSearchCriteria{
		BloodGroup: c.Query("blood_group"),
		State:      c.Query("state"),
		District:   c.Query("district"),
		Block:      c.Query("block"),
	}

	donors, hit := h.service.Search(c.Request.Context(), criteria)
	if donors == nil {
		donors = []models.Profile{}
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, donors, nil, middleware.ResponseMeta(c))
}
