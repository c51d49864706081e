package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type donationService interface {
	Schedule(ctx context.Context, claims *models.JWTClaims, req dto.ScheduleDonationRequest) (*models.Donation, error)
	Upcoming(ctx context.Context, claims *models.JWTClaims, limit int) ([]models.UpcomingDonation, error)
	ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateDonationStatus) (*models.Donation, error)
}

// DonationHandler serves donation appointment endpoints.
type DonationHandler struct {
	service donationService
}

// NewDonationHandler constructs a DonationHandler.
func NewDonationHandler(service donationService) *DonationHandler {
	return &DonationHandler{service: service}
}

// Schedule godoc
// @Summary Schedule a donation
// @Tags Donations
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleDonationRequest true "Appointment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /donations [post]
func (h *DonationHandler) Schedule(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	var req dto.ScheduleDonationRequest
	if !bindJSON(c, &req, "invalid donation payload") {
		return
	}

	donation, err := h.service.Schedule(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, donation)
}

// Upcoming godoc
// @Summary Upcoming scheduled donations
// @Tags Donations
// @Produce json
// @Param limit query int false "Maximum rows" default(5)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /donations/upcoming [get]
func (h *DonationHandler) Upcoming(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	donations, err := h.service.Upcoming(c.Request.Context(), claims, queryInt(c, "limit", 5))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donations, nil)
}

// ChangeStatus godoc
// @Summary Complete or cancel a donation
// @Description Owners may cancel; admins may complete or cancel
// @Tags Donations
// @Accept json
// @Produce json
// @Param id path string true "Donation ID"
// @Param payload body dto.UpdateDonationStatus true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /donations/{id}/status [patch]
func (h *DonationHandler) ChangeStatus(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "donation")
	if !ok {
		return
	}
	var req dto.UpdateDonationStatus
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}

	donation, err := h.service.ChangeStatus(c.Request.Context(), claims, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, donation, nil)
}
