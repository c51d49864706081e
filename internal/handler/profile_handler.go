package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type profileService interface {
	Register(ctx context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, bool, error)
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, error)
	Lock(ctx context.Context, userID string) (*models.BloodGroupLock, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
}

// ProfileHandler serves donor profile endpoints.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register godoc
// @Summary Register as a donor
// @Description Creates the caller's donor profile, or updates it when one exists
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.ProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles [post]
func (h *ProfileHandler) Register(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	var req dto.ProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}

	profile, created, err := h.service.Register(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, profile)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Me godoc
// @Summary Get own profile
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	profile, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update own profile
// @Description The blood group may change only once after registration
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.ProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	var req dto.ProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}

	profile, err := h.service.Update(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Lock godoc
// @Summary Blood group lock state
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/me/blood-group-lock [get]
func (h *ProfileHandler) Lock(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	lock, err := h.service.Lock(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lock, nil)
}

// AdminList godoc
// @Summary List donor profiles
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/profiles [get]
func (h *ProfileHandler) AdminList(c *gin.Context) {
	filter := models.ProfileFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	profiles, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, &response.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}
