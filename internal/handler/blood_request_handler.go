package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/service"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type bloodRequestService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateBloodRequest) (*models.BloodRequest, error)
	Get(ctx context.Context, id string) (*models.BloodRequest, error)
	ListPending(ctx context.Context) ([]models.BloodRequest, error)
	ListMine(ctx context.Context, claims *models.JWTClaims, limit int) ([]models.BloodRequest, error)
	ListDetailed(ctx context.Context) ([]models.BloodRequestDetail, error)
	ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateRequestStatus) (*models.BloodRequest, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
	Transitions() []dto.RequestTransition
}

type requestExporter interface {
	ExportRequests(ctx context.Context, format string) (*service.ExportResult, error)
}

// BloodRequestHandler serves the request lifecycle endpoints.
type BloodRequestHandler struct {
	service  bloodRequestService
	exporter requestExporter
}

// NewBloodRequestHandler constructs a BloodRequestHandler.
func NewBloodRequestHandler(service bloodRequestService, exporter requestExporter) *BloodRequestHandler {
	return &BloodRequestHandler{service: service, exporter: exporter}
}

// ListPending godoc
// @Summary List open blood requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *BloodRequestHandler) ListPending(c *gin.Context) {
	requests, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Create godoc
// @Summary Submit a blood request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateBloodRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /requests [post]
func (h *BloodRequestHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBloodRequest
	if !bindJSON(c, &req, "invalid request payload") {
		return
	}

	created, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Mine godoc
// @Summary List own blood requests
// @Tags Requests
// @Produce json
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/mine [get]
func (h *BloodRequestHandler) Mine(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	requests, err := h.service.ListMine(c.Request.Context(), claims, queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get a blood request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *BloodRequestHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "blood request")
	if !ok {
		return
	}
	request, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// AdminList godoc
// @Summary List all requests with donations
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/requests [get]
func (h *BloodRequestHandler) AdminList(c *gin.Context) {
	requests, err := h.service.ListDetailed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Transitions godoc
// @Summary Allowed status transitions
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/requests/transitions [get]
func (h *BloodRequestHandler) Transitions(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Transitions(), nil)
}

// ChangeStatus godoc
// @Summary Change request status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateRequestStatus true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/requests/{id}/status [patch]
func (h *BloodRequestHandler) ChangeStatus(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "blood request")
	if !ok {
		return
	}
	var req dto.UpdateRequestStatus
	if !bindJSON(c, &req, "invalid status payload") {
		return
	}

	updated, err := h.service.ChangeStatus(c.Request.Context(), claims, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete a request and its donations
// @Tags Admin
// @Param id path string true "Request ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/requests/{id} [delete]
func (h *BloodRequestHandler) Delete(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "blood request")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export blood requests
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/requests/export [get]
func (h *BloodRequestHandler) Export(c *gin.Context) {
	result, err := h.exporter.ExportRequests(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
