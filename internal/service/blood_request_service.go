package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

const bloodRequestResource = "blood_request"

type bloodRequestRepository interface {
	Create(ctx context.Context, req *models.BloodRequest) error
	FindByID(ctx context.Context, id string) (*models.BloodRequest, error)
	List(ctx context.Context, filter models.BloodRequestFilter) ([]models.BloodRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus) error
	DeleteWithDonations(ctx context.Context, id string) error
	ListWithDonations(ctx context.Context) ([]models.BloodRequestDetail, error)
}

// BloodRequestService owns the request lifecycle.
type BloodRequestService struct {
	repo      bloodRequestRepository
	audit     AuditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBloodRequestService constructs a BloodRequestService.
func NewBloodRequestService(repo bloodRequestRepository, audit AuditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BloodRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if audit == nil {
		audit = nopAuditRecorder{}
	}
	return &BloodRequestService{repo: repo, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// Create submits a request on behalf of the session user. Payloads are validated before
// any store call; new requests always start pending.
func (s *BloodRequestService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateBloodRequest) (*models.BloodRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid blood request payload")
	}

	request := &models.BloodRequest{
		PatientName:      req.PatientName,
		GuardianName:     req.GuardianName,
		Mobile:           req.Mobile,
		AltMobile:        req.AltMobile,
		Age:              req.Age,
		UnitsNeeded:      req.UnitsNeeded,
		BloodGroup:       req.BloodGroup,
		UrgencyLevel:     req.UrgencyLevel,
		Village:          req.Village,
		Block:            req.Block,
		Pin:              req.Pin,
		District:         req.District,
		State:            req.State,
		ReceivingAddress: req.ReceivingAddress,
		Status:           models.RequestStatusPending,
		RequesterID:      claims.UserID,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Internal(err, "failed to create blood request")
	}
	return request, nil
}

// Get returns one request.
func (s *BloodRequestService) Get(ctx context.Context, id string) (*models.BloodRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blood request not found")
		}
		return nil, appErrors.Internal(err, "failed to load blood request")
	}
	return request, nil
}

// ListPending returns open requests, newest first.
func (s *BloodRequestService) ListPending(ctx context.Context) ([]models.BloodRequest, error) {
	status := models.RequestStatusPending
	requests, err := s.repo.List(ctx, models.BloodRequestFilter{Status: &status})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blood requests")
	}
	return requests, nil
}

// ListMine returns the session user's requests, newest first. limit <= 0 means all.
func (s *BloodRequestService) ListMine(ctx context.Context, claims *models.JWTClaims, limit int) ([]models.BloodRequest, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	requests, err := s.repo.List(ctx, models.BloodRequestFilter{RequesterID: claims.UserID, Limit: limit})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blood requests")
	}
	return requests, nil
}

// ListDetailed returns every request with its donations and donor contacts.
func (s *BloodRequestService) ListDetailed(ctx context.Context) ([]models.BloodRequestDetail, error) {
	details, err := s.repo.ListWithDonations(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blood requests")
	}
	return details, nil
}

// ListAll returns every request, newest first.
func (s *BloodRequestService) ListAll(ctx context.Context) ([]models.BloodRequest, error) {
	requests, err := s.repo.List(ctx, models.BloodRequestFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blood requests")
	}
	return requests, nil
}

// ChangeStatus applies one edge of the transition table as a single status update.
func (s *BloodRequestService) ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateRequestStatus) (*models.BloodRequest, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid status payload")
	}

	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := request.Status
	if !from.CanTransitionTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move request from "+string(from)+" to "+string(req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, from, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "request is no longer "+string(from))
		}
		return nil, appErrors.Internal(err, "failed to update blood request status")
	}
	request.Status = req.Status

	s.metrics.RecordRequestTransition(from, req.Status)
	payload, _ := json.Marshal(map[string]models.RequestStatus{"from": from, "to": req.Status})
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionRequestStatus, bloodRequestResource, id, payload))
	return request, nil
}

// Delete removes the request and every donation referencing it in one transaction.
func (s *BloodRequestService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if !claims.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.repo.DeleteWithDonations(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "blood request not found")
		}
		return appErrors.Internal(err, "failed to delete blood request")
	}
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionRequestDelete, bloodRequestResource, id, nil))
	return nil
}

// Transitions publishes the lifecycle table in a stable order.
func (s *BloodRequestService) Transitions() []dto.RequestTransition {
	table := models.RequestTransitions()
	out := make([]dto.RequestTransition, 0, len(table))
	for from, to := range table {
		out = append(out, dto.RequestTransition{From: from, To: to})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}
