package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type donationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	UpdateStatus(ctx context.Context, id string, status models.DonationStatus) error
	ListUpcoming(ctx context.Context, donorID string, from time.Time, limit int) ([]models.UpcomingDonation, error)
}

type requestFinder interface {
	FindByID(ctx context.Context, id string) (*models.BloodRequest, error)
}

// DonationService schedules donations and moves them to a terminal state.
type DonationService struct {
	repo      donationRepository
	requests  requestFinder
	audit     AuditRecorder
	window    time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDonationService constructs a DonationService. window bounds how far ahead appointments may be booked.
func NewDonationService(repo donationRepository, requests requestFinder, audit AuditRecorder, window time.Duration, validate *validator.Validate, logger *zap.Logger) *DonationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if audit == nil {
		audit = nopAuditRecorder{}
	}
	if window <= 0 {
		window = 92 * 24 * time.Hour
	}
	return &DonationService{
		repo:      repo,
		requests:  requests,
		audit:     audit,
		window:    window,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Schedule books an appointment for the session user between today and today plus the window.
func (s *DonationService) Schedule(ctx context.Context, claims *models.JWTClaims, req dto.ScheduleDonationRequest) (*models.Donation, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid donation payload")
	}
	date, err := time.Parse(dateLayout, req.DonationDate)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid donation date")
	}
	today := s.today()
	if date.Before(today) || date.After(today.Add(s.window)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donation date must be between today and "+today.Add(s.window).Format(dateLayout))
	}

	if req.RequestID != nil && *req.RequestID != "" {
		request, err := s.requests.FindByID(ctx, *req.RequestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "blood request not found")
			}
			return nil, appErrors.Internal(err, "failed to load blood request")
		}
		if request.Status == models.RequestStatusCompleted || request.Status == models.RequestStatusCancelled {
			return nil, appErrors.Clone(appErrors.ErrConflict, "blood request is closed")
		}
	} else {
		req.RequestID = nil
	}

	donation := &models.Donation{
		DonorID:      claims.UserID,
		RequestID:    req.RequestID,
		DonationDate: date,
		Status:       models.DonationStatusScheduled,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, appErrors.Internal(err, "failed to schedule donation")
	}
	return donation, nil
}

// Upcoming lists the session user's scheduled donations from today on, soonest first.
func (s *DonationService) Upcoming(ctx context.Context, claims *models.JWTClaims, limit int) ([]models.UpcomingDonation, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	donations, err := s.repo.ListUpcoming(ctx, claims.UserID, s.today(), limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list donations")
	}
	return donations, nil
}

// ChangeStatus completes or cancels a scheduled donation. Owners may only cancel their own.
func (s *DonationService) ChangeStatus(ctx context.Context, claims *models.JWTClaims, id string, req dto.UpdateDonationStatus) (*models.Donation, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid status payload")
	}

	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "donation not found")
		}
		return nil, appErrors.Internal(err, "failed to load donation")
	}

	if !claims.IsAdmin() {
		if donation.DonorID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "donation belongs to another donor")
		}
		if req.Status != models.DonationStatusCancelled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "donors can only cancel their donations")
		}
	}
	if !donation.Status.CanTransitionTo(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "cannot move donation from "+string(donation.Status)+" to "+string(req.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Internal(err, "failed to update donation status")
	}
	from := donation.Status
	donation.Status = req.Status

	payload, _ := json.Marshal(map[string]models.DonationStatus{"from": from, "to": req.Status})
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionDonationStatus, "donation", id, payload))
	return donation, nil
}

func (s *DonationService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
