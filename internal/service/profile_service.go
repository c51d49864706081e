package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	UpdateWithBloodGroupChange(ctx context.Context, profile *models.Profile, change *models.BloodGroupChange) error
	FindBloodGroupChange(ctx context.Context, userID string) (*models.BloodGroupChange, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
}

type searchInvalidator interface {
	Invalidate(ctx context.Context)
}

// ProfileService manages donor profiles and enforces the one-time blood group change.
type ProfileService struct {
	repo        profileRepository
	invalidator searchInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, invalidator searchInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, invalidator: invalidator, validator: validate, logger: logger}
}

// Register creates the session user's donor profile. An existing profile is updated instead,
// so the blood group lock still applies.
func (s *ProfileService) Register(ctx context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, bool, error) {
	if claims == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if _, err := s.repo.FindByID(ctx, claims.UserID); err == nil {
		profile, err := s.Update(ctx, claims, req)
		return profile, false, err
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Internal(err, "failed to load profile")
	}

	profile, err := s.fromRequest(req)
	if err != nil {
		return nil, false, err
	}
	profile.ID = claims.UserID
	profile.Email = claims.Email

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, false, appErrors.Internal(err, "failed to register donor")
	}
	s.invalidate(ctx)
	return profile, true, nil
}

// Get returns the profile of a user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load profile")
	}
	return profile, nil
}

// Update replaces the session user's profile. A blood group different from the stored one
// is accepted once; afterwards the update fails with ErrBloodGroupLocked and nothing is written.
func (s *ProfileService) Update(ctx context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	current, err := s.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	next, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.Email = current.Email
	next.CreatedAt = current.CreatedAt

	if next.BloodGroup == current.BloodGroup {
		if err := s.repo.Update(ctx, next); err != nil {
			return nil, s.mapWriteError(err)
		}
		s.invalidate(ctx)
		return next, nil
	}

	if _, err := s.repo.FindBloodGroupChange(ctx, claims.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrBloodGroupLocked, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check blood group history")
	}

	change := &models.BloodGroupChange{
		UserID:        claims.UserID,
		OldBloodGroup: current.BloodGroup,
		NewBloodGroup: next.BloodGroup,
	}
	if err := s.repo.UpdateWithBloodGroupChange(ctx, next, change); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrBloodGroupLocked, "")
		}
		return nil, s.mapWriteError(err)
	}
	s.logger.Info("blood group changed",
		zap.String("user_id", claims.UserID),
		zap.String("from", string(change.OldBloodGroup)),
		zap.String("to", string(change.NewBloodGroup)))
	s.invalidate(ctx)
	return next, nil
}

// Lock reports whether the user has already used their blood group change.
func (s *ProfileService) Lock(ctx context.Context, userID string) (*models.BloodGroupLock, error) {
	change, err := s.repo.FindBloodGroupChange(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.BloodGroupLock{Locked: false}, nil
		}
		return nil, appErrors.Internal(err, "failed to check blood group history")
	}
	return &models.BloodGroupLock{Locked: true, Change: change}, nil
}

// List pages every donor for administrators.
func (s *ProfileService) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	profiles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Internal(err, "failed to list profiles")
	}
	return profiles, total, nil
}

func (s *ProfileService) fromRequest(req dto.ProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid profile payload")
	}
	profile := &models.Profile{
		Name:       req.Name,
		Mobile:     req.Mobile,
		AltMobile:  req.AltMobile,
		Age:        req.Age,
		Weight:     req.Weight,
		BloodGroup: req.BloodGroup,
		Village:    req.Village,
		Block:      req.Block,
		Pin:        req.Pin,
		District:   req.District,
		State:      req.State,
	}
	if req.LastDonationDate != nil && *req.LastDonationDate != "" {
		date, err := time.Parse("2006-01-02", *req.LastDonationDate)
		if err != nil {
			return nil, appErrors.Validation(err, "invalid last donation date")
		}
		profile.LastDonationDate = &date
	}
	return profile, nil
}

func (s *ProfileService) mapWriteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
	}
	return appErrors.Internal(err, "failed to update profile")
}

func (s *ProfileService) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
}
