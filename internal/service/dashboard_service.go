package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

const dashboardListSize = 5

type dashboardRequestRepository interface {
	List(ctx context.Context, filter models.BloodRequestFilter) ([]models.BloodRequest, error)
	CountByStatus(ctx context.Context, requesterID string, status models.RequestStatus) (int, error)
}

type dashboardDonationRepository interface {
	CountByDonor(ctx context.Context, donorID string, status *models.DonationStatus) (int, error)
	ListUpcoming(ctx context.Context, donorID string, from time.Time, limit int) ([]models.UpcomingDonation, error)
}

// DashboardService aggregates the session user's activity.
type DashboardService struct {
	requests  dashboardRequestRepository
	donations dashboardDonationRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(requests dashboardRequestRepository, donations dashboardDonationRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{requests: requests, donations: donations, logger: logger, now: time.Now}
}

// Get returns counters plus the five most recent requests and five upcoming donations.
// The independent store reads run concurrently; the first failure cancels the rest.
func (s *DashboardService) Get(ctx context.Context, claims *models.JWTClaims) (*models.Dashboard, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	userID := claims.UserID
	scheduled := models.DonationStatusScheduled
	completed := models.DonationStatusCompleted
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var dash models.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	countDonations := func(dest *int, status *models.DonationStatus) func() error {
		return func() error {
			n, err := s.donations.CountByDonor(gctx, userID, status)
			if err != nil {
				return appErrors.Internal(err, "failed to count donations")
			}
			*dest = n
			return nil
		}
	}
	g.Go(countDonations(&dash.Stats.TotalDonations, nil))
	g.Go(countDonations(&dash.Stats.ScheduledDonations, &scheduled))
	g.Go(countDonations(&dash.Stats.CompletedDonations, &completed))
	g.Go(func() error {
		n, err := s.requests.CountByStatus(gctx, userID, models.RequestStatusPending)
		if err != nil {
			return appErrors.Internal(err, "failed to count requests")
		}
		dash.Stats.PendingRequests = n
		return nil
	})
	g.Go(func() error {
		recent, err := s.requests.List(gctx, models.BloodRequestFilter{RequesterID: userID, Limit: dashboardListSize})
		if err != nil {
			return appErrors.Internal(err, "failed to list requests")
		}
		dash.RecentRequests = recent
		return nil
	})
	g.Go(func() error {
		upcoming, err := s.donations.ListUpcoming(gctx, userID, today, dashboardListSize)
		if err != nil {
			return appErrors.Internal(err, "failed to list donations")
		}
		dash.UpcomingDonations = upcoming
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard load failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &dash, nil
}
