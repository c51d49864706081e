package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type fakeDashboardRequests struct {
	filter  models.BloodRequestFilter
	pending int
}

func (f *fakeDashboardRequests) List(_ context.Context, filter models.BloodRequestFilter) ([]models.BloodRequest, error) {
	f.filter = filter
	return []models.BloodRequest{{ID: "r1"}}, nil
}

func (f *fakeDashboardRequests) CountByStatus(context.Context, string, models.RequestStatus) (int, error) {
	return f.pending, nil
}

type fakeDashboardDonations struct {
	counts map[models.DonationStatus]int
	total  int
	from   time.Time
	limit  int
	err    error
}

func (f *fakeDashboardDonations) CountByDonor(_ context.Context, _ string, status *models.DonationStatus) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if status == nil {
		return f.total, nil
	}
	return f.counts[*status], nil
}

func (f *fakeDashboardDonations) ListUpcoming(_ context.Context, _ string, from time.Time, limit int) ([]models.UpcomingDonation, error) {
	f.from = from
	f.limit = limit
	return []models.UpcomingDonation{}, nil
}

func TestDashboardAggregates(t *testing.T) {
	requests := &fakeDashboardRequests{pending: 2}
	donations := &fakeDashboardDonations{total: 7, counts: map[models.DonationStatus]int{
		models.DonationStatusScheduled: 1,
		models.DonationStatusCompleted: 5,
	}}
	svc := NewDashboardService(requests, donations, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 22, 0, 0, 0, time.UTC) }

	dash, err := svc.Get(context.Background(), donorClaims)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalDonations: 7, PendingRequests: 2, ScheduledDonations: 1, CompletedDonations: 5}, dash.Stats)
	assert.Len(t, dash.RecentRequests, 1)
	assert.Equal(t, models.BloodRequestFilter{RequesterID: "u1", Limit: 5}, requests.filter)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), donations.from)
	assert.Equal(t, 5, donations.limit)
}

func TestDashboardStoreFailure(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRequests{}, &fakeDashboardDonations{err: errors.New("down")}, nil)
	_, err := svc.Get(context.Background(), donorClaims)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestDashboardRequiresSession(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardRequests{}, &fakeDashboardDonations{}, nil)
	_, err := svc.Get(context.Background(), nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
