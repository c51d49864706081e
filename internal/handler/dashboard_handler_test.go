package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

type fakeDashboardSrv struct {
	resp     *models.Dashboard
	err      error
	lastUser string
}

func (f *fakeDashboardSrv) Get(_ context.Context, claims *models.JWTClaims) (*models.Dashboard, error) {
	f.lastUser = claims.UserID
	return f.resp, f.err
}

func TestDashboardHandlerRequiresSession(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{})
	c, rec := newTestContext(http.MethodGet, "/dashboard", "", nil)

	handler.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerUsesSessionUser(t *testing.T) {
	srv := &fakeDashboardSrv{resp: &models.Dashboard{Stats: models.DashboardStats{TotalDonations: 3}}}
	handler := NewDashboardHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/dashboard", "", donorSession)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", srv.lastUser)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"total_donations":3`)
}
