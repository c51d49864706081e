package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type fakeProfileSrv struct {
	created    bool
	updateErr  error
	lock       *models.BloodGroupLock
	lastFilter models.ProfileFilter
	total      int
}

func (f *fakeProfileSrv) Register(_ context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, bool, error) {
	return &models.Profile{ID: claims.UserID, BloodGroup: req.BloodGroup}, f.created, nil
}

func (f *fakeProfileSrv) Get(_ context.Context, userID string) (*models.Profile, error) {
	return &models.Profile{ID: userID}, nil
}

func (f *fakeProfileSrv) Update(_ context.Context, claims *models.JWTClaims, req dto.ProfileRequest) (*models.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Profile{ID: claims.UserID, BloodGroup: req.BloodGroup}, nil
}

func (f *fakeProfileSrv) Lock(context.Context, string) (*models.BloodGroupLock, error) {
	return f.lock, nil
}

func (f *fakeProfileSrv) List(_ context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	f.lastFilter = filter
	return []models.Profile{{ID: "u1"}}, f.total, nil
}

func TestProfileHandlerRegisterStatusReflectsCreation(t *testing.T) {
	for _, tc := range []struct {
		created bool
		status  int
	}{
		{created: true, status: http.StatusCreated},
		{created: false, status: http.StatusOK},
	} {
		handler := NewProfileHandler(&fakeProfileSrv{created: tc.created})
		c, rec := newTestContext(http.MethodPost, "/profiles", `{"blood_group":"O+"}`, donorSession)

		handler.Register(c)

		assert.Equal(t, tc.status, rec.Code)
	}
}

func TestProfileHandlerUpdateLocked(t *testing.T) {
	handler := NewProfileHandler(&fakeProfileSrv{updateErr: appErrors.Clone(appErrors.ErrBloodGroupLocked, "")})
	c, rec := newTestContext(http.MethodPut, "/profiles/me", `{"blood_group":"B+"}`, donorSession)

	handler.Update(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "BLOOD_GROUP_LOCKED", decodeEnvelope(t, rec).Error.Code)
}

func TestProfileHandlerLockRequiresSession(t *testing.T) {
	handler := NewProfileHandler(&fakeProfileSrv{lock: &models.BloodGroupLock{}})
	c, rec := newTestContext(http.MethodGet, "/profiles/me/blood-group-lock", "", nil)

	handler.Lock(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileHandlerAdminListPagination(t *testing.T) {
	srv := &fakeProfileSrv{total: 41}
	handler := NewProfileHandler(srv)
	c, rec := newTestContext(http.MethodGet, "/admin/profiles?page=3&page_size=500", "", adminSession)

	handler.AdminList(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProfileFilter{Page: 3, PageSize: 20}, srv.lastFilter)
	envelope := decodeEnvelope(t, rec)
	assert.EqualValues(t, 41, envelope.Pagination["total_count"])
	assert.EqualValues(t, 3, envelope.Pagination["page"])
}
