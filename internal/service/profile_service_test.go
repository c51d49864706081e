package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
	"github.com/noah-isme/lifeflow-api/internal/validation"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

// memoryProfileRepo mirrors the unique index on blood_group_changes.user_id.
type memoryProfileRepo struct {
	profiles  map[string]models.Profile
	changes   map[string]models.BloodGroupChange
	writes    int
	changeErr error
	updateErr error
}

func newMemoryProfileRepo() *memoryProfileRepo {
	return &memoryProfileRepo{profiles: map[string]models.Profile{}, changes: map[string]models.BloodGroupChange{}}
}

func (m *memoryProfileRepo) FindByID(_ context.Context, id string) (*models.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memoryProfileRepo) Upsert(_ context.Context, profile *models.Profile) error {
	m.writes++
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *memoryProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.writes++
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *memoryProfileRepo) UpdateWithBloodGroupChange(_ context.Context, profile *models.Profile, change *models.BloodGroupChange) error {
	if _, exists := m.changes[change.UserID]; exists {
		return repository.ErrDuplicate
	}
	m.writes++
	m.changes[change.UserID] = *change
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *memoryProfileRepo) FindBloodGroupChange(_ context.Context, userID string) (*models.BloodGroupChange, error) {
	if m.changeErr != nil {
		return nil, m.changeErr
	}
	c, ok := m.changes[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memoryProfileRepo) List(_ context.Context, _ models.ProfileFilter) ([]models.Profile, int, error) {
	out := make([]models.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, len(out), nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

func profilePayload(group models.BloodGroup) dto.ProfileRequest {
	return dto.ProfileRequest{
		Name:       "Asha",
		Mobile:     "9999999999",
		Age:        30,
		Weight:     60,
		BloodGroup: group,
		Village:    "Village",
		Block:      "Block",
		Pin:        "560001",
		District:   "District",
		State:      "State",
	}
}

func seededProfileService(group models.BloodGroup) (*ProfileService, *memoryProfileRepo, *countingInvalidator) {
	repo := newMemoryProfileRepo()
	repo.profiles["u1"] = models.Profile{ID: "u1", Email: "asha@example.com", BloodGroup: group}
	inv := &countingInvalidator{}
	return NewProfileService(repo, inv, validation.New(), zap.NewNop()), repo, inv
}

var donorClaims = &models.JWTClaims{UserID: "u1", Email: "asha@example.com", Role: models.RoleDonor}

func TestProfileUpdateBloodGroupChangesOnlyOnce(t *testing.T) {
	svc, repo, _ := seededProfileService(models.BloodGroupOPos)
	ctx := context.Background()

	updated, err := svc.Update(ctx, donorClaims, profilePayload(models.BloodGroupANeg))
	require.NoError(t, err)
	assert.Equal(t, models.BloodGroupANeg, updated.BloodGroup)
	require.Len(t, repo.changes, 1)
	assert.Equal(t, models.BloodGroupOPos, repo.changes["u1"].OldBloodGroup)
	assert.Equal(t, models.BloodGroupANeg, repo.changes["u1"].NewBloodGroup)

	writes := repo.writes
	_, err = svc.Update(ctx, donorClaims, profilePayload(models.BloodGroupBPos))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrBloodGroupLocked)
	assert.Len(t, repo.changes, 1)
	assert.Equal(t, writes, repo.writes)
	assert.Equal(t, models.BloodGroupANeg, repo.profiles["u1"].BloodGroup)
}

func TestProfileUpdateSameBloodGroupNeverLocks(t *testing.T) {
	svc, repo, inv := seededProfileService(models.BloodGroupOPos)

	for i := 0; i < 3; i++ {
		_, err := svc.Update(context.Background(), donorClaims, profilePayload(models.BloodGroupOPos))
		require.NoError(t, err)
	}
	assert.Empty(t, repo.changes)
	assert.Equal(t, 3, inv.calls)
}

func TestProfileUpdateAfterLockKeepsOtherEditsPossible(t *testing.T) {
	svc, repo, _ := seededProfileService(models.BloodGroupOPos)
	ctx := context.Background()

	_, err := svc.Update(ctx, donorClaims, profilePayload(models.BloodGroupANeg))
	require.NoError(t, err)

	payload := profilePayload(models.BloodGroupANeg)
	payload.District = "New District"
	updated, err := svc.Update(ctx, donorClaims, payload)
	require.NoError(t, err)
	assert.Equal(t, "New District", updated.District)
	assert.Len(t, repo.changes, 1)
}

func TestProfileUpdateRaceLosesToUniqueIndex(t *testing.T) {
	svc, repo, _ := seededProfileService(models.BloodGroupOPos)
	// Another request records its change between the check and the write.
	guard := &racingProfileRepo{memoryProfileRepo: repo}
	svc.repo = guard

	_, err := svc.Update(context.Background(), donorClaims, profilePayload(models.BloodGroupANeg))
	assert.ErrorIs(t, err, appErrors.ErrBloodGroupLocked)
}

type racingProfileRepo struct {
	*memoryProfileRepo
}

func (r *racingProfileRepo) FindBloodGroupChange(context.Context, string) (*models.BloodGroupChange, error) {
	r.changes["u1"] = models.BloodGroupChange{UserID: "u1"}
	return nil, sql.ErrNoRows
}

func TestProfileUpdateRejectsInvalidPayloadBeforeStore(t *testing.T) {
	svc, repo, _ := seededProfileService(models.BloodGroupOPos)

	payload := profilePayload(models.BloodGroupOPos)
	payload.Age = 17
	_, err := svc.Update(context.Background(), donorClaims, payload)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	payload = profilePayload(models.BloodGroupOPos)
	payload.Weight = 44
	_, err = svc.Update(context.Background(), donorClaims, payload)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	payload = profilePayload("Z+")
	_, err = svc.Update(context.Background(), donorClaims, payload)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, repo.writes)
}

func TestProfileLockState(t *testing.T) {
	svc, _, _ := seededProfileService(models.BloodGroupOPos)
	ctx := context.Background()

	lock, err := svc.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, lock.Locked)

	_, err = svc.Update(ctx, donorClaims, profilePayload(models.BloodGroupANeg))
	require.NoError(t, err)

	lock, err = svc.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, lock.Locked)
	require.NotNil(t, lock.Change)
	assert.Equal(t, models.BloodGroupANeg, lock.Change.NewBloodGroup)
}

func TestProfileRegisterCreatesThenUpdates(t *testing.T) {
	repo := newMemoryProfileRepo()
	inv := &countingInvalidator{}
	svc := NewProfileService(repo, inv, validation.New(), zap.NewNop())
	ctx := context.Background()

	date := "2025-12-01"
	payload := profilePayload(models.BloodGroupBNeg)
	payload.LastDonationDate = &date
	profile, created, err := svc.Register(ctx, donorClaims, payload)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "asha@example.com", profile.Email)
	require.NotNil(t, profile.LastDonationDate)

	_, created, err = svc.Register(ctx, donorClaims, profilePayload(models.BloodGroupBNeg))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 2, inv.calls)
}

func TestProfileGetMissing(t *testing.T) {
	svc := NewProfileService(newMemoryProfileRepo(), nil, nil, nil)
	_, err := svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProfileLockStoreFailure(t *testing.T) {
	repo := newMemoryProfileRepo()
	repo.changeErr = errors.New("db down")
	svc := NewProfileService(repo, nil, nil, nil)

	_, err := svc.Lock(context.Background(), "u1")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
