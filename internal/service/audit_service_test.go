package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *recordingAudit) Record(_ context.Context, entry models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type flakyAuditRepo struct {
	mu       sync.Mutex
	failures int
	stored   []*models.AuditLog
}

func (f *flakyAuditRepo) Create(_ context.Context, log *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("db unavailable")
	}
	f.stored = append(f.stored, log)
	return nil
}

func (f *flakyAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

func TestAuditServiceRetriesAndStores(t *testing.T) {
	repo := &flakyAuditRepo{failures: 2}
	svc := NewAuditService(repo, AuditConfig{Workers: 1, Retries: 3, RetryDelay: time.Millisecond}, nil, zap.NewNop())
	svc.Start(context.Background())

	svc.Record(context.Background(), models.AuditLog{Action: models.AuditActionRequestDelete, Resource: "blood_request"})

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
	svc.Stop()

	require.Len(t, repo.stored, 1)
	assert.NotEmpty(t, repo.stored[0].ID)
	assert.Equal(t, "blood_request", repo.stored[0].Resource)
}

func TestAuditServiceDropsWhenStopped(t *testing.T) {
	repo := &flakyAuditRepo{}
	metrics := NewMetricsService()
	svc := NewAuditService(repo, AuditConfig{}, metrics, zap.NewNop())

	svc.Record(context.Background(), models.AuditLog{Action: models.AuditActionPostCreate})
	assert.Equal(t, 0, repo.count())
}

func TestAuditEntryAttributesSessionUser(t *testing.T) {
	entry := auditEntry(&models.JWTClaims{UserID: "admin-1"}, models.AuditActionRequestStatus, "blood_request", "r1", []byte(`{}`))
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "admin-1", *entry.UserID)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "r1", *entry.ResourceID)

	anonymous := auditEntry(nil, models.AuditActionRequestStatus, "blood_request", "", nil)
	assert.Nil(t, anonymous.UserID)
	assert.Nil(t, anonymous.ResourceID)
}
