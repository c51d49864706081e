package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/pkg/jobs"
)

const auditJobType = "audit"

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditRecorder accepts audit entries without blocking the caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditLog)
}

// AuditConfig sizes the background writer.
type AuditConfig struct {
	Workers    int
	Retries    int
	BufferSize int
	RetryDelay time.Duration
}

// AuditService writes audit rows through a bounded worker queue.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService builds the service and its queue. Call Start before Record.
func NewAuditService(repo auditRepository, cfg AuditConfig, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue(auditJobType, s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the writers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries and stops the writers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record queues an entry. A full or stopped queue drops the entry with a warning.
func (s *AuditService) Record(_ context.Context, entry models.AuditLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: entry.ID, Type: auditJobType, Payload: entry}); err != nil {
		s.metrics.RecordAuditDropped()
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.String("resource", entry.Resource), zap.Error(err))
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	return s.repo.Create(ctx, &entry)
}

// auditEntry builds an entry attributed to the session user.
func auditEntry(claims *models.JWTClaims, action, resource, resourceID string, newValues []byte) models.AuditLog {
	entry := models.AuditLog{Action: action, Resource: resource, NewValues: newValues}
	if claims != nil && claims.UserID != "" {
		userID := claims.UserID
		entry.UserID = &userID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	return entry
}

type nopAuditRecorder struct{}

func (nopAuditRecorder) Record(context.Context, models.AuditLog) {}
