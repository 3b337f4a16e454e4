package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	"github.com/noah-isme/academy-booking-api/pkg/config"
	"github.com/noah-isme/academy-booking-api/pkg/jobs"
)

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService appends booking events through an in-memory queue. Appends
// are fire-and-forget: a full buffer or a failed insert is logged and never
// reaches the operation being audited.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService constructs the audit service around a worker queue.
func NewAuditService(repo auditWriter, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{logger: logger}
	svc.queue = jobs.NewQueue("audit", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return nil
		}
		return repo.Create(ctx, entry)
	}, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start begins queue consumption.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues one audit event without blocking.
func (s *AuditService) Record(action, slotID, studentID, detail string) {
	entry := &models.AuditLog{Action: action, SlotID: slotID, StudentID: studentID, Detail: detail}
	s.queue.TryEnqueue(jobs.Job{ID: uuid.NewString(), Type: action, Payload: entry})
}
