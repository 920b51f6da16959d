package audit

import (
	"context"

	"github.com/turtacn/tgroups/internal/domain/models"
	"github.com/turtacn/tgroups/internal/domain/repository"
	"github.com/turtacn/tgroups/internal/domain/service"
	"github.com/turtacn/tgroups/pkg/logger"
)

var _ service.AuditRecorder = (*Recorder)(nil)

// Recorder signs entries and writes them to an AuditRepository.
// A failed write is logged and otherwise ignored.
type Recorder struct {
	repo       repository.AuditRepository
	signingKey string
	logger     logger.Logger
}

// NewRecorder creates a recorder. An empty signingKey leaves entries unsigned.
func NewRecorder(repo repository.AuditRepository, signingKey string, log logger.Logger) *Recorder {
	return &Recorder{
		repo:       repo,
		signingKey: signingKey,
		logger:     log.WithComponent("AuditRecorder"),
	}
}

// Record implements service.AuditRecorder.
func (r *Recorder) Record(ctx context.Context, entry *models.AuditLog) {
	if r.signingKey != "" {
		sig, err := SignAuditLog(*entry, r.signingKey)
		if err != nil {
			r.logger.Warn(ctx, "Failed to sign audit entry", logger.Error(err))
		} else {
			entry.Signature = sig
		}
	}
	if err := r.repo.Save(ctx, entry); err != nil {
		r.logger.Error(ctx, "Failed to write audit entry", err,
			logger.String("event_type", string(entry.EventType)),
			logger.String("event_id", entry.EventID.String()),
		)
	}
}
