// Package repository declares the persistence ports of the domain.
package repository

import (
	"context"

	"github.com/turtacn/tgroups/internal/domain/models"
)

// ConfigRepository is the durable home of the single AppConfig record.
// Access is serialised within the process; there is no cross-process locking.
type ConfigRepository interface {
	// Load returns the stored record. A missing or unreadable record yields an empty
	// config and a nil error, since absent configuration is itself a handled state.
	Load(ctx context.Context) (*models.AppConfig, error)

	// Save replaces the stored record.
	Save(ctx context.Context, cfg *models.AppConfig) error

	// Close releases watchers and connections.
	Close() error
}

// AuditRepository stores audit trail entries.
type AuditRepository interface {
	Save(ctx context.Context, entry *models.AuditLog) error
	// FindRecent returns the newest entries first.
	FindRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}
