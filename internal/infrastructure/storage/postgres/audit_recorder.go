package postgres

import (
	"context"

	"dispensary/internal/core/id"
	"dispensary/internal/domain/audit"
)

// AuditRecorder adapts AuditService to the domain audit.Recorder contract.
type AuditRecorder struct {
	service *AuditService
}

func NewAuditRecorder(service *AuditService) *AuditRecorder {
	return &AuditRecorder{service: service}
}

func (r *AuditRecorder) Record(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	return r.service.LogChange(ctx, entityType, entityID, AuditAction(action), changes)
}
