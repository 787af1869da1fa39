package service

import (
	"context"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// AuditService exposes the read-only audit trail surface.
type AuditService struct {
	store repository.Store
}

// NewAuditService constructs the service.
func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// Recent lists a tenant's latest audit entries, newest first.
func (s *AuditService) Recent(ctx context.Context, tenantID string, limit int) ([]domain.AuditLog, error) {
	return s.store.Tenant(tenantID).Audit().ListRecent(ctx, limit)
}

// Stats aggregates audit entries split by automated versus human actors.
func (s *AuditService) Stats(ctx context.Context, tenantID string) (domain.AuditStats, error) {
	return s.store.Tenant(tenantID).Audit().Stats(ctx)
}
