package repository

import (
	"context"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// AuditLogRepository encapsulates tenant-scoped audit trail persistence.
// The log is append-only; there is no update or delete.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
	Stats(ctx context.Context) (domain.AuditStats, error)
}

type auditLogRepository struct {
	q      Querier
	tenant string
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (id, tenant_id, ticket_id, actor_id, action, changes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.q.QueryRow(ctx, query,
		entry.ID,
		r.tenant,
		entry.TicketID,
		entry.ActorID,
		entry.Action,
		entry.Changes,
	).Scan(&entry.CreatedAt)
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, tenant_id, ticket_id, actor_id, action, changes, created_at
        FROM audit_logs WHERE tenant_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, r.tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.TicketID,
			&entry.ActorID,
			&entry.Action,
			&entry.Changes,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *auditLogRepository) Stats(ctx context.Context) (domain.AuditStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE actor_id LIKE $2 || '%'),
               COUNT(*) FILTER (WHERE actor_id NOT LIKE $2 || '%')
        FROM audit_logs WHERE tenant_id=$1`
	var stats domain.AuditStats
	if err := r.q.QueryRow(ctx, query, r.tenant, domain.AutomatedActorPrefix).Scan(
		&stats.TotalActions,
		&stats.AIActions,
		&stats.UserActions,
	); err != nil {
		return domain.AuditStats{}, err
	}
	return stats, nil
}
