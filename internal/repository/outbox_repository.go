package repository

import (
	"context"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// OutboxRepository is the domain-side view of the outbox: append only,
// always inside the transaction of the state change the event describes.
type OutboxRepository interface {
	Append(ctx context.Context, event *domain.OutboxEvent) error
}

type outboxRepository struct {
	q      Querier
	tenant string
}

func (r *outboxRepository) Append(ctx context.Context, event *domain.OutboxEvent) error {
	const query = `
        INSERT INTO outbox_events (id, tenant_id, correlation_id, event_type, aggregate_id, payload, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.q.QueryRow(ctx, query,
		event.ID,
		r.tenant,
		event.CorrelationID,
		event.EventType,
		event.AggregateID,
		event.Payload,
		domain.OutboxStatusPending,
	).Scan(&event.CreatedAt)
}
