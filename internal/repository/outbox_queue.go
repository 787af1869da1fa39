package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// OutboxMarker mutates the delivery state of locked outbox rows. Valid
// only for the duration of the batch transaction that handed it out.
type OutboxMarker interface {
	MarkPublished(ctx context.Context, eventID string, at time.Time) error
	MarkFailed(ctx context.Context, eventID string, attempts int, lastError string, terminal bool) error
}

// OutboxQueue is the publisher-side view of the outbox. It deliberately
// spans tenants: the publisher drains whatever is pending, and never
// creates rows.
type OutboxQueue interface {
	// WithPendingBatch locks up to limit PENDING rows in creation order,
	// skipping rows locked by concurrent publishers, and passes them to fn
	// together with a marker bound to the same transaction. Row locks are
	// released when fn returns; an error from fn rolls back all marks.
	WithPendingBatch(ctx context.Context, limit int, fn func(ctx context.Context, batch []domain.OutboxEvent, marks OutboxMarker) error) error
}

// PgxOutboxQueue implements OutboxQueue over a pgx pool.
type PgxOutboxQueue struct {
	pool *pgxpool.Pool
}

// NewPgxOutboxQueue instantiates the queue.
func NewPgxOutboxQueue(pool *pgxpool.Pool) *PgxOutboxQueue {
	return &PgxOutboxQueue{pool: pool}
}

func (q *PgxOutboxQueue) WithPendingBatch(ctx context.Context, limit int, fn func(ctx context.Context, batch []domain.OutboxEvent, marks OutboxMarker) error) error {
	return pgx.BeginFunc(ctx, q.pool, func(tx pgx.Tx) error {
		const query = `
            SELECT id, tenant_id, correlation_id, event_type, aggregate_id, payload, status, attempts, last_error, created_at, published_at
            FROM outbox_events
            WHERE status=$1
            ORDER BY created_at
            LIMIT $2
            FOR UPDATE SKIP LOCKED`
		rows, err := tx.Query(ctx, query, domain.OutboxStatusPending, limit)
		if err != nil {
			return err
		}
		batch, err := scanOutboxEvents(rows)
		if err != nil {
			return err
		}
		return fn(ctx, batch, &txOutboxMarker{tx: tx})
	})
}

func scanOutboxEvents(rows pgx.Rows) ([]domain.OutboxEvent, error) {
	defer rows.Close()
	var result []domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		if err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.CorrelationID,
			&event.EventType,
			&event.AggregateID,
			&event.Payload,
			&event.Status,
			&event.Attempts,
			&event.LastError,
			&event.CreatedAt,
			&event.PublishedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

type txOutboxMarker struct {
	tx pgx.Tx
}

func (m *txOutboxMarker) MarkPublished(ctx context.Context, eventID string, at time.Time) error {
	const query = `
        UPDATE outbox_events SET status=$1, published_at=$2
        WHERE id=$3`
	_, err := m.tx.Exec(ctx, query, domain.OutboxStatusPublished, at, eventID)
	return err
}

func (m *txOutboxMarker) MarkFailed(ctx context.Context, eventID string, attempts int, lastError string, terminal bool) error {
	status := domain.OutboxStatusPending
	if terminal {
		status = domain.OutboxStatusFailed
	}
	const query = `
        UPDATE outbox_events SET status=$1, attempts=$2, last_error=$3
        WHERE id=$4`
	_, err := m.tx.Exec(ctx, query, status, attempts, lastError, eventID)
	return err
}
