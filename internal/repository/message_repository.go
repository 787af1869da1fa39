package repository

import (
	"context"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// MessageRepository encapsulates tenant-scoped ticket message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	q      Querier
	tenant string
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (id, tenant_id, ticket_id, sender_type, content)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	return r.q.QueryRow(ctx, query,
		msg.ID,
		r.tenant,
		msg.TicketID,
		msg.SenderType,
		msg.Content,
	).Scan(&msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, tenant_id, ticket_id, sender_type, content, created_at
        FROM messages WHERE ticket_id=$1 AND tenant_id=$2 ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, ticketID, r.tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TenantID,
			&msg.TicketID,
			&msg.SenderType,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
