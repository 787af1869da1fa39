package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// TicketRepository encapsulates tenant-scoped ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	q      Querier
	tenant string
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, tenant_id, correlation_id, unit_id, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		ticket.ID,
		r.tenant,
		ticket.CorrelationID,
		ticket.UnitID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, priority=$2, updated_at=NOW()
        WHERE id=$3 AND tenant_id=$4`
	cmd, err := r.q.Exec(ctx, query, ticket.Status, ticket.Priority, ticket.ID, r.tenant)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, tenant_id, correlation_id, unit_id, title, description, status, priority, created_at, updated_at
        FROM tickets WHERE id=$1 AND tenant_id=$2`
	var ticket domain.Ticket
	if err := r.q.QueryRow(ctx, query, id, r.tenant).Scan(
		&ticket.ID,
		&ticket.TenantID,
		&ticket.CorrelationID,
		&ticket.UnitID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, tenant_id, correlation_id, unit_id, title, description, status, priority, created_at, updated_at
        FROM tickets WHERE tenant_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, r.tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TenantID,
			&ticket.CorrelationID,
			&ticket.UnitID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
