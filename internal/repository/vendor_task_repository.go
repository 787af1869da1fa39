package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// VendorTaskRepository encapsulates tenant-scoped vendor task persistence.
type VendorTaskRepository interface {
	Create(ctx context.Context, task *domain.VendorTask) error
	Update(ctx context.Context, task *domain.VendorTask) error
	GetByID(ctx context.Context, id string) (*domain.VendorTask, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.VendorTask, error)
}

type vendorTaskRepository struct {
	q      Querier
	tenant string
}

func (r *vendorTaskRepository) Create(ctx context.Context, task *domain.VendorTask) error {
	const query = `
        INSERT INTO vendor_tasks (id, tenant_id, ticket_id, vendor_name, status, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		task.ID,
		r.tenant,
		task.TicketID,
		task.VendorName,
		task.Status,
		task.Description,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *vendorTaskRepository) Update(ctx context.Context, task *domain.VendorTask) error {
	const query = `
        UPDATE vendor_tasks SET status=$1, description=$2, updated_at=NOW()
        WHERE id=$3 AND tenant_id=$4`
	cmd, err := r.q.Exec(ctx, query, task.Status, task.Description, task.ID, r.tenant)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vendorTaskRepository) GetByID(ctx context.Context, id string) (*domain.VendorTask, error) {
	const query = `
        SELECT id, tenant_id, ticket_id, vendor_name, status, description, created_at, updated_at
        FROM vendor_tasks WHERE id=$1 AND tenant_id=$2`
	var task domain.VendorTask
	if err := r.q.QueryRow(ctx, query, id, r.tenant).Scan(
		&task.ID,
		&task.TenantID,
		&task.TicketID,
		&task.VendorName,
		&task.Status,
		&task.Description,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *vendorTaskRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.VendorTask, error) {
	const query = `
        SELECT id, tenant_id, ticket_id, vendor_name, status, description, created_at, updated_at
        FROM vendor_tasks WHERE ticket_id=$1 AND tenant_id=$2 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, ticketID, r.tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VendorTask
	for rows.Next() {
		var task domain.VendorTask
		if err := rows.Scan(
			&task.ID,
			&task.TenantID,
			&task.TicketID,
			&task.VendorName,
			&task.Status,
			&task.Description,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
