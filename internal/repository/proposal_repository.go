package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// ProposalRepository encapsulates tenant-scoped proposal persistence.
type ProposalRepository interface {
	Create(ctx context.Context, proposal *domain.Proposal) error
	Update(ctx context.Context, proposal *domain.Proposal) error
	GetByID(ctx context.Context, id string) (*domain.Proposal, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Proposal, error)
}

type proposalRepository struct {
	q      Querier
	tenant string
}

func (r *proposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	const query = `
        INSERT INTO ai_action_proposals (id, tenant_id, ticket_id, action_type, confidence, reasoning, payload, status, decided_at, executed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at`
	return r.q.QueryRow(ctx, query,
		proposal.ID,
		r.tenant,
		proposal.TicketID,
		proposal.ActionType,
		proposal.Confidence,
		proposal.Reasoning,
		proposal.Payload,
		proposal.Status,
		proposal.DecidedAt,
		proposal.ExecutedAt,
	).Scan(&proposal.CreatedAt)
}

func (r *proposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	const query = `
        UPDATE ai_action_proposals SET status=$1, decided_at=$2, executed_at=$3, rejection_reason=$4
        WHERE id=$5 AND tenant_id=$6`
	cmd, err := r.q.Exec(ctx, query,
		proposal.Status,
		proposal.DecidedAt,
		proposal.ExecutedAt,
		proposal.RejectionReason,
		proposal.ID,
		r.tenant,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *proposalRepository) GetByID(ctx context.Context, id string) (*domain.Proposal, error) {
	const query = `
        SELECT id, tenant_id, ticket_id, action_type, confidence, reasoning, payload, status, decided_at, executed_at, rejection_reason, created_at
        FROM ai_action_proposals WHERE id=$1 AND tenant_id=$2`
	var proposal domain.Proposal
	if err := r.q.QueryRow(ctx, query, id, r.tenant).Scan(
		&proposal.ID,
		&proposal.TenantID,
		&proposal.TicketID,
		&proposal.ActionType,
		&proposal.Confidence,
		&proposal.Reasoning,
		&proposal.Payload,
		&proposal.Status,
		&proposal.DecidedAt,
		&proposal.ExecutedAt,
		&proposal.RejectionReason,
		&proposal.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Proposal, error) {
	const query = `
        SELECT id, tenant_id, ticket_id, action_type, confidence, reasoning, payload, status, decided_at, executed_at, rejection_reason, created_at
        FROM ai_action_proposals WHERE ticket_id=$1 AND tenant_id=$2 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, ticketID, r.tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Proposal
	for rows.Next() {
		var proposal domain.Proposal
		if err := rows.Scan(
			&proposal.ID,
			&proposal.TenantID,
			&proposal.TicketID,
			&proposal.ActionType,
			&proposal.Confidence,
			&proposal.Reasoning,
			&proposal.Payload,
			&proposal.Status,
			&proposal.DecidedAt,
			&proposal.ExecutedAt,
			&proposal.RejectionReason,
			&proposal.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, proposal)
	}
	return result, rows.Err()
}
