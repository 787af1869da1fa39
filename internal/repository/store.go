package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by pools and transactions, letting
// repositories run against either.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the tenant-scoped repositories. Every repository in
// the bundle is bound to one tenant; there is no unscoped accessor.
type Repositories interface {
	Tickets() TicketRepository
	Messages() MessageRepository
	Proposals() ProposalRepository
	VendorTasks() VendorTaskRepository
	Outbox() OutboxRepository
	Audit() AuditLogRepository
}

// Store hands out tenant-scoped repository bundles, either against the
// shared pool or bound to a single transaction.
type Store interface {
	Tenant(tenantID string) Repositories
	// InTenantTx runs fn with all repositories bound to one transaction.
	// Any error rolls the whole unit back.
	InTenantTx(ctx context.Context, tenantID string, fn func(r Repositories) error) error
}

// PgxStore implements Store over a pgx connection pool.
type PgxStore struct {
	pool *pgxpool.Pool
}

// NewPgxStore instantiates the store.
func NewPgxStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool}
}

func (s *PgxStore) Tenant(tenantID string) Repositories {
	return newTenantRepos(s.pool, tenantID)
}

func (s *PgxStore) InTenantTx(ctx context.Context, tenantID string, fn func(r Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newTenantRepos(tx, tenantID))
	})
}

type tenantRepos struct {
	q      Querier
	tenant string
}

func newTenantRepos(q Querier, tenantID string) *tenantRepos {
	return &tenantRepos{q: q, tenant: tenantID}
}

func (r *tenantRepos) Tickets() TicketRepository {
	return &ticketRepository{q: r.q, tenant: r.tenant}
}

func (r *tenantRepos) Messages() MessageRepository {
	return &messageRepository{q: r.q, tenant: r.tenant}
}

func (r *tenantRepos) Proposals() ProposalRepository {
	return &proposalRepository{q: r.q, tenant: r.tenant}
}

func (r *tenantRepos) VendorTasks() VendorTaskRepository {
	return &vendorTaskRepository{q: r.q, tenant: r.tenant}
}

func (r *tenantRepos) Outbox() OutboxRepository {
	return &outboxRepository{q: r.q, tenant: r.tenant}
}

func (r *tenantRepos) Audit() AuditLogRepository {
	return &auditLogRepository{q: r.q, tenant: r.tenant}
}
