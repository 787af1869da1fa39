package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// memState holds every table of the in-memory store. Transactions work on
// a deep copy that replaces the live state only when the unit succeeds.
type memState struct {
	tickets   map[string]domain.Ticket
	messages  []domain.Message
	proposals map[string]domain.Proposal
	tasks     map[string]domain.VendorTask
	outbox    []domain.OutboxEvent
	audit     []domain.AuditLog
	seq       int
}

func newMemState() *memState {
	return &memState{
		tickets:   make(map[string]domain.Ticket),
		proposals: make(map[string]domain.Proposal),
		tasks:     make(map[string]domain.VendorTask),
	}
}

func (s *memState) clone() *memState {
	next := newMemState()
	for id, t := range s.tickets {
		next.tickets[id] = t
	}
	for id, p := range s.proposals {
		next.proposals[id] = p
	}
	for id, t := range s.tasks {
		next.tasks[id] = t
	}
	next.messages = append([]domain.Message(nil), s.messages...)
	next.outbox = append([]domain.OutboxEvent(nil), s.outbox...)
	next.audit = append([]domain.AuditLog(nil), s.audit...)
	next.seq = s.seq
	return next
}

// stamp produces strictly increasing timestamps so recency ordering is
// deterministic in tests.
func (s *memState) stamp() time.Time {
	s.seq++
	return time.Unix(0, int64(s.seq)).UTC()
}

// memStore is an in-memory repository.Store with rollback semantics: a
// failing InTenantTx leaves the visible state untouched.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) Tenant(tenantID string) repository.Repositories {
	return &memRepos{state: s.state, tenant: tenantID}
}

func (s *memStore) InTenantTx(ctx context.Context, tenantID string, fn func(r repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	if err := fn(&memRepos{state: next, tenant: tenantID}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// seed inserts fixtures directly, bypassing the services under test.
func (s *memStore) seedTicket(t domain.Ticket) {
	t.CreatedAt = s.state.stamp()
	t.UpdatedAt = t.CreatedAt
	s.state.tickets[t.ID] = t
}

func (s *memStore) seedProposal(p domain.Proposal) {
	p.CreatedAt = s.state.stamp()
	s.state.proposals[p.ID] = p
}

func (s *memStore) seedTask(t domain.VendorTask) {
	t.CreatedAt = s.state.stamp()
	t.UpdatedAt = t.CreatedAt
	s.state.tasks[t.ID] = t
}

func (s *memStore) ticket(id string) domain.Ticket {
	return s.state.tickets[id]
}

func (s *memStore) proposal(id string) domain.Proposal {
	return s.state.proposals[id]
}

func (s *memStore) task(id string) domain.VendorTask {
	return s.state.tasks[id]
}

func (s *memStore) outboxEvents() []domain.OutboxEvent {
	return s.state.outbox
}

func (s *memStore) auditEntries() []domain.AuditLog {
	return s.state.audit
}

type memRepos struct {
	state  *memState
	tenant string
}

func (r *memRepos) Tickets() repository.TicketRepository         { return &memTickets{r} }
func (r *memRepos) Messages() repository.MessageRepository       { return &memMessages{r} }
func (r *memRepos) Proposals() repository.ProposalRepository     { return &memProposals{r} }
func (r *memRepos) VendorTasks() repository.VendorTaskRepository { return &memTasks{r} }
func (r *memRepos) Outbox() repository.OutboxRepository          { return &memOutbox{r} }
func (r *memRepos) Audit() repository.AuditLogRepository         { return &memAudit{r} }

type memTickets struct{ r *memRepos }

func (m *memTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.CreatedAt = m.r.state.stamp()
	ticket.UpdatedAt = ticket.CreatedAt
	m.r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	existing, ok := m.r.state.tickets[ticket.ID]
	if !ok || existing.TenantID != m.r.tenant {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = m.r.state.stamp()
	m.r.state.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := m.r.state.tickets[id]
	if !ok || t.TenantID != m.r.tenant {
		return nil, pgx.ErrNoRows
	}
	copied := t
	return &copied, nil
}

func (m *memTickets) ListRecent(ctx context.Context, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range m.r.state.tickets {
		if t.TenantID == m.r.tenant {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memMessages struct{ r *memRepos }

func (m *memMessages) Create(ctx context.Context, msg *domain.Message) error {
	msg.CreatedAt = m.r.state.stamp()
	m.r.state.messages = append(m.r.state.messages, *msg)
	return nil
}

func (m *memMessages) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.r.state.messages {
		if msg.TenantID == m.r.tenant && msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memProposals struct{ r *memRepos }

func (m *memProposals) Create(ctx context.Context, proposal *domain.Proposal) error {
	proposal.CreatedAt = m.r.state.stamp()
	m.r.state.proposals[proposal.ID] = *proposal
	return nil
}

func (m *memProposals) Update(ctx context.Context, proposal *domain.Proposal) error {
	existing, ok := m.r.state.proposals[proposal.ID]
	if !ok || existing.TenantID != m.r.tenant {
		return pgx.ErrNoRows
	}
	m.r.state.proposals[proposal.ID] = *proposal
	return nil
}

func (m *memProposals) GetByID(ctx context.Context, id string) (*domain.Proposal, error) {
	p, ok := m.r.state.proposals[id]
	if !ok || p.TenantID != m.r.tenant {
		return nil, pgx.ErrNoRows
	}
	copied := p
	return &copied, nil
}

func (m *memProposals) ListByTicket(ctx context.Context, ticketID string) ([]domain.Proposal, error) {
	var out []domain.Proposal
	for _, p := range m.r.state.proposals {
		if p.TenantID == m.r.tenant && p.TicketID == ticketID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memTasks struct{ r *memRepos }

func (m *memTasks) Create(ctx context.Context, task *domain.VendorTask) error {
	task.CreatedAt = m.r.state.stamp()
	task.UpdatedAt = task.CreatedAt
	m.r.state.tasks[task.ID] = *task
	return nil
}

func (m *memTasks) Update(ctx context.Context, task *domain.VendorTask) error {
	existing, ok := m.r.state.tasks[task.ID]
	if !ok || existing.TenantID != m.r.tenant {
		return pgx.ErrNoRows
	}
	task.UpdatedAt = m.r.state.stamp()
	m.r.state.tasks[task.ID] = *task
	return nil
}

func (m *memTasks) GetByID(ctx context.Context, id string) (*domain.VendorTask, error) {
	t, ok := m.r.state.tasks[id]
	if !ok || t.TenantID != m.r.tenant {
		return nil, pgx.ErrNoRows
	}
	copied := t
	return &copied, nil
}

func (m *memTasks) ListByTicket(ctx context.Context, ticketID string) ([]domain.VendorTask, error) {
	var out []domain.VendorTask
	for _, t := range m.r.state.tasks {
		if t.TenantID == m.r.tenant && t.TicketID == ticketID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memOutbox struct{ r *memRepos }

func (m *memOutbox) Append(ctx context.Context, event *domain.OutboxEvent) error {
	event.Status = domain.OutboxStatusPending
	event.CreatedAt = m.r.state.stamp()
	m.r.state.outbox = append(m.r.state.outbox, *event)
	return nil
}

type memAudit struct{ r *memRepos }

func (m *memAudit) Append(ctx context.Context, entry *domain.AuditLog) error {
	entry.CreatedAt = m.r.state.stamp()
	m.r.state.audit = append(m.r.state.audit, *entry)
	return nil
}

func (m *memAudit) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	for _, e := range m.r.state.audit {
		if e.TenantID == m.r.tenant {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAudit) Stats(ctx context.Context) (domain.AuditStats, error) {
	var stats domain.AuditStats
	for _, e := range m.r.state.audit {
		if e.TenantID != m.r.tenant {
			continue
		}
		stats.TotalActions++
		if e.IsAutomated() {
			stats.AIActions++
		} else {
			stats.UserActions++
		}
	}
	return stats, nil
}
