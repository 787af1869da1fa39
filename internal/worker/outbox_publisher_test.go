package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// memOutboxQueue keeps outbox rows in memory, mimicking the locked-batch
// contract: pending rows in creation order, marks applied in place.
type memOutboxQueue struct {
	mu      sync.Mutex
	rows    []domain.OutboxEvent
	entered chan struct{} // signals fn entry, for the overlap test
	release chan struct{} // blocks fn until closed, when non-nil
}

func (q *memOutboxQueue) WithPendingBatch(ctx context.Context, limit int, fn func(ctx context.Context, batch []domain.OutboxEvent, marks repository.OutboxMarker) error) error {
	q.mu.Lock()
	var batch []domain.OutboxEvent
	for _, row := range q.rows {
		if row.Status == domain.OutboxStatusPending && len(batch) < limit {
			batch = append(batch, row)
		}
	}
	q.mu.Unlock()

	if q.entered != nil {
		q.entered <- struct{}{}
	}
	if q.release != nil {
		<-q.release
	}
	return fn(ctx, batch, q)
}

func (q *memOutboxQueue) MarkPublished(ctx context.Context, eventID string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.rows {
		if q.rows[i].ID == eventID {
			q.rows[i].Status = domain.OutboxStatusPublished
			q.rows[i].PublishedAt = &at
		}
	}
	return nil
}

func (q *memOutboxQueue) MarkFailed(ctx context.Context, eventID string, attempts int, lastError string, terminal bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.rows {
		if q.rows[i].ID == eventID {
			q.rows[i].Status = domain.OutboxStatusPending
			if terminal {
				q.rows[i].Status = domain.OutboxStatusFailed
			}
			q.rows[i].Attempts = attempts
			q.rows[i].LastError = &lastError
		}
	}
	return nil
}

func (q *memOutboxQueue) row(eventID string) domain.OutboxEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.rows {
		if r.ID == eventID {
			return r
		}
	}
	return domain.OutboxEvent{}
}

// recordingPublisher captures published values; failFor makes Publish
// fail for the listed topics.
type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Envelope
	failFor   map[string]bool
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	if p.failFor[topic] {
		return errors.New("broker unavailable")
	}
	var envelope events.Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		return err
	}
	p.mu.Lock()
	p.published = append(p.published, envelope)
	p.mu.Unlock()
	return nil
}

func pendingEvent(id, eventType string, attempts int) domain.OutboxEvent {
	return domain.OutboxEvent{
		ID:            id,
		TenantID:      "tenant-a",
		CorrelationID: "corr-1",
		EventType:     eventType,
		AggregateID:   "tk-1",
		Payload:       json.RawMessage(`{"ticketId":"tk-1"}`),
		Status:        domain.OutboxStatusPending,
		Attempts:      attempts,
	}
}

func newTestPublisher(queue *memOutboxQueue, pub *recordingPublisher) *OutboxPublisher {
	return NewOutboxPublisher(queue, pub, zap.NewNop(), OutboxPublisherConfig{
		Interval:    time.Minute,
		BatchSize:   10,
		MaxAttempts: 3,
	})
}

func TestTickPublishesPendingBatch(t *testing.T) {
	queue := &memOutboxQueue{rows: []domain.OutboxEvent{
		pendingEvent("ev-1", events.TypeTicketCreated, 0),
		pendingEvent("ev-2", events.TypeTicketTriaged, 0),
	}}
	pub := &recordingPublisher{}
	newTestPublisher(queue, pub).Tick(context.Background())

	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2", len(pub.published))
	}
	if pub.published[0].EventID != "ev-1" || pub.published[0].EventType != events.TypeTicketCreated {
		t.Errorf("envelope = %+v", pub.published[0])
	}
	if pub.published[0].PublishedAt.IsZero() {
		t.Error("envelope must be stamped at publish time")
	}
	for _, id := range []string{"ev-1", "ev-2"} {
		row := queue.row(id)
		if row.Status != domain.OutboxStatusPublished {
			t.Errorf("%s status = %s, want PUBLISHED", id, row.Status)
		}
		if row.PublishedAt == nil {
			t.Errorf("%s missing published_at", id)
		}
	}
}

func TestTickRetriesFailedPublish(t *testing.T) {
	queue := &memOutboxQueue{rows: []domain.OutboxEvent{
		pendingEvent("ev-1", events.TypeTicketCreated, 0),
	}}
	pub := &recordingPublisher{failFor: map[string]bool{events.TypeTicketCreated: true}}
	publisher := newTestPublisher(queue, pub)

	publisher.Tick(context.Background())
	row := queue.row("ev-1")
	if row.Status != domain.OutboxStatusPending {
		t.Errorf("status after first failure = %s, want PENDING", row.Status)
	}
	if row.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", row.Attempts)
	}
	if row.LastError == nil || *row.LastError == "" {
		t.Error("failure must record last_error")
	}

	publisher.Tick(context.Background())
	if row = queue.row("ev-1"); row.Status != domain.OutboxStatusPending || row.Attempts != 2 {
		t.Errorf("after second failure: status=%s attempts=%d, want PENDING/2", row.Status, row.Attempts)
	}

	// Third failed attempt exhausts the budget.
	publisher.Tick(context.Background())
	if row = queue.row("ev-1"); row.Status != domain.OutboxStatusFailed || row.Attempts != 3 {
		t.Errorf("after third failure: status=%s attempts=%d, want FAILED/3", row.Status, row.Attempts)
	}

	// A FAILED row is out of the pending set for good.
	publisher.Tick(context.Background())
	if row = queue.row("ev-1"); row.Attempts != 3 {
		t.Errorf("FAILED row was retried: attempts = %d", row.Attempts)
	}
}

func TestTickRecoversAfterTransientFailure(t *testing.T) {
	queue := &memOutboxQueue{rows: []domain.OutboxEvent{
		pendingEvent("ev-1", events.TypeTicketCreated, 0),
	}}
	pub := &recordingPublisher{failFor: map[string]bool{events.TypeTicketCreated: true}}
	publisher := newTestPublisher(queue, pub)

	publisher.Tick(context.Background())
	pub.failFor = nil
	publisher.Tick(context.Background())

	row := queue.row("ev-1")
	if row.Status != domain.OutboxStatusPublished {
		t.Errorf("status = %s, want PUBLISHED after recovery", row.Status)
	}
	if row.Attempts != 1 {
		t.Errorf("attempts = %d, want the failed attempt to remain on record", row.Attempts)
	}
}

func TestFailureDoesNotBlockRestOfBatch(t *testing.T) {
	queue := &memOutboxQueue{rows: []domain.OutboxEvent{
		pendingEvent("ev-1", events.TypeTicketCreated, 0),
		pendingEvent("ev-2", events.TypeTicketTriaged, 0),
	}}
	pub := &recordingPublisher{failFor: map[string]bool{events.TypeTicketCreated: true}}
	newTestPublisher(queue, pub).Tick(context.Background())

	if queue.row("ev-1").Status != domain.OutboxStatusPending {
		t.Error("failing event must stay PENDING")
	}
	if queue.row("ev-2").Status != domain.OutboxStatusPublished {
		t.Error("healthy event must publish despite the earlier failure")
	}
}

func TestTickSkipsWhileAnotherTickRuns(t *testing.T) {
	queue := &memOutboxQueue{
		rows:    []domain.OutboxEvent{pendingEvent("ev-1", events.TypeTicketCreated, 0)},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	pub := &recordingPublisher{}
	publisher := newTestPublisher(queue, pub)

	done := make(chan struct{})
	go func() {
		publisher.Tick(context.Background())
		close(done)
	}()
	<-queue.entered

	// The first tick is still inside the batch; this one must bail out
	// without touching the queue.
	queue.entered = nil
	publisher.Tick(context.Background())
	if n := len(pub.published); n != 0 {
		t.Fatalf("overlapping tick published %d events", n)
	}

	close(queue.release)
	<-done
	if len(pub.published) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.published))
	}
}
