package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/bus"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// OutboxPublisher drains PENDING outbox rows to the bus on a fixed
// interval with at-least-once delivery. Dequeue uses SKIP LOCKED, so
// multiple instances can run side by side without double-publishing a row.
type OutboxPublisher struct {
	queue       repository.OutboxQueue
	publisher   bus.Publisher
	logger      *zap.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
	running     atomic.Bool
}

// OutboxPublisherConfig tunes the publish loop.
type OutboxPublisherConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// NewOutboxPublisher constructs the publisher with defaults applied.
func NewOutboxPublisher(queue repository.OutboxQueue, publisher bus.Publisher, logger *zap.Logger, cfg OutboxPublisherConfig) *OutboxPublisher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &OutboxPublisher{
		queue:       queue,
		publisher:   publisher,
		logger:      logger,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Run executes the periodic publish loop until context cancellation.
func (p *OutboxPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one drain pass. The compare-and-swap guard keeps overlapping
// ticks from executing concurrently within one process.
func (p *OutboxPublisher) Tick(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	defer p.running.Store(false)

	if err := p.queue.WithPendingBatch(ctx, p.batchSize, p.publishBatch); err != nil {
		p.logger.Error("outbox batch failed", zap.Error(err))
	}
}

func (p *OutboxPublisher) publishBatch(ctx context.Context, batch []domain.OutboxEvent, marks repository.OutboxMarker) error {
	published := 0
	failed := 0
	for i := range batch {
		event := &batch[i]
		if err := p.publishOne(ctx, event); err != nil {
			failed++
			attempts := event.Attempts + 1
			terminal := attempts >= p.maxAttempts
			if terminal {
				p.logger.Error("outbox event failed permanently",
					zap.String("event_id", event.ID),
					zap.String("event_type", event.EventType),
					zap.Int("attempts", attempts),
					zap.Error(err))
			} else {
				p.logger.Warn("outbox publish failed; will retry",
					zap.String("event_id", event.ID),
					zap.String("event_type", event.EventType),
					zap.Int("attempts", attempts),
					zap.Error(err))
			}
			if err := marks.MarkFailed(ctx, event.ID, attempts, err.Error(), terminal); err != nil {
				return err
			}
			continue
		}
		published++
		if err := marks.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			return err
		}
	}
	if len(batch) > 0 {
		p.logger.Info("outbox batch processed",
			zap.Int("batch_size", len(batch)),
			zap.Int("published", published),
			zap.Int("failed", failed))
	}
	return nil
}

func (p *OutboxPublisher) publishOne(ctx context.Context, event *domain.OutboxEvent) error {
	envelope := events.Envelope{
		EventID:       event.ID,
		TenantID:      event.TenantID,
		CorrelationID: event.CorrelationID,
		EventType:     event.EventType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		PublishedAt:   time.Now().UTC(),
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, event.EventType, event.AggregateID, value)
}
