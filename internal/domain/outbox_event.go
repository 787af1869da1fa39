package domain

import (
	"encoding/json"
	"time"
)

// OutboxStatus enumerates delivery states of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusPublished OutboxStatus = "PUBLISHED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent is a domain event recorded in the same transaction as the
// state change it describes. Domain logic only ever appends rows; the
// publisher owns all mutation of existing rows.
type OutboxEvent struct {
	ID            string
	TenantID      string
	CorrelationID string
	EventType     string
	AggregateID   string
	Payload       json.RawMessage
	Status        OutboxStatus
	Attempts      int
	LastError     *string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}
