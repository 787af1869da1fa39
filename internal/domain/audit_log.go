package domain

import (
	"strings"
	"time"
)

// AutomatedActorPrefix marks audit entries produced by the AI worker
// rather than a human decider.
const AutomatedActorPrefix = "ai-worker"

// AuditLog is an append-only record of one domain mutation, written in
// the same transaction as that mutation.
type AuditLog struct {
	ID        string
	TenantID  string
	TicketID  string
	ActorID   string
	Action    string
	Changes   map[string]any
	CreatedAt time.Time
}

// IsAutomated reports whether the entry was produced by an automated actor.
func (a AuditLog) IsAutomated() bool {
	return strings.HasPrefix(a.ActorID, AutomatedActorPrefix)
}

// AuditStats aggregates audit entries by actor class.
type AuditStats struct {
	TotalActions int64 `json:"totalActions"`
	AIActions    int64 `json:"aiActions"`
	UserActions  int64 `json:"userActions"`
}
