package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "NEW"
	TicketStatusTriaged  TicketStatus = "TRIAGED"
	TicketStatusAssigned TicketStatus = "ASSIGNED"
	TicketStatusResolved TicketStatus = "RESOLVED"
)

// Ticket is the aggregate for resident maintenance requests.
// Status only ever moves forward; tickets are never deleted.
type Ticket struct {
	ID            string
	TenantID      string
	CorrelationID string
	UnitID        string
	Title         string
	Description   string
	Status        TicketStatus
	Priority      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MinPriority and MaxPriority bound the ticket priority scale.
const (
	MinPriority = 0
	MaxPriority = 5
)

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:      {TicketStatusTriaged, TicketStatusAssigned},
	TicketStatusTriaged:  {TicketStatusAssigned},
	TicketStatusAssigned: {TicketStatusResolved},
	TicketStatusResolved: {},
}

// CanTransition reports whether moving from current to next is a legal
// forward step in the ticket state machine.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range ticketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
