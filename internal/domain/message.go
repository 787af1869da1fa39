package domain

import "time"

// SenderType indicates who authored a ticket message.
type SenderType string

const (
	SenderTypeUser SenderType = "USER"
	SenderTypeAI   SenderType = "AI"
)

// Message captures a communication in a ticket thread. The resident's
// initial report is stored as the first message of the ticket.
type Message struct {
	ID         string
	TenantID   string
	TicketID   string
	SenderType SenderType
	Content    string
	CreatedAt  time.Time
}
