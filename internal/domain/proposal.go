package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionType enumerates the actions an AI proposal may request.
type ActionType string

const (
	ActionApplyTriage      ActionType = "APPLY_TRIAGE"
	ActionAssignVendorTask ActionType = "ASSIGN_VENDOR_TASK"
)

// ProposalStatus enumerates proposal lifecycle states. EXECUTED and
// REJECTED are terminal; a decided proposal is never re-decided.
type ProposalStatus string

const (
	ProposalStatusProposed ProposalStatus = "PROPOSED"
	ProposalStatusExecuted ProposalStatus = "EXECUTED"
	ProposalStatusRejected ProposalStatus = "REJECTED"
)

// Proposal is an AI-generated action proposal against a ticket.
type Proposal struct {
	ID              string
	TenantID        string
	TicketID        string
	ActionType      ActionType
	Confidence      float64
	Reasoning       string
	Payload         json.RawMessage
	Status          ProposalStatus
	DecidedAt       *time.Time
	ExecutedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
}

// AutoExecuteThreshold is the confidence floor for applying a triage
// proposal without a manager decision.
const AutoExecuteThreshold = 0.90

// ShouldAutoExecute decides whether a proposal bypasses the PROPOSED
// waiting state. Only triage proposals qualify.
func ShouldAutoExecute(actionType ActionType, confidence float64) bool {
	return actionType == ActionApplyTriage && confidence >= AutoExecuteThreshold
}

// TriagePayload is the structured payload of an APPLY_TRIAGE proposal.
type TriagePayload struct {
	Priority *int   `json:"priority,omitempty"`
	Category string `json:"category,omitempty"`
}

// VendorAssignmentPayload is the structured payload of an
// ASSIGN_VENDOR_TASK proposal.
type VendorAssignmentPayload struct {
	VendorName string `json:"vendorName"`
	Notes      string `json:"notes,omitempty"`
}

// ProposalPayload is the closed union of proposal payload variants.
// Exactly one of the fields is set, matching the proposal's action type.
type ProposalPayload struct {
	Triage           *TriagePayload
	VendorAssignment *VendorAssignmentPayload
}

// DecodeProposalPayload decodes raw payload JSON into the variant for the
// given action type. Decoding happens once, at the transaction boundary;
// the engine only ever sees the typed form.
func DecodeProposalPayload(actionType ActionType, raw json.RawMessage) (ProposalPayload, error) {
	switch actionType {
	case ActionApplyTriage:
		var p TriagePayload
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return ProposalPayload{}, fmt.Errorf("decode triage payload: %w", err)
			}
		}
		return ProposalPayload{Triage: &p}, nil
	case ActionAssignVendorTask:
		var p VendorAssignmentPayload
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return ProposalPayload{}, fmt.Errorf("decode vendor assignment payload: %w", err)
			}
		}
		return ProposalPayload{VendorAssignment: &p}, nil
	default:
		return ProposalPayload{}, fmt.Errorf("unknown action type %q", actionType)
	}
}
