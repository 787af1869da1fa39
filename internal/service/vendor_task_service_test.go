package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

func seedAssignedTicketWithTask(store *memStore) {
	store.seedTicket(domain.Ticket{
		ID:            "tk-1",
		TenantID:      testTenant,
		CorrelationID: "corr-1",
		Status:        domain.TicketStatusAssigned,
	})
	store.seedTask(domain.VendorTask{
		ID:          "vt-1",
		TenantID:    testTenant,
		TicketID:    "tk-1",
		VendorName:  "Acme Plumbing",
		Status:      domain.TaskStatusOpen,
		Description: "Fix the faucet",
	})
}

func TestCompleteTaskResolvesTicket(t *testing.T) {
	store := newMemStore()
	seedAssignedTicketWithTask(store)
	svc := NewVendorTaskService(store)

	result, err := svc.Complete(context.Background(), "vt-1", testTenant, strPtr("replaced washer"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Status != domain.TaskStatusCompleted {
		t.Errorf("task status = %s, want COMPLETED", result.Status)
	}
	if result.TicketStatus != domain.TicketStatusResolved {
		t.Errorf("ticket status = %s, want RESOLVED", result.TicketStatus)
	}

	task := store.task("vt-1")
	if task.Status != domain.TaskStatusCompleted {
		t.Error("task must be persisted as COMPLETED")
	}
	if !strings.Contains(task.Description, "Resolution: replaced washer") {
		t.Errorf("description = %q, want resolution notes appended", task.Description)
	}
	if store.ticket("tk-1").Status != domain.TicketStatusResolved {
		t.Error("ticket must be persisted as RESOLVED")
	}

	resolved := outboxByType(store, events.TypeTicketResolved)
	if len(resolved) != 1 {
		t.Fatalf("ticket.resolved events = %d, want 1", len(resolved))
	}
	var payload events.TicketResolvedPayload
	if err := json.Unmarshal(resolved[0].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.VendorTaskID != "vt-1" || payload.VendorName != "Acme Plumbing" {
		t.Errorf("payload = %+v", payload)
	}

	audit := auditByAction(store, "task.completed")
	if len(audit) != 1 {
		t.Fatalf("task.completed audit rows = %d, want 1", len(audit))
	}
	if audit[0].ActorID != "Acme Plumbing" {
		t.Errorf("actor = %q, want the vendor", audit[0].ActorID)
	}
}

func TestCompleteTaskWithoutNotesKeepsDescription(t *testing.T) {
	store := newMemStore()
	seedAssignedTicketWithTask(store)
	svc := NewVendorTaskService(store)

	if _, err := svc.Complete(context.Background(), "vt-1", testTenant, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := store.task("vt-1").Description; got != "Fix the faucet" {
		t.Errorf("description = %q, want unchanged", got)
	}
}

func TestCompleteTaskTwiceRejected(t *testing.T) {
	store := newMemStore()
	seedAssignedTicketWithTask(store)
	svc := NewVendorTaskService(store)

	if _, err := svc.Complete(context.Background(), "vt-1", testTenant, nil); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	eventsBefore := len(store.outboxEvents())

	_, err := svc.Complete(context.Background(), "vt-1", testTenant, nil)
	if !apperrors.IsCode(err, "INVALID_STATE") {
		t.Fatalf("second Complete err = %v, want INVALID_STATE", err)
	}
	if len(store.outboxEvents()) != eventsBefore {
		t.Error("double completion must not emit another ticket.resolved")
	}
}

func TestCompleteTaskOnAlreadyResolvedTicketRejected(t *testing.T) {
	store := newMemStore()
	store.seedTicket(domain.Ticket{ID: "tk-1", TenantID: testTenant, Status: domain.TicketStatusResolved})
	store.seedTask(domain.VendorTask{
		ID:       "vt-1",
		TenantID: testTenant,
		TicketID: "tk-1",
		Status:   domain.TaskStatusOpen,
	})
	svc := NewVendorTaskService(store)

	_, err := svc.Complete(context.Background(), "vt-1", testTenant, nil)
	if !apperrors.IsCode(err, "INVALID_STATE") {
		t.Fatalf("err = %v, want INVALID_STATE", err)
	}
	if store.task("vt-1").Status != domain.TaskStatusOpen {
		t.Error("task status change must roll back")
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	svc := NewVendorTaskService(newMemStore())
	if _, err := svc.Complete(context.Background(), "missing", testTenant, nil); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}
