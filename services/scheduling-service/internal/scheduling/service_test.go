package scheduling

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/clinicops/medagenda/services/scheduling-service/internal/model"
	"github.com/clinicops/medagenda/services/scheduling-service/internal/storage"
)

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(storage.NewMemoryStore(), logger)
}

func TestCreateRejectsOccupiedSlot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	// Same slot, different patient and physician: still a conflict.
	if _, err := svc.Create(ctx, "2024-05-01", "09:00", "Bruno", "Dr. Souza"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	appts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("conflicting create must not persist a record, got %d records", len(appts))
	}
}

func TestCreateAllowsDistinctSlots(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "2024-05-01", "10:00", "Bea", "Dr. Souza"); err != nil {
		t.Fatalf("create at distinct time failed: %v", err)
	}
	if _, err := svc.Create(ctx, "2024-05-02", "09:00", "Caio", "Dr. Silva"); err != nil {
		t.Fatalf("create at distinct date failed: %v", err)
	}

	appts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(appts) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(appts))
	}
	for _, appt := range appts {
		if appt.Status != model.StatusScheduled {
			t.Fatalf("appointment %d: expected status %q, got %q", appt.ID, model.StatusScheduled, appt.Status)
		}
	}
}

func TestCancelIsTerminalAndRepeatable(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, "2024-05-01", "10:00", "Bea", "Dr. Souza")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Cancel(ctx, id); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	appts, _ := svc.List(ctx)
	if appts[0].Status != model.StatusCancelled {
		t.Fatalf("expected status %q, got %q", model.StatusCancelled, appts[0].Status)
	}

	// Repeated cancel succeeds silently and leaves the status cancelled.
	if err := svc.Cancel(ctx, id); err != nil {
		t.Fatalf("repeated cancel failed: %v", err)
	}
	appts, _ = svc.List(ctx)
	if appts[0].Status != model.StatusCancelled {
		t.Fatalf("expected status %q after repeat cancel, got %q", model.StatusCancelled, appts[0].Status)
	}
}

func TestCancelledSlotStillBlocksRebooking(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Cancel(ctx, id); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// The conflict lookup is not scoped by status.
	if _, err := svc.Create(ctx, "2024-05-01", "09:00", "Bruno", "Dr. Souza"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken for cancelled slot, got %v", err)
	}
}

func TestCancelAndUpdateUnknownID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.Cancel(ctx, 99); err != ErrNotFound {
		t.Fatalf("cancel: expected ErrNotFound, got %v", err)
	}
	if err := svc.Update(ctx, 99, "2024-05-01", "09:00", "Ana", "Dr. Silva"); err != ErrNotFound {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}

	appts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(appts) != 0 {
		t.Fatalf("failed operations must not change state, got %d records", len(appts))
	}
}

func TestUpdatePreservesStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Update(ctx, id, "2024-05-01", "09:00", "Ana Clara", "Dr. Silva"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	appts, _ := svc.List(ctx)
	if appts[0].Patient != "Ana Clara" {
		t.Fatalf("expected patient %q, got %q", "Ana Clara", appts[0].Patient)
	}
	if appts[0].Status != model.StatusScheduled {
		t.Fatalf("update must not touch status, got %q", appts[0].Status)
	}

	// Status is preserved for cancelled records too.
	if err := svc.Cancel(ctx, id); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := svc.Update(ctx, id, "2024-05-02", "10:00", "Ana Clara", "Dr. Souza"); err != nil {
		t.Fatalf("update of cancelled appointment failed: %v", err)
	}
	appts, _ = svc.List(ctx)
	if appts[0].Status != model.StatusCancelled {
		t.Fatalf("update must not revive a cancelled appointment, got %q", appts[0].Status)
	}
}

func TestUpdateDoesNotRecheckSlot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id2, err := svc.Create(ctx, "2024-05-01", "10:00", "Bea", "Dr. Souza")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Moving id2 onto id1's slot succeeds: update performs no conflict check.
	if err := svc.Update(ctx, id2, "2024-05-01", "09:00", "Bea", "Dr. Souza"); err != nil {
		t.Fatalf("expected update onto occupied slot to succeed, got %v", err)
	}
}

func TestListIncludesCancelledRecords(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	id1, err := svc.Create(ctx, "2024-05-01", "09:00", "Ana", "Dr. Silva")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	id2, err := svc.Create(ctx, "2024-05-01", "10:00", "Bea", "Dr. Souza")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Cancel(ctx, id2); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	appts, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("cancellation must not remove records, got %d of 2", len(appts))
	}
	byID := map[int64]string{}
	for _, appt := range appts {
		byID[appt.ID] = appt.Status
	}
	if byID[id1] != model.StatusScheduled {
		t.Fatalf("id %d: expected %q, got %q", id1, model.StatusScheduled, byID[id1])
	}
	if byID[id2] != model.StatusCancelled {
		t.Fatalf("id %d: expected %q, got %q", id2, model.StatusCancelled, byID[id2])
	}
}
