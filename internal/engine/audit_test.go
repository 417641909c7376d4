package engine

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"deliveryhub/internal/models"
)

func TestLogActionUndoableOnlyForUpdatesWithSnapshot(t *testing.T) {
	e, s, _ := newTestEngine()
	ctx := context.Background()
	snapshot := models.Order{Number: "ORD-1", Status: models.StatusPending}

	cases := []struct {
		action   models.ActionType
		snapshot *models.Order
		undoable bool
	}{
		{models.ActionUpdate, &snapshot, true},
		{models.ActionUpdate, nil, false},
		{models.ActionCreate, &snapshot, false},
		{models.ActionDelete, nil, false},
		{models.ActionFinancial, &snapshot, false},
	}
	for i, tt := range cases {
		if err := e.LogAction(ctx, tt.action, "order ORD-1", "details", "admin@test", tt.snapshot); err != nil {
			t.Fatalf("log action: %v", err)
		}
		if s.audit[i].Undoable != tt.undoable {
			t.Fatalf("case %d: expected undoable=%v for action %s", i, tt.undoable, tt.action)
		}
	}
}

// Undo is a full-state replay: every captured field comes back, including
// fields unrelated to the change that motivated the entry.
func TestUndoRestoresEveryCapturedField(t *testing.T) {
	e, s, _ := newTestEngine()
	ctx := context.Background()

	driverID := addDriver(s, "D2")
	dri, fee := assigned(driverID, 30)
	id := addOrder(t, s, models.Order{
		Number:         "ORD-1",
		Customer:       models.OrderCustomer{Name: "Ada", Phone: "555", Address: "1 Main St"},
		Status:         models.StatusInTransit,
		DriverID:       dri,
		DeliveryFee:    fee,
		TotalPrice:     120,
		PromoCode:      "WELCOME",
		DiscountAmount: 20,
		FinalPrice:     100,
		UnpaidAmount:   100,
		PaymentStatus:  "unpaid",
		CashOnDelivery: true,
		Notes:          "",
	})

	// The audited mutation: delivery. Captures the pre-mutation state.
	if _, err := e.Transition(ctx, id, models.StatusDelivered, "admin@test"); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	entryID := s.audit[0].ID

	// Unrelated writes that happened since; undo must overwrite them too.
	if err := s.UpdateOrder(ctx, id, bson.M{
		"driverId":      nil,
		"deliveryFee":   nil,
		"status":        models.StatusPending,
		"notes":         "scribbled on later",
		"paymentStatus": "paid",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := e.Undo(ctx, entryID, "admin@test"); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	o, _ := s.GetOrder(ctx, id)
	if o.Status != models.StatusInTransit {
		t.Fatalf("expected restored status in_transit, got %s", o.Status)
	}
	if o.DriverID == nil || *o.DriverID != driverID {
		t.Fatalf("expected restored driver %s, got %v", driverID.Hex(), o.DriverID)
	}
	if o.DeliveryFee == nil || *o.DeliveryFee != 30 {
		t.Fatalf("expected restored fee 30, got %v", o.DeliveryFee)
	}
	if o.Notes != "" {
		t.Fatalf("unrelated field not restored, notes=%q", o.Notes)
	}
	if o.PaymentStatus != "unpaid" {
		t.Fatalf("unrelated field not restored, paymentStatus=%q", o.PaymentStatus)
	}
	if o.DeliveredAt != nil {
		t.Fatalf("deliveredAt must be cleared by the restore, got %v", o.DeliveredAt)
	}
	if o.PromoCode != "WELCOME" || o.DiscountAmount != 20 || o.FinalPrice != 100 {
		t.Fatal("discount fields not restored")
	}
}

func TestUndoRejectsNonUndoableEntry(t *testing.T) {
	e, s, _ := newTestEngine()
	ctx := context.Background()

	if err := e.LogAction(ctx, models.ActionCreate, "order ORD-1", "order created", "admin@test", nil); err != nil {
		t.Fatalf("log action: %v", err)
	}

	err := e.Undo(ctx, s.audit[0].ID, "admin@test")
	var undoErr *UndoError
	if !errors.As(err, &undoErr) {
		t.Fatalf("expected UndoError, got %v", err)
	}
}

func TestUndoHasNoUndo(t *testing.T) {
	e, s, _ := newTestEngine()
	ctx := context.Background()
	id := addOrder(t, s, models.Order{Number: "ORD-1", Status: models.StatusWaitingMerchant})

	if _, err := e.Transition(ctx, id, models.StatusPreparing, "admin@test"); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := e.Undo(ctx, s.audit[0].ID, "admin@test"); err != nil {
		t.Fatalf("undo failed: %v", err)
	}

	// The undo logged its own entry; that entry is not itself undoable.
	undoEntry := s.audit[len(s.audit)-1]
	if undoEntry.Undoable {
		t.Fatal("undo entries must not be undoable")
	}
}

func TestClearAuditLogRemovesEverything(t *testing.T) {
	e, s, _ := newTestEngine()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := e.LogAction(ctx, models.ActionUpdate, "order", "x", "admin@test", nil); err != nil {
			t.Fatalf("log action: %v", err)
		}
	}
	if err := e.ClearAuditLog(ctx, "admin@test"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	entries, _ := s.ListAuditEntries(ctx)
	if len(entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(entries))
	}
}
