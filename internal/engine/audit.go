package engine

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
)

// UndoError rejects an undo request: the entry does not exist, carries no
// snapshot, or its action type has no capturable prior state.
type UndoError struct {
	Reason string
}

func (e *UndoError) Error() string {
	return "cannot undo: " + e.Reason
}

// LogAction appends one ledger entry. Entries are immutable after creation;
// only update-shaped entries carrying a snapshot are undoable.
func (e *Engine) LogAction(ctx context.Context, action models.ActionType, target, details, actor string, snapshot *models.Order) error {
	entry := models.AuditEntry{
		Action:        action,
		Target:        target,
		Details:       details,
		Actor:         actor,
		Undoable:      action == models.ActionUpdate && snapshot != nil,
		OrderSnapshot: snapshot,
		CreatedAt:     e.now(),
	}
	_, err := e.Store.InsertAuditEntry(ctx, entry)
	return err
}

// Undo replays the entry's captured pre-mutation state onto the order. The
// restore is literal: every captured field comes back, including driver and
// fee values unrelated to the change that motivated the entry. Last captured
// state wins; there is no merge with writes that happened since.
//
// The undo itself is logged without a snapshot, so there is no undo-of-undo.
func (e *Engine) Undo(ctx context.Context, entryID primitive.ObjectID, actor string) error {
	entry, err := e.Store.GetAuditEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if !entry.Undoable || entry.OrderSnapshot == nil {
		return &UndoError{Reason: "entry " + entryID.Hex() + " is not undoable"}
	}

	snap := entry.OrderSnapshot
	if err := e.Store.UpdateOrder(ctx, snap.ID, snapshotFields(*snap)); err != nil {
		return err
	}

	e.audit(ctx, models.ActionUpdate, entry.Target,
		"restored state captured by entry "+entryID.Hex(), actor, nil)
	return nil
}

// ClearAuditLog destroys every ledger entry. This is irreversible and
// unrelated to undo: once cleared, nothing in the range can be undone.
func (e *Engine) ClearAuditLog(ctx context.Context, actor string) error {
	return e.Store.ClearAuditEntries(ctx)
}

// snapshotFields spells out every mutable order field so the restore is a
// full-state replay. Nil driver and fee are written explicitly; merge
// semantics would otherwise leave newer values in place.
func snapshotFields(snap models.Order) bson.M {
	return bson.M{
		"number":         snap.Number,
		"customer":       snap.Customer,
		"merchantId":     snap.MerchantID,
		"driverId":       snap.DriverID,
		"deliveryFee":    snap.DeliveryFee,
		"status":         snap.Status,
		"items":          snap.Items,
		"totalPrice":     snap.TotalPrice,
		"notes":          snap.Notes,
		"paidAmount":     snap.PaidAmount,
		"unpaidAmount":   snap.UnpaidAmount,
		"paymentStatus":  snap.PaymentStatus,
		"cashOnDelivery": snap.CashOnDelivery,
		"promoCode":      snap.PromoCode,
		"pointsRedeemed": snap.PointsRedeemed,
		"discountAmount": snap.DiscountAmount,
		"finalPrice":     snap.FinalPrice,
		"isArchived":     snap.IsArchived,
		"deliveredAt":    snap.DeliveredAt,
	}
}
