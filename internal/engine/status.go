package engine

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
)

// TransitionError rejects a status change not reachable from the current
// status. The order is left unmutated; callers must handle the rejection
// rather than expect clamping.
type TransitionError struct {
	From   models.OrderStatus
	To     models.OrderStatus
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// Transition advances one order to next. Valid moves are the immediate
// happy-path successor or cancellation; reaching in_transit or later requires
// a driver, which only the assignment protocol can attach. Delivery stamps
// the delivery timestamp.
func (e *Engine) Transition(ctx context.Context, id primitive.ObjectID, next models.OrderStatus, actor string) (models.Order, error) {
	if !next.IsValid() {
		return models.Order{}, &TransitionError{To: next, Reason: "unknown status"}
	}

	o, err := e.Store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	if !o.Status.CanTransition(next) {
		return models.Order{}, &TransitionError{From: o.Status, To: next}
	}
	if next.RequiresDriver() && o.DriverID == nil {
		return models.Order{}, &TransitionError{From: o.Status, To: next, Reason: "order has no driver"}
	}

	fields := bson.M{"status": next}
	updated := o
	updated.Status = next
	if next == models.StatusDelivered {
		now := e.now()
		fields["deliveredAt"] = now
		updated.DeliveredAt = &now
	}

	if err := e.Store.UpdateOrder(ctx, id, fields); err != nil {
		return models.Order{}, err
	}

	snapshot := o
	e.audit(ctx, models.ActionUpdate, "order "+o.Number,
		fmt.Sprintf("status %s -> %s", o.Status, next), actor, &snapshot)
	e.dispatch(ctx, Event{Kind: EventStatusChanged, Order: updated})
	return updated, nil
}
