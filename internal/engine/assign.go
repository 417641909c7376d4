package engine

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

// AssignError rejects a driver assignment before any write happens.
type AssignError struct {
	Reason string
}

func (e *AssignError) Error() string {
	return "cannot assign driver: " + e.Reason
}

// AssignDriver attaches a driver and a delivery fee to one order and moves it
// to target in a single merged write, so no observer ever sees a driver
// without the matching status or the other way round.
//
// Re-assignment uses the identical path: the previous driver and fee are
// overwritten and only the incoming driver is notified. Zero is a valid fee
// and means free delivery.
func (e *Engine) AssignDriver(ctx context.Context, orderID, driverID primitive.ObjectID, fee float64, target models.OrderStatus, actor string) (models.Order, error) {
	if target != models.StatusInTransit && target != models.StatusDelivered {
		return models.Order{}, &AssignError{Reason: fmt.Sprintf("target status %q must be %s or %s", target, models.StatusInTransit, models.StatusDelivered)}
	}
	if fee < 0 {
		return models.Order{}, &AssignError{Reason: "delivery fee must not be negative"}
	}
	if err := e.validateDriver(ctx, driverID); err != nil {
		return models.Order{}, err
	}

	o, err := e.Store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	fields := bson.M{
		"driverId":    driverID,
		"deliveryFee": fee,
		"status":      target,
	}
	updated := o
	updated.DriverID = &driverID
	updated.DeliveryFee = &fee
	updated.Status = target
	if target == models.StatusDelivered {
		now := e.now()
		fields["deliveredAt"] = now
		updated.DeliveredAt = &now
	}

	if err := e.Store.UpdateOrder(ctx, orderID, fields); err != nil {
		return models.Order{}, err
	}

	snapshot := o
	e.audit(ctx, models.ActionUpdate, "order "+o.Number,
		fmt.Sprintf("driver %s assigned, fee %.2f, status %s", driverID.Hex(), fee, target),
		actor, &snapshot)
	e.dispatch(ctx, Event{Kind: EventDriverAssigned, Order: updated})
	return updated, nil
}

func (e *Engine) validateDriver(ctx context.Context, driverID primitive.ObjectID) error {
	u, err := e.Store.GetUser(ctx, driverID)
	if errors.Is(err, store.ErrNotFound) {
		return &AssignError{Reason: "driver " + driverID.Hex() + " not found"}
	}
	if err != nil {
		return err
	}
	if u.Role != models.RoleDriver {
		return &AssignError{Reason: "user " + driverID.Hex() + " does not have the driver role"}
	}
	return nil
}
