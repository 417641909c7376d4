package engine

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
)

// EventKind names a lifecycle event that may produce a dispatch payload.
type EventKind string

const (
	EventOrderCreated   EventKind = "order_created"
	EventDriverAssigned EventKind = "driver_assigned"
	EventBulkAssigned   EventKind = "bulk_assigned"
	EventStatusChanged  EventKind = "status_changed"
)

// Event is the input to the dispatch trigger mapping.
type Event struct {
	Kind     EventKind
	Order    models.Order
	DriverID primitive.ObjectID
	Affected int
}

// PayloadFor maps a lifecycle event to at most one notification payload.
// This is a pure mapping; whether and how the payload reaches anyone is the
// channel's problem. Events without a recipient produce nothing: a status
// change on a driverless order, or a commerce order creation (merchants poll
// their own board).
func PayloadFor(ev Event) (models.NotificationPayload, bool) {
	switch ev.Kind {
	case EventOrderCreated:
		if !ev.Order.SpecialRequest() {
			return models.NotificationPayload{}, false
		}
		return models.NotificationPayload{
			Title:          "New special request",
			Body:           fmt.Sprintf("%s from %s", ev.Order.Number, ev.Order.Customer.Name),
			RecipientRole:  models.RoleAdmin,
			DeepLinkTarget: "/orders/" + ev.Order.ID.Hex(),
		}, true

	case EventDriverAssigned:
		if ev.Order.DriverID == nil {
			return models.NotificationPayload{}, false
		}
		return models.NotificationPayload{
			Title:          "Order assigned to you",
			Body:           fmt.Sprintf("%s, delivery fee %.2f", ev.Order.Number, *ev.Order.DeliveryFee),
			RecipientRole:  models.RoleDriver,
			RecipientID:    ev.Order.DriverID.Hex(),
			DeepLinkTarget: "/orders/" + ev.Order.ID.Hex(),
		}, true

	case EventBulkAssigned:
		return models.NotificationPayload{
			Title:          "Orders assigned to you",
			Body:           fmt.Sprintf("%d orders are ready for pickup", ev.Affected),
			RecipientRole:  models.RoleDriver,
			RecipientID:    ev.DriverID.Hex(),
			DeepLinkTarget: "/orders",
		}, true

	case EventStatusChanged:
		if ev.Order.DriverID == nil {
			return models.NotificationPayload{}, false
		}
		title := statusChangeTitle(ev.Order.Status)
		if title == "" {
			return models.NotificationPayload{}, false
		}
		return models.NotificationPayload{
			Title:          title,
			Body:           ev.Order.Number,
			RecipientRole:  models.RoleDriver,
			RecipientID:    ev.Order.DriverID.Hex(),
			DeepLinkTarget: "/orders/" + ev.Order.ID.Hex(),
		}, true
	}
	return models.NotificationPayload{}, false
}

// statusChangeTitle covers the destination statuses a driver cares about;
// earlier stages are merchant-side and stay silent.
func statusChangeTitle(status models.OrderStatus) string {
	switch status {
	case models.StatusInTransit:
		return "Order out for delivery"
	case models.StatusDelivered:
		return "Order delivered"
	case models.StatusCancelled:
		return "Order cancelled"
	}
	return ""
}
