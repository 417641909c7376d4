package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// OrderFilter selects a subset of the order collection. Fields combine with
// AND semantics; the zero value selects everything.
type OrderFilter struct {
	// Status limits the selection to one status.
	Status *models.OrderStatus
	// Unassigned selects orders without a driver.
	Unassigned bool
	// ActiveOnly selects in-flight orders: everything that is not pending,
	// delivered or cancelled.
	ActiveOnly bool
	// ExcludeArchived drops archived orders from the selection.
	ExcludeArchived bool
}

// Store is the persisted collection gateway the engine runs against. Updates
// have merge semantics: fields not named in the update are left untouched.
// The production implementation is Mongo; tests supply an in-memory fake.
type Store interface {
	InsertOrder(ctx context.Context, o models.Order) (primitive.ObjectID, error)
	GetOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error

	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)

	// NextSequence atomically increments every named counter and returns the
	// new value of the first one. Counters spring into existence at 1.
	NextSequence(ctx context.Context, keys ...string) (int64, error)
	// ResetSequences sets every named counter back to zero.
	ResetSequences(ctx context.Context, keys ...string) error

	InsertAuditEntry(ctx context.Context, e models.AuditEntry) (primitive.ObjectID, error)
	GetAuditEntry(ctx context.Context, id primitive.ObjectID) (models.AuditEntry, error)
	ListAuditEntries(ctx context.Context) ([]models.AuditEntry, error)
	ClearAuditEntries(ctx context.Context) error
}
