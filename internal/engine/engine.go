// Package engine implements the order lifecycle core: the status machine, the
// driver-assignment protocol, the bulk mutation verbs and the audit/undo
// ledger. It talks to the persisted collections exclusively through
// store.Store and hands every outbound notification payload to a Notifier.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

// Notifier receives notification payloads produced by the engine. Delivery
// semantics (transport, retries, offline queuing) are the implementation's
// concern, not the engine's.
type Notifier interface {
	Dispatch(ctx context.Context, p models.NotificationPayload)
}

// Engine wires the lifecycle operations to a store and a notifier.
type Engine struct {
	Store  store.Store
	Notify Notifier

	// Now is the clock used for timestamps; tests pin it.
	Now func() time.Time
}

func New(s store.Store, n Notifier) *Engine {
	return &Engine{Store: s, Notify: n, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) dispatch(ctx context.Context, ev Event) {
	if e.Notify == nil {
		return
	}
	if payload, ok := PayloadFor(ev); ok {
		e.Notify.Dispatch(ctx, payload)
	}
}

// audit appends a ledger entry and logs instead of failing the mutation when
// the append itself errors; the mutation has already been committed at that
// point and reporting a failure would misstate what happened.
func (e *Engine) audit(ctx context.Context, action models.ActionType, target, details, actor string, snapshot *models.Order) {
	if err := e.LogAction(ctx, action, target, details, actor, snapshot); err != nil {
		log.Printf("[AUDIT] [ERROR] append failed for %q: %v", target, err)
	}
}

// CreateOrder mints a human-readable number for the order, stamps it and
// persists it. Commerce orders start waiting for their merchant; special
// requests start pending and trigger a dispatch payload.
func (e *Engine) CreateOrder(ctx context.Context, o models.Order, actor string) (models.Order, error) {
	number, err := e.MintOrderNumber(ctx, o.SpecialRequest())
	if err != nil {
		return models.Order{}, err
	}
	o.Number = number

	if o.Status == "" {
		if o.SpecialRequest() {
			o.Status = models.StatusPending
		} else {
			o.Status = models.StatusWaitingMerchant
		}
	}
	o.CreatedAt = e.now()

	id, err := e.Store.InsertOrder(ctx, o)
	if err != nil {
		return models.Order{}, err
	}
	o.ID = id

	e.audit(ctx, models.ActionCreate, "order "+o.Number, "order created", actor, nil)
	e.dispatch(ctx, Event{Kind: EventOrderCreated, Order: o})
	return o, nil
}

// DeleteOrder removes a single order. Deletion has no undo; the audit entry
// records it without a snapshot.
func (e *Engine) DeleteOrder(ctx context.Context, id primitive.ObjectID, actor string) error {
	o, err := e.Store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := e.Store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	e.audit(ctx, models.ActionDelete, "order "+o.Number, "order deleted", actor, nil)
	return nil
}

// BatchWriteFailure reports a gateway rejection mid bulk operation. Completed
// counts the documents confirmed written before the failure; -1 means the
// partial state is unknown (a concurrent fan-out failed mid-flight).
type BatchWriteFailure struct {
	Completed int
	Err       error
}

func (e *BatchWriteFailure) Error() string {
	if e.Completed < 0 {
		return fmt.Sprintf("batch write failed, partial state unknown: %v", e.Err)
	}
	return fmt.Sprintf("batch write failed after %d documents: %v", e.Completed, e.Err)
}

func (e *BatchWriteFailure) Unwrap() error { return e.Err }
