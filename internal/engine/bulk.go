package engine

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

// DeleteChunkSize caps the number of document writes per submitted delete
// chunk, a conservative margin under the store's hard batch limit.
const DeleteChunkSize = 400

// ErrUnsupportedBulkTarget rejects bulk status targets without a defined
// selection rule. Only pending (global reset) and delivered (close out
// in-transit orders) are supported; anything else must not guess.
var ErrUnsupportedBulkTarget = errors.New("unsupported bulk status target")

// BulkResult aggregates the outcome of one bulk verb.
type BulkResult struct {
	Affected      int  `json:"affected"`
	CountersReset bool `json:"countersReset"`
}

// DeleteScope selects which orders a bulk delete covers: everything, or one
// status. Archived orders are excluded either way.
type DeleteScope struct {
	All    bool
	Status models.OrderStatus
}

// ParseDeleteScope turns the wire form ("all" or a status name) into a scope.
func ParseDeleteScope(s string) (DeleteScope, error) {
	if s == "all" {
		return DeleteScope{All: true}, nil
	}
	status := models.OrderStatus(s)
	if !status.IsValid() {
		return DeleteScope{}, fmt.Errorf("unknown delete scope %q", s)
	}
	return DeleteScope{Status: status}, nil
}

// PreviewBulkAssign returns the snapshot a bulk assign would operate on:
// every pending order without a driver. Selection and execution are separate
// calls so the caller can render a confirmation gate with the count first.
func (e *Engine) PreviewBulkAssign(ctx context.Context) ([]models.Order, error) {
	pending := models.StatusPending
	return e.Store.ListOrders(ctx, store.OrderFilter{Status: &pending, Unassigned: true})
}

// PreviewBulkStatus returns the snapshot a bulk status update to target would
// operate on.
func (e *Engine) PreviewBulkStatus(ctx context.Context, target models.OrderStatus) ([]models.Order, error) {
	switch target {
	case models.StatusPending:
		return e.Store.ListOrders(ctx, store.OrderFilter{ActiveOnly: true})
	case models.StatusDelivered:
		inTransit := models.StatusInTransit
		return e.Store.ListOrders(ctx, store.OrderFilter{Status: &inTransit})
	default:
		return nil, ErrUnsupportedBulkTarget
	}
}

// PreviewBulkDelete returns the snapshot a bulk delete with the given scope
// would remove. Archived orders never appear in it.
func (e *Engine) PreviewBulkDelete(ctx context.Context, scope DeleteScope) ([]models.Order, error) {
	f := store.OrderFilter{ExcludeArchived: true}
	if !scope.All {
		status := scope.Status
		f.Status = &status
	}
	return e.Store.ListOrders(ctx, f)
}

// BulkAssign hands every unassigned pending order to one driver and moves it
// in transit. The selection is evaluated once at operation start; orders
// changed concurrently by other clients are not re-evaluated, and re-applying
// the same assignment is idempotent by design.
//
// An empty selection is a no-op reporting zero affected. A non-empty run
// produces exactly one audit entry and one notification payload for the whole
// batch, deliberately, to avoid flooding the driver.
func (e *Engine) BulkAssign(ctx context.Context, driverID primitive.ObjectID, fee float64, actor string) (BulkResult, error) {
	if fee < 0 {
		return BulkResult{}, &AssignError{Reason: "delivery fee must not be negative"}
	}
	if err := e.validateDriver(ctx, driverID); err != nil {
		return BulkResult{}, err
	}

	orders, err := e.PreviewBulkAssign(ctx)
	if err != nil {
		return BulkResult{}, err
	}
	if len(orders) == 0 {
		return BulkResult{}, nil
	}

	fields := bson.M{
		"driverId":    driverID,
		"deliveryFee": fee,
		"status":      models.StatusInTransit,
	}
	if err := e.fanOutUpdates(ctx, orders, fields); err != nil {
		return BulkResult{}, err
	}

	e.audit(ctx, models.ActionUpdate, "orders",
		fmt.Sprintf("bulk assigned %d orders to driver %s, fee %.2f", len(orders), driverID.Hex(), fee),
		actor, nil)
	e.dispatch(ctx, Event{Kind: EventBulkAssigned, DriverID: driverID, Affected: len(orders)})
	return BulkResult{Affected: len(orders)}, nil
}

// BulkStatusUpdate applies one of the two named recoveries: resetting every
// in-flight order to pending (clearing driver and fee, the only sanctioned
// backward transition) or marking every in-transit order delivered. Other
// targets are rejected with ErrUnsupportedBulkTarget.
func (e *Engine) BulkStatusUpdate(ctx context.Context, target models.OrderStatus, actor string) (BulkResult, error) {
	orders, err := e.PreviewBulkStatus(ctx, target)
	if err != nil {
		return BulkResult{}, err
	}
	if len(orders) == 0 {
		return BulkResult{}, nil
	}

	var fields bson.M
	switch target {
	case models.StatusPending:
		fields = bson.M{
			"status":      models.StatusPending,
			"driverId":    nil,
			"deliveryFee": nil,
		}
	case models.StatusDelivered:
		fields = bson.M{
			"status":      models.StatusDelivered,
			"deliveredAt": e.now(),
		}
	}

	if err := e.fanOutUpdates(ctx, orders, fields); err != nil {
		return BulkResult{}, err
	}

	e.audit(ctx, models.ActionUpdate, "orders",
		fmt.Sprintf("bulk moved %d orders to %s", len(orders), target), actor, nil)
	return BulkResult{Affected: len(orders)}, nil
}

// BulkDelete removes every non-archived order in scope, in sequential chunks
// of at most DeleteChunkSize documents; the deletes inside one chunk run
// concurrently and are awaited together before the next chunk starts. A
// failed chunk aborts the remaining ones; deletions already committed stay
// committed, deletion has no undo.
//
// Only the "all" scope resets the order-number counters, and only after every
// delete has resolved, so a reset can never race ahead of in-flight deletes.
func (e *Engine) BulkDelete(ctx context.Context, scope DeleteScope, actor string) (BulkResult, error) {
	orders, err := e.PreviewBulkDelete(ctx, scope)
	if err != nil {
		return BulkResult{}, err
	}
	if len(orders) == 0 {
		return BulkResult{}, nil
	}

	completed := 0
	for _, chunk := range chunkOrders(orders, DeleteChunkSize) {
		g, gctx := errgroup.WithContext(ctx)
		for _, o := range chunk {
			o := o
			g.Go(func() error {
				return e.Store.DeleteOrder(gctx, o.ID)
			})
		}
		if err := g.Wait(); err != nil {
			return BulkResult{Affected: completed}, &BatchWriteFailure{Completed: completed, Err: err}
		}
		completed += len(chunk)
	}

	result := BulkResult{Affected: completed}
	if scope.All {
		if err := e.Store.ResetSequences(ctx, counterKeys...); err != nil {
			return result, err
		}
		result.CountersReset = true
	}

	detail := fmt.Sprintf("bulk deleted %d orders (scope %s)", completed, scopeLabel(scope))
	if result.CountersReset {
		detail += ", counters reset"
	}
	e.audit(ctx, models.ActionDelete, "orders", detail, actor, nil)
	return result, nil
}

// fanOutUpdates applies the same field set to every order as one unchunked
// concurrent batch. Assign and status verbs use it: their volume is bounded
// by realistic concurrent-order counts, unlike delete's historical backlog.
// A failure mid fan-out leaves an unknown partial state and is reported as
// such rather than guessed.
func (e *Engine) fanOutUpdates(ctx context.Context, orders []models.Order, fields bson.M) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, o := range orders {
		o := o
		g.Go(func() error {
			return e.Store.UpdateOrder(gctx, o.ID, fields)
		})
	}
	if err := g.Wait(); err != nil {
		return &BatchWriteFailure{Completed: -1, Err: err}
	}
	return nil
}

func chunkOrders(orders []models.Order, size int) [][]models.Order {
	var chunks [][]models.Order
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		chunks = append(chunks, orders[start:end])
	}
	return chunks
}

func scopeLabel(scope DeleteScope) string {
	if scope.All {
		return "all"
	}
	return string(scope.Status)
}
