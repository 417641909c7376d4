package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

// fakeStore is an in-memory store.Store used by the engine tests. Orders keep
// insertion order so chunking behaviour is deterministic.
type fakeStore struct {
	mu       sync.Mutex
	orderIDs []primitive.ObjectID
	orders   map[primitive.ObjectID]models.Order
	users    map[primitive.ObjectID]models.User
	counters map[string]int64
	audit    []models.AuditEntry

	updates int
	deletes int

	// deleteErr, when set, is consulted before each delete.
	deleteErr func(id primitive.ObjectID) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[primitive.ObjectID]models.Order),
		users:    make(map[primitive.ObjectID]models.User),
		counters: make(map[string]int64),
	}
}

func (s *fakeStore) InsertOrder(_ context.Context, o models.Order) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orderIDs = append(s.orderIDs, o.ID)
	s.orders[o.ID] = o
	return o.ID, nil
}

func (s *fakeStore) GetOrder(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return o, nil
}

func (s *fakeStore) ListOrders(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, id := range s.orderIDs {
		o, ok := s.orders[id]
		if !ok {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Unassigned && o.DriverID != nil {
			continue
		}
		if f.ActiveOnly {
			switch o.Status {
			case models.StatusPending, models.StatusDelivered, models.StatusCancelled:
				continue
			}
		}
		if f.ExcludeArchived && o.IsArchived {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeStore) UpdateOrder(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	applyFields(&o, fields)
	s.orders[id] = o
	s.updates++
	return nil
}

func (s *fakeStore) DeleteOrder(_ context.Context, id primitive.ObjectID) error {
	if s.deleteErr != nil {
		if err := s.deleteErr(id); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.orders, id)
	s.deletes++
	return nil
}

func (s *fakeStore) GetUser(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) NextSequence(_ context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.counters[key]++
	}
	return s.counters[keys[0]], nil
}

func (s *fakeStore) ResetSequences(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.counters[key] = 0
	}
	return nil
}

func (s *fakeStore) InsertAuditEntry(_ context.Context, e models.AuditEntry) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	s.audit = append(s.audit, e)
	return e.ID, nil
}

func (s *fakeStore) GetAuditEntry(_ context.Context, id primitive.ObjectID) (models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.audit {
		if e.ID == id {
			return e, nil
		}
	}
	return models.AuditEntry{}, store.ErrNotFound
}

func (s *fakeStore) ListAuditEntries(_ context.Context) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.audit...), nil
}

func (s *fakeStore) ClearAuditEntries(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = nil
	return nil
}

// applyFields mirrors the gateway's merge semantics on the in-memory order.
func applyFields(o *models.Order, fields bson.M) {
	for key, val := range fields {
		switch key {
		case "status":
			o.Status = val.(models.OrderStatus)
		case "driverId":
			switch v := val.(type) {
			case nil:
				o.DriverID = nil
			case primitive.ObjectID:
				id := v
				o.DriverID = &id
			case *primitive.ObjectID:
				o.DriverID = v
			}
		case "deliveryFee":
			switch v := val.(type) {
			case nil:
				o.DeliveryFee = nil
			case float64:
				fee := v
				o.DeliveryFee = &fee
			case *float64:
				o.DeliveryFee = v
			}
		case "deliveredAt":
			switch v := val.(type) {
			case nil:
				o.DeliveredAt = nil
			case time.Time:
				t := v
				o.DeliveredAt = &t
			case *time.Time:
				o.DeliveredAt = v
			}
		case "number":
			o.Number = val.(string)
		case "customer":
			o.Customer = val.(models.OrderCustomer)
		case "merchantId":
			o.MerchantID, _ = val.(*primitive.ObjectID)
		case "items":
			o.Items, _ = val.([]models.OrderItem)
		case "totalPrice":
			o.TotalPrice = val.(float64)
		case "notes":
			o.Notes = val.(string)
		case "paidAmount":
			o.PaidAmount = val.(float64)
		case "unpaidAmount":
			o.UnpaidAmount = val.(float64)
		case "paymentStatus":
			o.PaymentStatus = val.(string)
		case "cashOnDelivery":
			o.CashOnDelivery = val.(bool)
		case "promoCode":
			o.PromoCode = val.(string)
		case "pointsRedeemed":
			o.PointsRedeemed = val.(int)
		case "discountAmount":
			o.DiscountAmount = val.(float64)
		case "finalPrice":
			o.FinalPrice = val.(float64)
		case "isArchived":
			o.IsArchived = val.(bool)
		}
	}
}

type fakeNotifier struct {
	mu       sync.Mutex
	payloads []models.NotificationPayload
}

func (f *fakeNotifier) Dispatch(_ context.Context, p models.NotificationPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *fakeStore, *fakeNotifier) {
	s := newFakeStore()
	n := &fakeNotifier{}
	e := New(s, n)
	e.Now = func() time.Time { return testTime }
	return e, s, n
}

func addDriver(s *fakeStore, name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	s.users[id] = models.User{ID: id, Name: name, Role: models.RoleDriver}
	return id
}

func addOrder(t *testing.T, s *fakeStore, o models.Order) primitive.ObjectID {
	t.Helper()
	id, err := s.InsertOrder(context.Background(), o)
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
	return id
}

func assigned(driverID primitive.ObjectID, fee float64) (dri *primitive.ObjectID, f *float64) {
	return &driverID, &fee
}
