package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus represents the current progress of an order.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusWaitingMerchant OrderStatus = "waiting_merchant"
	StatusPreparing       OrderStatus = "preparing"
	StatusInTransit       OrderStatus = "in_transit"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
)

// happyPath is the forward sequence an order walks from placement to delivery.
var happyPath = []OrderStatus{
	StatusPending,
	StatusWaitingMerchant,
	StatusPreparing,
	StatusInTransit,
	StatusDelivered,
}

// IsValid reports whether s is a known status value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusWaitingMerchant, StatusPreparing,
		StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Successor returns the next status on the happy path, or "" when s is the
// last step or off the path.
func (s OrderStatus) Successor() OrderStatus {
	for i, st := range happyPath {
		if st == s && i+1 < len(happyPath) {
			return happyPath[i+1]
		}
	}
	return ""
}

// ValidNext returns the statuses reachable from s through a single order
// action: the immediate happy-path successor plus cancellation. Terminal
// statuses have no successors.
func (s OrderStatus) ValidNext() []OrderStatus {
	if s.Terminal() || !s.IsValid() {
		return nil
	}
	next := []OrderStatus{StatusCancelled}
	if succ := s.Successor(); succ != "" {
		next = append(next, succ)
	}
	return next
}

// CanTransition reports whether a single-order action may move s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, st := range s.ValidNext() {
		if st == next {
			return true
		}
	}
	return false
}

// RequiresDriver reports whether an order in status s must carry a driver.
func (s OrderStatus) RequiresDriver() bool {
	return s == StatusInTransit || s == StatusDelivered
}

// OrderItem represents a single product entry within an order.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

// OrderCustomer captures customer contact details for an order.
type OrderCustomer struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
}

// Order defines the persisted order document.
//
// An order is exactly one of two variants: a commerce order carrying items and
// a merchant reference, or a special request carrying free-text notes and no
// merchant. DriverID and DeliveryFee are set together or not at all; an order
// in transit or later always has a driver.
type Order struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Number         string              `bson:"number" json:"number"`
	Customer       OrderCustomer       `bson:"customer" json:"customer"`
	MerchantID     *primitive.ObjectID `bson:"merchantId,omitempty" json:"merchantId,omitempty"`
	DriverID       *primitive.ObjectID `bson:"driverId" json:"driverId"`
	DeliveryFee    *float64            `bson:"deliveryFee" json:"deliveryFee"`
	Status         OrderStatus         `bson:"status" json:"status"`
	Items          []OrderItem         `bson:"items,omitempty" json:"items,omitempty"`
	TotalPrice     float64             `bson:"totalPrice" json:"totalPrice"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	PaidAmount     float64             `bson:"paidAmount" json:"paidAmount"`
	UnpaidAmount   float64             `bson:"unpaidAmount" json:"unpaidAmount"`
	PaymentStatus  string              `bson:"paymentStatus" json:"paymentStatus"`
	CashOnDelivery bool                `bson:"cashOnDelivery" json:"cashOnDelivery"`
	PromoCode      string              `bson:"promoCode,omitempty" json:"promoCode,omitempty"`
	PointsRedeemed int                 `bson:"pointsRedeemed" json:"pointsRedeemed"`
	DiscountAmount float64             `bson:"discountAmount" json:"discountAmount"`
	FinalPrice     float64             `bson:"finalPrice" json:"finalPrice"`
	IsArchived     bool                `bson:"isArchived" json:"isArchived"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	DeliveredAt    *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// SpecialRequest reports whether the order is the notes-only variant.
func (o Order) SpecialRequest() bool {
	return o.MerchantID == nil && len(o.Items) == 0
}
