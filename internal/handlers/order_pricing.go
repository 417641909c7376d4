package handlers

import (
	"fmt"

	"deliveryhub/internal/models"
)

const (
	paymentStatusPaid   = "paid"
	paymentStatusUnpaid = "unpaid"
)

// computeItemsTotal sums line items at placement time. The total is never
// recomputed retroactively, even if product prices change later.
func computeItemsTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func validateDiscountFields(total, discountAmount float64, pointsRedeemed int) error {
	if discountAmount < 0 {
		return fmt.Errorf("discountAmount must not be negative")
	}
	if pointsRedeemed < 0 {
		return fmt.Errorf("pointsRedeemed must not be negative")
	}
	if discountAmount > total {
		return fmt.Errorf("discountAmount must not exceed the order total")
	}
	return nil
}

func computeFinalPrice(total, discountAmount float64) float64 {
	final := total - discountAmount
	if final < 0 {
		return 0
	}
	return final
}

// resolvePayment splits the final price into paid and unpaid portions.
// Cash-on-delivery orders stay fully unpaid until handover.
func resolvePayment(finalPrice float64, cashOnDelivery bool) (paid, unpaid float64, status string) {
	if cashOnDelivery {
		return 0, finalPrice, paymentStatusUnpaid
	}
	return finalPrice, 0, paymentStatusPaid
}
