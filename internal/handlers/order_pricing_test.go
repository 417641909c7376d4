package handlers

import (
	"testing"

	"deliveryhub/internal/models"
)

func TestComputeItemsTotal(t *testing.T) {
	items := []models.OrderItem{
		{Name: "tea", Price: 4, Quantity: 2},
		{Name: "rice", Price: 10.5, Quantity: 1},
	}
	if got := computeItemsTotal(items); got != 18.5 {
		t.Fatalf("expected total 18.5, got %v", got)
	}
	if got := computeItemsTotal(nil); got != 0 {
		t.Fatalf("expected 0 for no items, got %v", got)
	}
}

func TestValidateDiscountFields(t *testing.T) {
	if err := validateDiscountFields(100, 20, 5); err != nil {
		t.Fatalf("valid discount rejected: %v", err)
	}
	if err := validateDiscountFields(100, -1, 0); err == nil {
		t.Fatal("negative discount accepted")
	}
	if err := validateDiscountFields(100, 0, -3); err == nil {
		t.Fatal("negative points accepted")
	}
	if err := validateDiscountFields(100, 120, 0); err == nil {
		t.Fatal("discount larger than total accepted")
	}
}

func TestComputeFinalPriceNeverNegative(t *testing.T) {
	if got := computeFinalPrice(100, 30); got != 70 {
		t.Fatalf("expected 70, got %v", got)
	}
	if got := computeFinalPrice(10, 15); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestResolvePaymentCashOnDelivery(t *testing.T) {
	paid, unpaid, status := resolvePayment(80, true)
	if paid != 0 || unpaid != 80 || status != paymentStatusUnpaid {
		t.Fatalf("COD order should be fully unpaid, got paid=%v unpaid=%v status=%s", paid, unpaid, status)
	}

	paid, unpaid, status = resolvePayment(80, false)
	if paid != 80 || unpaid != 0 || status != paymentStatusPaid {
		t.Fatalf("prepaid order should be fully paid, got paid=%v unpaid=%v status=%s", paid, unpaid, status)
	}
}
