package checkout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubCart struct {
	totalCents int64
	clearErr   error
	cleared    bool
}

func (c *stubCart) Clear(context.Context) error {
	if c.clearErr != nil {
		return c.clearErr
	}
	c.cleared = true
	c.totalCents = 0
	return nil
}

func (c *stubCart) TotalCents() int64 { return c.totalCents }

func validShipping() ShippingDetails {
	return ShippingDetails{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 Analytical Way",
		City:      "London",
		State:     "LN",
		Zip:       "12345",
		Phone:     "555-0100",
		Method:    "standard",
	}
}

func validPayment() PaymentDetails {
	return PaymentDetails{
		CardNumber:     "4111111111111111",
		Expiry:         "12/30",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}

func TestWizardShippingGuard(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)

	d := validShipping()
	d.City = "  "
	if err := w.CompleteShipping(d); !errors.Is(err, ErrIncompleteShipping) {
		t.Fatalf("expected ErrIncompleteShipping, got %v", err)
	}
	if w.Expanded() != SectionShipping {
		t.Fatalf("expected shipping still expanded, got %v", w.Expanded())
	}
	if w.IsCompleted(SectionShipping) {
		t.Fatalf("shipping should not be completed")
	}
}

func TestWizardSavedAddressBypassesGuard(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)

	if err := w.CompleteShipping(ShippingDetails{SavedAddressID: "addr-1"}); err != nil {
		t.Fatalf("saved address should satisfy guard: %v", err)
	}
	if w.Expanded() != SectionPayment {
		t.Fatalf("expected payment expanded, got %v", w.Expanded())
	}
}

func TestWizardPaymentGuard(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)
	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}

	d := validPayment()
	d.CardNumber = ""
	if err := w.CompletePayment(d); !errors.Is(err, ErrIncompletePayment) {
		t.Fatalf("expected ErrIncompletePayment, got %v", err)
	}
	if w.Expanded() != SectionPayment {
		t.Fatalf("expected payment still expanded, got %v", w.Expanded())
	}
}

func TestWizardPaymentRequiresShipping(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)

	if err := w.CompletePayment(validPayment()); !errors.Is(err, ErrSectionLocked) {
		t.Fatalf("expected ErrSectionLocked on fresh wizard, got %v", err)
	}
	if w.Expanded() != SectionShipping {
		t.Fatalf("expected shipping still expanded, got %v", w.Expanded())
	}
	if w.IsCompleted(SectionPayment) {
		t.Fatalf("payment must not complete ahead of shipping")
	}
}

func TestWizardExpandForwardLocked(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)

	if err := w.Expand(SectionPayment); !errors.Is(err, ErrSectionLocked) {
		t.Fatalf("expected ErrSectionLocked, got %v", err)
	}
	if err := w.Expand(SectionReview); !errors.Is(err, ErrSectionLocked) {
		t.Fatalf("expected ErrSectionLocked, got %v", err)
	}
}

func TestWizardJumpBackKeepsCompletion(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{}, nil)
	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if err := w.CompletePayment(validPayment()); err != nil {
		t.Fatalf("payment: %v", err)
	}

	if err := w.Expand(SectionShipping); err != nil {
		t.Fatalf("jump back: %v", err)
	}
	if !w.IsCompleted(SectionShipping) || !w.IsCompleted(SectionPayment) {
		t.Fatalf("completed flags should survive jumping back")
	}
	if err := w.Expand(SectionReview); err != nil {
		t.Fatalf("forward to completed review: %v", err)
	}
}

func TestWizardPlaceOrderNotReady(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{PlaceDelay: time.Millisecond}, nil)

	if _, err := w.PlaceOrder(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if _, err := w.PlaceOrder(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady with payment pending, got %v", err)
	}
}

func TestWizardPlaceOrder(t *testing.T) {
	cart := &stubCart{totalCents: 12000}
	w := NewWizard(cart, Options{PlaceDelay: time.Millisecond}, nil)
	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if err := w.CompletePayment(validPayment()); err != nil {
		t.Fatalf("payment: %v", err)
	}

	id, err := w.PlaceOrder(context.Background())
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if id == "" {
		t.Fatalf("expected order id")
	}
	if !cart.cleared {
		t.Fatalf("expected cart cleared")
	}
	if !w.Placed() {
		t.Fatalf("expected terminal state")
	}

	if _, err := w.PlaceOrder(context.Background()); !errors.Is(err, ErrOrderPlaced) {
		t.Fatalf("expected ErrOrderPlaced, got %v", err)
	}
	if err := w.CompleteShipping(validShipping()); !errors.Is(err, ErrOrderPlaced) {
		t.Fatalf("expected ErrOrderPlaced on edit after placement, got %v", err)
	}
}

func TestWizardPlaceOrderContextCancel(t *testing.T) {
	w := NewWizard(&stubCart{}, Options{PlaceDelay: time.Second}, nil)
	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if err := w.CompletePayment(validPayment()); err != nil {
		t.Fatalf("payment: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.PlaceOrder(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if w.Placed() {
		t.Fatalf("cancelled placement must not reach terminal state")
	}
}

func TestWizardPlaceOrderClearFailure(t *testing.T) {
	cart := &stubCart{clearErr: errors.New("backend down")}
	w := NewWizard(cart, Options{PlaceDelay: time.Millisecond}, nil)
	if err := w.CompleteShipping(validShipping()); err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if err := w.CompletePayment(validPayment()); err != nil {
		t.Fatalf("payment: %v", err)
	}

	if _, err := w.PlaceOrder(context.Background()); err == nil {
		t.Fatalf("expected clear failure to surface")
	}
	if w.Placed() {
		t.Fatalf("failed placement must not reach terminal state")
	}
}

func TestWizardCartChangedDebounced(t *testing.T) {
	cart := &stubCart{totalCents: 2000}
	var calls int32
	opts := Options{
		RecalcDelay: 20 * time.Millisecond,
		ShippingCost: func(totalCents int64) int64 {
			atomic.AddInt32(&calls, 1)
			return defaultShippingCost(totalCents)
		},
	}
	w := NewWizard(cart, opts, nil)

	for i := 0; i < 5; i++ {
		w.CartChanged()
	}
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one recalculation, got %d", got)
	}
	if w.ShippingCostCents() != 499 {
		t.Fatalf("expected flat rate 499, got %d", w.ShippingCostCents())
	}

	cart.totalCents = 9000
	w.CartChanged()
	time.Sleep(100 * time.Millisecond)
	if w.ShippingCostCents() != 0 {
		t.Fatalf("expected free shipping above threshold, got %d", w.ShippingCostCents())
	}
}

func TestDefaultShippingCost(t *testing.T) {
	if got := defaultShippingCost(4999); got != 499 {
		t.Fatalf("below threshold: got %d", got)
	}
	if got := defaultShippingCost(5000); got != 0 {
		t.Fatalf("at threshold: got %d", got)
	}
}
