package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Section identifies one of the three checkout steps.
type Section int

const (
	SectionShipping Section = iota
	SectionPayment
	SectionReview
)

func (s Section) String() string {
	switch s {
	case SectionShipping:
		return "shipping"
	case SectionPayment:
		return "payment"
	case SectionReview:
		return "review"
	default:
		return "unknown"
	}
}

var (
	// ErrIncompleteShipping is returned when required shipping fields are blank.
	ErrIncompleteShipping = errors.New("shipping details incomplete")
	// ErrIncompletePayment is returned when required payment fields are blank.
	ErrIncompletePayment = errors.New("payment details incomplete")
	// ErrSectionLocked is returned when expanding a section whose predecessor
	// has not been completed.
	ErrSectionLocked = errors.New("previous section not completed")
	// ErrNotReady is returned by PlaceOrder before shipping and payment are done.
	ErrNotReady = errors.New("checkout sections incomplete")
	// ErrOrderPlaced is returned once the wizard reached its terminal state.
	ErrOrderPlaced = errors.New("order already placed")
)

// ShippingDetails carries the shipping form fields. SavedAddressID, when set,
// satisfies the section guard without the individual fields.
type ShippingDetails struct {
	FirstName      string
	LastName       string
	Address        string
	City           string
	State          string
	Zip            string
	Phone          string
	SavedAddressID string
	Method         string
}

// PaymentDetails carries the payment form fields. They are collected for the
// review step only and never transmitted to a processor.
type PaymentDetails struct {
	CardNumber     string
	Expiry         string
	CVV            string
	CardholderName string
}

// Cart is the slice of the cart session the wizard needs.
type Cart interface {
	Clear(ctx context.Context) error
	TotalCents() int64
}

// Options tune wizard behavior; zero values pick the defaults.
type Options struct {
	// PlaceDelay is the simulated order-placement latency.
	PlaceDelay time.Duration
	// RecalcDelay debounces shipping-cost recalculation on cart changes.
	RecalcDelay time.Duration
	// ShippingCost computes the shipping cost from the cart total.
	ShippingCost func(totalCents int64) int64
}

// Wizard drives the three-section checkout flow: shipping, payment, review.
// Each section tracks its own completed flag independently of which section
// is expanded, so jumping back does not lose progress. Order placement is an
// explicit stub: a fixed delay, then the cart is cleared and a generated
// order id returned. Nothing is persisted or charged.
type Wizard struct {
	mu        sync.Mutex
	cart      Cart
	expanded  Section
	completed map[Section]bool
	shipping  ShippingDetails
	payment   PaymentDetails
	placed    bool

	shippingCostCents int64
	placeDelay        time.Duration
	shippingCost      func(int64) int64
	recalc            *Debouncer
	logger            *log.Logger
}

func NewWizard(cart Cart, opts Options, logger *log.Logger) *Wizard {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.PlaceDelay <= 0 {
		opts.PlaceDelay = 1500 * time.Millisecond
	}
	if opts.RecalcDelay <= 0 {
		opts.RecalcDelay = 500 * time.Millisecond
	}
	if opts.ShippingCost == nil {
		opts.ShippingCost = defaultShippingCost
	}
	return &Wizard{
		cart:         cart,
		expanded:     SectionShipping,
		completed:    make(map[Section]bool),
		placeDelay:   opts.PlaceDelay,
		shippingCost: opts.ShippingCost,
		recalc:       NewDebouncer(opts.RecalcDelay),
		logger:       logger,
	}
}

// CompleteShipping validates and stores the shipping section, then expands
// the payment section. Selecting a saved address satisfies the guard.
func (w *Wizard) CompleteShipping(d ShippingDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.placed {
		return ErrOrderPlaced
	}
	if d.SavedAddressID == "" {
		for _, field := range []string{d.FirstName, d.LastName, d.Address, d.City, d.State, d.Zip, d.Phone} {
			if strings.TrimSpace(field) == "" {
				return ErrIncompleteShipping
			}
		}
	}
	w.shipping = d
	w.completed[SectionShipping] = true
	w.expanded = SectionPayment
	return nil
}

// CompletePayment validates and stores the payment section, then expands the
// review section. Shipping must be completed first.
func (w *Wizard) CompletePayment(d PaymentDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.placed {
		return ErrOrderPlaced
	}
	if !w.completed[SectionShipping] {
		return ErrSectionLocked
	}
	for _, field := range []string{d.CardNumber, d.Expiry, d.CVV, d.CardholderName} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompletePayment
		}
	}
	w.payment = d
	w.completed[SectionPayment] = true
	w.expanded = SectionReview
	return nil
}

// Expand reopens a section. Jumping back is always allowed; jumping forward
// requires the preceding section to be completed. Completed flags survive.
func (w *Wizard) Expand(section Section) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if section > SectionShipping && !w.completed[section-1] {
		return ErrSectionLocked
	}
	w.expanded = section
	return nil
}

// Expanded returns the currently open section.
func (w *Wizard) Expanded() Section {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expanded
}

// IsCompleted reports whether a section's guard has been satisfied.
func (w *Wizard) IsCompleted(section Section) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed[section]
}

// Placed reports whether the wizard reached its terminal state.
func (w *Wizard) Placed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.placed
}

// PlaceOrder simulates order placement: a fixed delay, cart clear, and a
// generated order identifier. No order record exists anywhere afterwards.
func (w *Wizard) PlaceOrder(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.placed {
		w.mu.Unlock()
		return "", ErrOrderPlaced
	}
	if !w.completed[SectionShipping] || !w.completed[SectionPayment] {
		w.mu.Unlock()
		return "", ErrNotReady
	}
	delay := w.placeDelay
	w.mu.Unlock()

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := w.cart.Clear(ctx); err != nil {
		return "", err
	}

	orderID := uuid.NewString()

	w.mu.Lock()
	w.placed = true
	w.mu.Unlock()

	w.logger.Printf("checkout: order placed id=%s (simulated)", orderID)
	return orderID, nil
}

// CartChanged schedules a debounced shipping-cost recalculation, so rapid
// quantity edits collapse into a single recalc.
func (w *Wizard) CartChanged() {
	w.recalc.Trigger(func() {
		cost := w.shippingCost(w.cart.TotalCents())
		w.mu.Lock()
		w.shippingCostCents = cost
		w.mu.Unlock()
	})
}

// ShippingCostCents returns the last computed shipping cost.
func (w *Wizard) ShippingCostCents() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shippingCostCents
}

// Shipping returns the stored shipping details.
func (w *Wizard) Shipping() ShippingDetails {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.shipping
}

// defaultShippingCost: flat rate, waived above the free-shipping threshold.
func defaultShippingCost(totalCents int64) int64 {
	if totalCents >= 5000 {
		return 0
	}
	return 499
}
