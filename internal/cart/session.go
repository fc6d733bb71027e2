package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"storefront-backend/internal/domain"

	"github.com/google/uuid"
)

// Backend is the remote cart resource. Fetch returns domain.ErrNotFound when
// no cart exists yet for the customer; Save resends the whole document.
type Backend interface {
	Fetch(ctx context.Context, customerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// Mirror is a best-effort persistent copy of the cart, used as a fallback
// when the backend is unavailable at session start.
type Mirror interface {
	Load(ctx context.Context, customerID string) (*domain.Cart, error)
	Store(ctx context.Context, customerID string, cart domain.Cart) error
}

// ErrMirrorMiss is returned by a Mirror when it holds no copy.
var ErrMirrorMiss = errors.New("mirror miss")

// Session keeps a local cart view responsive while staying eventually
// consistent with the server-held copy. Every mutation applies optimistically
// to local state, persists the full document, then refetches the server copy.
// Items are keyed by SKU; quantities merge on add.
type Session struct {
	mu         sync.Mutex
	customerID string
	currency   string
	items      []domain.CartItem
	lastErr    string

	backend Backend
	mirror  Mirror
	logger  *log.Logger
}

// NewSession builds a session for the given customer identifier and loads the
// authoritative cart. If the backend is unreachable the mirror copy is used
// so the storefront still renders a cart at startup.
func NewSession(ctx context.Context, customerID string, backend Backend, mirror Mirror, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Session{
		customerID: customerID,
		currency:   "USD",
		backend:    backend,
		mirror:     mirror,
		logger:     logger,
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Printf("cart session: initial fetch customer=%s error=%v", customerID, err)
		s.loadMirrorFallback(ctx)
	}
	return s
}

// NewGuestID generates a customer identifier for an unauthenticated visitor.
func NewGuestID() string {
	return "guest-" + uuid.NewString()
}

// Add merges the item into the cart by SKU, persists and refetches. On a
// persist failure the optimistic change is discarded with a forced refetch
// and the error is returned to the caller.
func (s *Session) Add(ctx context.Context, item domain.CartItem) error {
	if strings.TrimSpace(item.SKU) == "" {
		return errors.New("sku required")
	}
	if item.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i := range s.items {
		if s.items[i].SKU == item.SKU {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}

	if err := s.backend.Save(ctx, s.documentLocked()); err != nil {
		s.lastErr = err.Error()
		if rerr := s.refreshLocked(ctx); rerr != nil {
			s.logger.Printf("cart session: forced refetch customer=%s error=%v", s.customerID, rerr)
		}
		return fmt.Errorf("add item: %w", err)
	}
	return s.reconcileLocked(ctx)
}

// UpdateQuantity sets an item's quantity; zero or below removes the item.
// On a persist failure local state is rolled back to the pre-mutation
// snapshot rather than refetched.
func (s *Session) UpdateQuantity(ctx context.Context, sku string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := cloneItems(s.items)
	if quantity <= 0 {
		s.items = filterSKU(s.items, sku)
	} else {
		for i := range s.items {
			if s.items[i].SKU == sku {
				s.items[i].Quantity = quantity
				break
			}
		}
	}

	if err := s.backend.Save(ctx, s.documentLocked()); err != nil {
		s.items = snapshot
		s.lastErr = err.Error()
		return fmt.Errorf("update quantity: %w", err)
	}
	return s.reconcileLocked(ctx)
}

// Remove filters the item out of the cart. Same snapshot-rollback semantics
// as UpdateQuantity.
func (s *Session) Remove(ctx context.Context, sku string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := cloneItems(s.items)
	s.items = filterSKU(s.items, sku)

	if err := s.backend.Save(ctx, s.documentLocked()); err != nil {
		s.items = snapshot
		s.lastErr = err.Error()
		return fmt.Errorf("remove item: %w", err)
	}
	return s.reconcileLocked(ctx)
}

// Clear empties the cart, used after order placement.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := cloneItems(s.items)
	s.items = nil

	if err := s.backend.Save(ctx, s.documentLocked()); err != nil {
		s.items = snapshot
		s.lastErr = err.Error()
		return fmt.Errorf("clear cart: %w", err)
	}
	return s.reconcileLocked(ctx)
}

// Refresh fetches the authoritative cart and replaces local state. A missing
// server cart counts as empty. Any other failure leaves the items untouched
// and is surfaced through LastError like the mutation paths.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshLocked(ctx); err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.lastErr = ""
	return nil
}

// Items returns a copy of the current line items.
func (s *Session) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Count returns the total number of units. Derived, never stored.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalCents returns the cart total as sum of unit price times quantity.
func (s *Session) TotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, item := range s.items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// CustomerID returns the identifier the session's cart is keyed by.
func (s *Session) CustomerID() string {
	return s.customerID
}

// LastError returns the message from the most recent failed operation, empty
// after a successful one.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// reconcileLocked runs the post-persist refetch and mirrors the result.
func (s *Session) reconcileLocked(ctx context.Context) error {
	if err := s.refreshLocked(ctx); err != nil {
		s.lastErr = err.Error()
		return fmt.Errorf("refetch cart: %w", err)
	}
	s.lastErr = ""
	s.storeMirrorLocked(ctx)
	return nil
}

func (s *Session) refreshLocked(ctx context.Context) error {
	cart, err := s.backend.Fetch(ctx, s.customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Created lazily on first add; no cart yet means empty.
			s.items = nil
			return nil
		}
		return err
	}
	s.items = cloneItems(cart.Items)
	if cart.Currency != "" {
		s.currency = cart.Currency
	}
	return nil
}

func (s *Session) documentLocked() domain.Cart {
	return domain.Cart{
		CustomerID: s.customerID,
		Currency:   s.currency,
		Items:      cloneItems(s.items),
		UpdatedAt:  time.Now().UTC(),
	}
}

func (s *Session) storeMirrorLocked(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Store(ctx, s.customerID, s.documentLocked()); err != nil {
		s.logger.Printf("cart session: mirror store customer=%s error=%v", s.customerID, err)
	}
}

func (s *Session) loadMirrorFallback(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	cached, err := s.mirror.Load(ctx, s.customerID)
	if err != nil {
		if !errors.Is(err, ErrMirrorMiss) {
			s.logger.Printf("cart session: mirror load customer=%s error=%v", s.customerID, err)
		}
		return
	}
	s.mu.Lock()
	s.items = cloneItems(cached.Items)
	if cached.Currency != "" {
		s.currency = cached.Currency
	}
	s.mu.Unlock()
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	if items == nil {
		return nil
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}

func filterSKU(items []domain.CartItem, sku string) []domain.CartItem {
	var out []domain.CartItem
	for _, item := range items {
		if item.SKU != sku {
			out = append(out, item)
		}
	}
	return out
}
