package cart

import (
	"context"
	"errors"
	"testing"

	"storefront-backend/internal/domain"
)

type fakeBackend struct {
	carts      map[string]domain.Cart
	fetchErr   error
	saveErr    error
	fetchCalls int
	saveCalls  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{carts: make(map[string]domain.Cart)}
}

func (b *fakeBackend) Fetch(_ context.Context, customerID string) (*domain.Cart, error) {
	b.fetchCalls++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	cart, ok := b.carts[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (b *fakeBackend) Save(_ context.Context, cart domain.Cart) error {
	b.saveCalls++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.carts[cart.CustomerID] = cart
	return nil
}

type fakeMirror struct {
	carts    map[string]domain.Cart
	loadErr  error
	storeErr error
	stores   int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{carts: make(map[string]domain.Cart)}
}

func (m *fakeMirror) Load(_ context.Context, customerID string) (*domain.Cart, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	cart, ok := m.carts[customerID]
	if !ok {
		return nil, ErrMirrorMiss
	}
	clone := cart
	return &clone, nil
}

func (m *fakeMirror) Store(_ context.Context, customerID string, cart domain.Cart) error {
	m.stores++
	if m.storeErr != nil {
		return m.storeErr
	}
	m.carts[customerID] = cart
	return nil
}

func item(sku string, priceCents int64, qty int) domain.CartItem {
	return domain.CartItem{
		SKU:            sku,
		Title:          "Item " + sku,
		UnitPriceCents: priceCents,
		Currency:       "USD",
		Quantity:       qty,
	}
}

func TestSessionAddMergesBySKU(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := NewSession(ctx, "cust", backend, nil, nil)

	if err := s.Add(ctx, item("A", 1000, 1)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("second add: %v", err)
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
	if s.TotalCents() != 3000 {
		t.Fatalf("expected total 3000, got %d", s.TotalCents())
	}
	if s.Count() != 3 {
		t.Fatalf("expected count 3, got %d", s.Count())
	}
}

func TestSessionAddSequenceCounts(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, "cust", newFakeBackend(), nil, nil)

	adds := []struct {
		sku string
		qty int
	}{
		{"A", 2}, {"B", 3}, {"A", 1}, {"C", 4},
	}
	want := 0
	for _, a := range adds {
		if err := s.Add(ctx, item(a.sku, 100, a.qty)); err != nil {
			t.Fatalf("add %s: %v", a.sku, err)
		}
		want += a.qty
	}

	if s.Count() != want {
		t.Fatalf("expected count %d, got %d", want, s.Count())
	}
	seen := make(map[string]int)
	for _, it := range s.Items() {
		seen[it.SKU]++
	}
	for sku, n := range seen {
		if n > 1 {
			t.Fatalf("sku %s appears %d times", sku, n)
		}
	}
}

func TestSessionAddValidation(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, "cust", newFakeBackend(), nil, nil)

	if err := s.Add(ctx, item("", 100, 1)); err == nil {
		t.Fatalf("expected sku validation error")
	}
	if err := s.Add(ctx, item("A", 100, 0)); err == nil {
		t.Fatalf("expected quantity validation error")
	}
}

func TestSessionAddFailureForcesRefetch(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.carts["cust"] = domain.Cart{
		CustomerID: "cust",
		Currency:   "USD",
		Items:      []domain.CartItem{item("A", 1000, 1)},
	}
	s := NewSession(ctx, "cust", backend, nil, nil)

	backend.saveErr = errors.New("backend down")
	if err := s.Add(ctx, item("B", 500, 2)); err == nil {
		t.Fatalf("expected add to fail")
	}

	items := s.Items()
	if len(items) != 1 || items[0].SKU != "A" || items[0].Quantity != 1 {
		t.Fatalf("expected server copy restored, got %+v", items)
	}
	if s.LastError() == "" {
		t.Fatalf("expected error state to be set")
	}
}

func TestSessionUpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, "cust", newFakeBackend(), nil, nil)
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.UpdateQuantity(ctx, "A", 0); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Fatalf("expected empty cart, got %+v", s.Items())
	}
}

func TestSessionUpdateQuantityUnknownSKUNoop(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, "cust", newFakeBackend(), nil, nil)
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.UpdateQuantity(ctx, "missing", 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].SKU != "A" || items[0].Quantity != 2 {
		t.Fatalf("expected unchanged items, got %+v", items)
	}
}

func TestSessionUpdateRollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := NewSession(ctx, "cust", backend, nil, nil)
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	backend.saveErr = errors.New("backend down")
	if err := s.UpdateQuantity(ctx, "A", 7); err == nil {
		t.Fatalf("expected update to fail")
	}

	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected pre-mutation snapshot, got %+v", items)
	}
	if s.LastError() == "" {
		t.Fatalf("expected error state to be set")
	}
}

func TestSessionRemove(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, "cust", newFakeBackend(), nil, nil)
	if err := s.Add(ctx, item("A", 1000, 1)); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := s.Add(ctx, item("B", 500, 1)); err != nil {
		t.Fatalf("add B: %v", err)
	}

	if err := s.Remove(ctx, "A"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].SKU != "B" {
		t.Fatalf("expected only B, got %+v", items)
	}
}

func TestSessionRemoveRollbackOnFailure(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := NewSession(ctx, "cust", backend, nil, nil)
	if err := s.Add(ctx, item("A", 1000, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	backend.saveErr = errors.New("backend down")
	if err := s.Remove(ctx, "A"); err == nil {
		t.Fatalf("expected remove to fail")
	}
	items := s.Items()
	if len(items) != 1 || items[0].SKU != "A" {
		t.Fatalf("expected snapshot restored, got %+v", items)
	}
}

func TestSessionRefreshFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := NewSession(ctx, "cust", backend, nil, nil)
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	backend.fetchErr = errors.New("backend down")
	if err := s.Refresh(ctx); err == nil {
		t.Fatalf("expected refresh to fail")
	}
	items := s.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected state untouched, got %+v", items)
	}
	if s.LastError() == "" {
		t.Fatalf("expected error state to be set")
	}

	backend.fetchErr = nil
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("refresh after recovery: %v", err)
	}
	if s.LastError() != "" {
		t.Fatalf("expected error state cleared, got %q", s.LastError())
	}
}

func TestSessionMirrorFallbackOnStartup(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.fetchErr = errors.New("backend down")

	mirror := newFakeMirror()
	mirror.carts["cust"] = domain.Cart{
		CustomerID: "cust",
		Currency:   "EUR",
		Items:      []domain.CartItem{item("A", 1000, 3)},
	}

	s := NewSession(ctx, "cust", backend, mirror, nil)
	items := s.Items()
	if len(items) != 1 || items[0].SKU != "A" || items[0].Quantity != 3 {
		t.Fatalf("expected mirror copy, got %+v", items)
	}
}

func TestSessionMirrorStoreBestEffort(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	mirror.storeErr = errors.New("redis down")

	s := NewSession(ctx, "cust", newFakeBackend(), mirror, nil)
	if err := s.Add(ctx, item("A", 1000, 1)); err != nil {
		t.Fatalf("add should not fail on mirror error: %v", err)
	}
	if mirror.stores == 0 {
		t.Fatalf("expected mirror store attempt")
	}
}

func TestSessionMirrorUpdatedAfterMutation(t *testing.T) {
	ctx := context.Background()
	mirror := newFakeMirror()
	s := NewSession(ctx, "cust", newFakeBackend(), mirror, nil)

	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}
	stored, ok := mirror.carts["cust"]
	if !ok {
		t.Fatalf("expected mirror copy stored")
	}
	if stored.Count() != 2 {
		t.Fatalf("expected mirrored count 2, got %d", stored.Count())
	}
}

func TestSessionClear(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	s := NewSession(ctx, "cust", backend, nil, nil)
	if err := s.Add(ctx, item("A", 1000, 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Count() != 0 || s.TotalCents() != 0 {
		t.Fatalf("expected empty cart, got count=%d total=%d", s.Count(), s.TotalCents())
	}
	if server := backend.carts["cust"]; len(server.Items) != 0 {
		t.Fatalf("expected server cart emptied, got %+v", server.Items)
	}
}

func TestNewGuestID(t *testing.T) {
	a := NewGuestID()
	b := NewGuestID()
	if a == b {
		t.Fatalf("expected distinct guest ids")
	}
	if len(a) < 10 {
		t.Fatalf("unexpected guest id %q", a)
	}
}
