// Package cart keeps the storefront cart in sync with the backend. Every
// mutation goes to the server and the canonical cart it returns replaces
// local state wholesale — no client-side merge heuristics — so totals and
// stock checks can never drift from the server's.
package cart

import (
	"context"
	"errors"
	"sync"

	"mokolo/internal/api"
	"mokolo/internal/domain"
)

// ErrItemBusy is returned when a mutation targets a line that already has a
// request in flight. Serializing per line prevents the lost-update race a
// rapid double-click would otherwise cause.
var ErrItemBusy = errors.New("cart: item update already in flight")

// Snapshot is the read view handed to pages. Subtotal and ItemCount are
// recomputed from Items on every read, never stored independently.
type Snapshot struct {
	ID        string            `json:"id"`
	Items     []domain.CartItem `json:"items"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
	IsOpen    bool              `json:"isOpen"`
}

type state struct {
	cart     domain.Cart
	open     bool
	loading  bool
	inflight map[string]bool // per-item guard, keyed by cart item id
}

// Store caches one cart per cart-id cookie.
type Store struct {
	shop *api.Shop

	mu    sync.Mutex
	carts map[string]*state
}

func NewStore(shop *api.Shop) *Store {
	return &Store{shop: shop, carts: make(map[string]*state)}
}

func (s *Store) stateFor(cartID string) *state {
	st, ok := s.carts[cartID]
	if !ok {
		st = &state{inflight: make(map[string]bool)}
		s.carts[cartID] = st
	}
	return st
}

func snapshot(st *state) Snapshot {
	items := make([]domain.CartItem, len(st.cart.Items))
	copy(items, st.cart.Items)
	snap := Snapshot{ID: st.cart.ID, Items: items, IsOpen: st.open}
	for _, it := range items {
		snap.Subtotal += it.Price * float64(it.Quantity)
		snap.ItemCount += it.Quantity
	}
	return snap
}

// Get returns the cached cart, fetching it from the server on first sight of
// this cart id.
func (s *Store) Get(ctx context.Context, cartID string) (Snapshot, error) {
	s.mu.Lock()
	st := s.stateFor(cartID)
	if st.cart.ID != "" {
		snap := snapshot(st)
		s.mu.Unlock()
		return snap, nil
	}
	s.mu.Unlock()

	cart, err := s.shop.Cart(ctx, cartID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.replace(cartID, cart), nil
}

func (s *Store) replace(cartID string, cart *domain.Cart) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateFor(cartID)
	st.cart = *cart
	return snapshot(st)
}

func (s *Store) IsLoading(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateFor(cartID).loading
}

// beginItem claims the per-item slot, also flipping the coarse loading flag.
func (s *Store) beginItem(cartID, itemID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateFor(cartID)
	if st.inflight[itemID] {
		return nil, ErrItemBusy
	}
	st.inflight[itemID] = true
	st.loading = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(st.inflight, itemID)
		st.loading = len(st.inflight) > 0
	}, nil
}

// AddItem adds quantity of a product. The per-item guard keys on the product
// id since the cart line id is not known until the server replies.
func (s *Store) AddItem(ctx context.Context, cartID, productID string, quantity int) (Snapshot, error) {
	if quantity < 1 {
		quantity = 1
	}
	done, err := s.beginItem(cartID, "add:"+productID)
	if err != nil {
		return Snapshot{}, err
	}
	defer done()

	cart, err := s.shop.AddItem(ctx, cartID, productID, quantity)
	if err != nil {
		return Snapshot{}, err
	}
	return s.replace(cartID, cart), nil
}

// UpdateQuantity sets a line's quantity. Zero or negative removes the line;
// quantities above the product's stock are rejected before any network call.
func (s *Store) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) (Snapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}
	if stock, ok := s.stockFor(cartID, itemID); ok && quantity > stock {
		return Snapshot{}, &api.Error{Status: 422, Message: "quantity exceeds available stock"}
	}

	done, err := s.beginItem(cartID, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	defer done()

	cart, err := s.shop.UpdateItem(ctx, cartID, itemID, quantity)
	if err != nil {
		return Snapshot{}, err
	}
	return s.replace(cartID, cart), nil
}

func (s *Store) RemoveItem(ctx context.Context, cartID, itemID string) (Snapshot, error) {
	done, err := s.beginItem(cartID, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	defer done()

	cart, err := s.shop.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.replace(cartID, cart), nil
}

func (s *Store) stockFor(cartID, itemID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateFor(cartID)
	for _, it := range st.cart.Items {
		if it.ID == itemID {
			return it.Stock, true
		}
	}
	return 0, false
}

// Forget drops the cached cart, e.g. after checkout converts it to an order.
func (s *Store) Forget(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}

// ---------- UI visibility, no network effect ----------

func (s *Store) ToggleCart(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateFor(cartID)
	st.open = !st.open
	return st.open
}

func (s *Store) CloseCart(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateFor(cartID).open = false
}
