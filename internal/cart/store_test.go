package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"mokolo/internal/api"
	"mokolo/internal/cart"
	"mokolo/internal/domain"
)

// shopServer is a minimal cart backend that holds one canonical cart and
// answers every mutation with it whole.
type shopServer struct {
	cart    domain.Cart
	gets    int32
	updates int32
	entered chan struct{} // signaled when a mutation reaches the backend
	block   chan struct{} // when set, mutations wait until closed
}

func (s *shopServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.block != nil && r.Method != http.MethodGet {
			if s.entered != nil {
				s.entered <- struct{}{}
			}
			<-s.block
		}
		switch {
		case r.Method == http.MethodGet:
			atomic.AddInt32(&s.gets, 1)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/items"):
			var body struct {
				ProductID string `json:"productId"`
				Quantity  int    `json:"quantity"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			s.cart.Items = append(s.cart.Items, domain.CartItem{
				ID: "line-" + body.ProductID, ProductID: body.ProductID,
				Name: body.ProductID, Price: 1000, Quantity: body.Quantity, Stock: 5,
			})
		case r.Method == http.MethodPut:
			atomic.AddInt32(&s.updates, 1)
			var body struct {
				Quantity int `json:"quantity"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			itemID := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			for i := range s.cart.Items {
				if s.cart.Items[i].ID == itemID {
					s.cart.Items[i].Quantity = body.Quantity
				}
			}
		case r.Method == http.MethodDelete:
			itemID := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			kept := s.cart.Items[:0]
			for _, it := range s.cart.Items {
				if it.ID != itemID {
					kept = append(kept, it)
				}
			}
			s.cart.Items = kept
		}
		json.NewEncoder(w).Encode(s.cart)
	})
}

func newStore(t *testing.T, backend *shopServer) (*cart.Store, func()) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	return cart.NewStore(api.NewShop(api.New(srv.URL))), srv.Close
}

func TestTotalsRecomputedFromItems(t *testing.T) {
	backend := &shopServer{cart: domain.Cart{ID: "crt-1"}}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	snap, err := store.AddItem(ctx, "crt-1", "p1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Subtotal != 2000 || snap.ItemCount != 2 {
		t.Fatalf("want subtotal 2000 / count 2, got %v / %d", snap.Subtotal, snap.ItemCount)
	}

	snap, err = store.AddItem(ctx, "crt-1", "p2", 3)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Subtotal != 5000 || snap.ItemCount != 5 {
		t.Fatalf("want subtotal 5000 / count 5, got %v / %d", snap.Subtotal, snap.ItemCount)
	}
}

func TestGetFetchesOnceThenServesCache(t *testing.T) {
	backend := &shopServer{cart: domain.Cart{ID: "crt-2", Items: []domain.CartItem{
		{ID: "l1", ProductID: "p1", Name: "Phone", Price: 50000, Quantity: 1, Stock: 3},
	}}}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, err := store.Get(ctx, "crt-2")
		if err != nil {
			t.Fatal(err)
		}
		if snap.Subtotal != 50000 {
			t.Fatalf("bad subtotal: %v", snap.Subtotal)
		}
	}
	if n := atomic.LoadInt32(&backend.gets); n != 1 {
		t.Fatalf("want one backend fetch, got %d", n)
	}
}

func TestZeroQuantityRemovesLine(t *testing.T) {
	backend := &shopServer{cart: domain.Cart{ID: "crt-3", Items: []domain.CartItem{
		{ID: "l1", ProductID: "p1", Name: "Phone", Price: 50000, Quantity: 1, Stock: 3},
	}}}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	if _, err := store.Get(ctx, "crt-3"); err != nil {
		t.Fatal(err)
	}
	snap, err := store.UpdateQuantity(ctx, "crt-3", "l1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Items) != 0 || snap.ItemCount != 0 {
		t.Fatalf("zero quantity should remove the line: %+v", snap)
	}
}

func TestQuantityAboveStockRejectedLocally(t *testing.T) {
	backend := &shopServer{cart: domain.Cart{ID: "crt-4", Items: []domain.CartItem{
		{ID: "l1", ProductID: "p1", Name: "Phone", Price: 50000, Quantity: 1, Stock: 3},
	}}}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	if _, err := store.Get(ctx, "crt-4"); err != nil {
		t.Fatal(err)
	}
	_, err := store.UpdateQuantity(ctx, "crt-4", "l1", 10)
	ae, ok := err.(*api.Error)
	if !ok || ae.Status != 422 {
		t.Fatalf("want local 422, got %v", err)
	}
	if atomic.LoadInt32(&backend.updates) != 0 {
		t.Fatal("over-stock update should never reach the backend")
	}
}

func TestConcurrentMutationOnSameLineIsRejected(t *testing.T) {
	backend := &shopServer{
		cart:    domain.Cart{ID: "crt-5", Items: []domain.CartItem{{ID: "l1", ProductID: "p1", Price: 1000, Quantity: 1, Stock: 9}}},
		entered: make(chan struct{}, 1),
		block:   make(chan struct{}),
	}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	if _, err := store.Get(ctx, "crt-5"); err != nil {
		t.Fatal(err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := store.UpdateQuantity(ctx, "crt-5", "l1", 2)
		firstDone <- err
	}()

	// Wait until the first mutation is parked in the backend, then a second
	// mutation on the same line must bounce immediately.
	<-backend.entered
	_, second := store.UpdateQuantity(ctx, "crt-5", "l1", 3)
	if !errors.Is(second, cart.ErrItemBusy) {
		t.Fatalf("want ErrItemBusy, got %v", second)
	}

	close(backend.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first update should succeed: %v", err)
	}

	// Slot released: the same line accepts mutations again.
	if _, err := store.UpdateQuantity(ctx, "crt-5", "l1", 4); err != nil {
		t.Fatal(err)
	}
}

func TestForgetDropsCacheAndToggleFlipsVisibility(t *testing.T) {
	backend := &shopServer{cart: domain.Cart{ID: "crt-6"}}
	store, done := newStore(t, backend)
	defer done()
	ctx := context.Background()

	if _, err := store.Get(ctx, "crt-6"); err != nil {
		t.Fatal(err)
	}
	store.Forget("crt-6")
	if _, err := store.Get(ctx, "crt-6"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&backend.gets); n != 2 {
		t.Fatalf("forget should force a refetch, got %d fetches", n)
	}

	if !store.ToggleCart("crt-6") {
		t.Fatal("first toggle should open")
	}
	store.CloseCart("crt-6")
	if store.ToggleCart("crt-6") != true {
		t.Fatal("toggle after close should open again")
	}
}
