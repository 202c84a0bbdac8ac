package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"mokolo/internal/domain"
)

// Shop is the public storefront adapter: catalog browsing, the server-side
// cart and checkout. Cart calls are keyed by cart id, not by bearer token.
type Shop struct{ c *Client }

func NewShop(c *Client) *Shop { return &Shop{c: c} }

func (s *Shop) WithToken(token string) *Shop { return &Shop{c: s.c.WithToken(token)} }

type ShopQuery struct {
	Search   string
	Category string
	Sort     string
	Featured bool
	Page     int
	Limit    int
}

func (q ShopQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (s *Shop) Products(ctx context.Context, q ShopQuery) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.c.do(ctx, http.MethodGet, "/products"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Shop) Product(ctx context.Context, slug string) (*domain.Product, error) {
	var out domain.Product
	if err := s.c.do(ctx, http.MethodGet, "/products/"+slug, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Shop) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := s.c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Cart ----------

func (s *Shop) Cart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var out domain.Cart
	if err := s.c.do(ctx, http.MethodGet, "/cart/"+cartID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem returns the canonical cart; callers replace local state wholesale.
func (s *Shop) AddItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	var out domain.Cart
	if err := s.c.do(ctx, http.MethodPost, "/cart/"+cartID+"/items", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Shop) UpdateItem(ctx context.Context, cartID, itemID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"quantity": quantity}
	var out domain.Cart
	if err := s.c.do(ctx, http.MethodPut, "/cart/"+cartID+"/items/"+itemID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Shop) RemoveItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error) {
	var out domain.Cart
	if err := s.c.do(ctx, http.MethodDelete, "/cart/"+cartID+"/items/"+itemID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Checkout ----------

type CheckoutInput struct {
	CartID        string         `json:"cartId"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
	Address       domain.Address `json:"address"`
	DeliveryZone  string         `json:"deliveryZone"`
	PaymentMethod string         `json:"paymentMethod"` // MTN_MOMO | ORANGE_MONEY | CASH
}

func (s *Shop) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	var out domain.Order
	if err := s.c.do(ctx, http.MethodPost, "/checkout", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Track fetches an order by number for the public tracking page.
func (s *Shop) Track(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var out domain.Order
	if err := s.c.do(ctx, http.MethodGet, "/orders/track/"+orderNumber, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Wishlist ----------

func (s *Shop) Wishlist(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.c.do(ctx, http.MethodGet, "/wishlist", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Shop) SaveToWishlist(ctx context.Context, productID string) error {
	return s.c.do(ctx, http.MethodPost, "/wishlist", map[string]string{"productId": productID}, nil)
}

func (s *Shop) RemoveFromWishlist(ctx context.Context, productID string) error {
	return s.c.do(ctx, http.MethodDelete, "/wishlist/"+productID, nil, nil)
}
