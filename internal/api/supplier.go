package api

import (
	"context"
	"net/http"

	"mokolo/internal/domain"
)

// Supplier mirrors a subset of the admin product/order surface scoped to the
// authenticated supplier, plus staff self-service.
type Supplier struct{ c *Client }

func NewSupplier(c *Client) *Supplier { return &Supplier{c: c} }

func (s *Supplier) WithToken(token string) *Supplier { return &Supplier{c: s.c.WithToken(token)} }

type SupplierAuth struct {
	Token    string               `json:"token"`
	User     domain.SupplierAdmin `json:"user"`
	Supplier domain.Supplier      `json:"supplier"`
}

func (s *Supplier) Login(ctx context.Context, email, password string) (*SupplierAuth, error) {
	var out SupplierAuth
	err := s.c.do(ctx, http.MethodPost, "/supplier/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated staff user together with their supplier.
func (s *Supplier) Me(ctx context.Context) (*SupplierAuth, error) {
	var out SupplierAuth
	if err := s.c.do(ctx, http.MethodGet, "/supplier/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return s.c.do(ctx, http.MethodPut, "/supplier/auth/password", body, nil)
}

// ---------- Products (scoped to the supplier) ----------

func (s *Supplier) Products(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.c.do(ctx, http.MethodGet, "/supplier/products"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Supplier) Product(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := s.c.do(ctx, http.MethodGet, "/supplier/products/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := s.c.do(ctx, http.MethodPost, "/supplier/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := s.c.do(ctx, http.MethodPut, "/supplier/products/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) DeleteProduct(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/supplier/products/"+id, nil, nil)
}

func (s *Supplier) UpdateStock(ctx context.Context, id string, quantity int, op string) (*domain.Product, error) {
	body := map[string]any{"quantity": quantity, "operation": op}
	var out domain.Product
	if err := s.c.do(ctx, http.MethodPatch, "/supplier/products/"+id+"/stock", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Orders ----------

func (s *Supplier) Orders(ctx context.Context, q OrderQuery) ([]domain.Order, error) {
	var out []domain.Order
	if err := s.c.do(ctx, http.MethodGet, "/supplier/orders"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Supplier) Order(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := s.c.do(ctx, http.MethodGet, "/supplier/orders/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFulfillment patches the per-line fulfillment status this supplier
// owns inside a multi-vendor order.
func (s *Supplier) UpdateFulfillment(ctx context.Context, orderID, itemID, status string) (*domain.Order, error) {
	body := map[string]string{"fulfillmentStatus": status}
	var out domain.Order
	if err := s.c.do(ctx, http.MethodPatch, "/supplier/orders/"+orderID+"/items/"+itemID+"/fulfillment", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Staff ----------

func (s *Supplier) Staff(ctx context.Context) ([]domain.SupplierAdmin, error) {
	var out []domain.SupplierAdmin
	if err := s.c.do(ctx, http.MethodGet, "/supplier/staff", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Supplier) CreateStaff(ctx context.Context, in SupplierUserInput) (*domain.SupplierAdmin, error) {
	var out domain.SupplierAdmin
	if err := s.c.do(ctx, http.MethodPost, "/supplier/staff", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) UpdateStaff(ctx context.Context, userID string, in SupplierUserInput) (*domain.SupplierAdmin, error) {
	var out domain.SupplierAdmin
	if err := s.c.do(ctx, http.MethodPut, "/supplier/staff/"+userID, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Supplier) DeleteStaff(ctx context.Context, userID string) error {
	return s.c.do(ctx, http.MethodDelete, "/supplier/staff/"+userID, nil, nil)
}

// ---------- Payouts ----------

func (s *Supplier) Payouts(ctx context.Context) ([]domain.Payout, error) {
	var out []domain.Payout
	if err := s.c.do(ctx, http.MethodGet, "/supplier/payouts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
