package api

import (
	"context"
	"net/http"

	"mokolo/internal/domain"
)

// Customer is the account-facing adapter. Login and google auth accept a
// guest cart id forwarded as X-Cart-Id so the backend can merge the
// anonymous cart into the customer's cart — one attempt, best effort.
type Customer struct{ c *Client }

func NewCustomer(c *Client) *Customer { return &Customer{c: c} }

func (cu *Customer) WithToken(token string) *Customer { return &Customer{c: cu.c.WithToken(token)} }

type CustomerAuth struct {
	Token    string          `json:"token"`
	Customer domain.Customer `json:"customer"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func cartHeader(cartID string) map[string]string {
	if cartID == "" {
		return nil
	}
	return map[string]string{"X-Cart-Id": cartID}
}

func (cu *Customer) Register(ctx context.Context, in RegisterInput) (*CustomerAuth, error) {
	var out CustomerAuth
	if err := cu.c.do(ctx, http.MethodPost, "/customers/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cu *Customer) Login(ctx context.Context, email, password, cartID string) (*CustomerAuth, error) {
	body := map[string]string{"email": email, "password": password}
	var out CustomerAuth
	if err := cu.c.doWith(ctx, http.MethodPost, "/customers/login", cartHeader(cartID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cu *Customer) GoogleAuth(ctx context.Context, idToken, cartID string) (*CustomerAuth, error) {
	body := map[string]string{"idToken": idToken}
	var out CustomerAuth
	if err := cu.c.doWith(ctx, http.MethodPost, "/customers/google", cartHeader(cartID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cu *Customer) Me(ctx context.Context) (*domain.Customer, error) {
	var out domain.Customer
	if err := cu.c.do(ctx, http.MethodGet, "/customers/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ProfileInput struct {
	Name                   string `json:"name,omitempty"`
	Phone                  string `json:"phone,omitempty"`
	PreferredPaymentMethod string `json:"preferredPaymentMethod,omitempty"`
}

func (cu *Customer) UpdateProfile(ctx context.Context, in ProfileInput) (*domain.Customer, error) {
	var out domain.Customer
	if err := cu.c.do(ctx, http.MethodPut, "/customers/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (cu *Customer) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return cu.c.do(ctx, http.MethodPut, "/customers/password", body, nil)
}

// ---------- Addresses ----------

type AddressInput struct {
	Label     string `json:"label,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Region    string `json:"region,omitempty"`
	Landmark  string `json:"landmark,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// Address endpoints return the full updated list so the caller can mirror
// server state wholesale; the server keeps at most one default.
func (cu *Customer) CreateAddress(ctx context.Context, in AddressInput) ([]domain.Address, error) {
	var out []domain.Address
	if err := cu.c.do(ctx, http.MethodPost, "/customers/addresses", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cu *Customer) UpdateAddress(ctx context.Context, id string, in AddressInput) ([]domain.Address, error) {
	var out []domain.Address
	if err := cu.c.do(ctx, http.MethodPut, "/customers/addresses/"+id, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cu *Customer) DeleteAddress(ctx context.Context, id string) ([]domain.Address, error) {
	var out []domain.Address
	if err := cu.c.do(ctx, http.MethodDelete, "/customers/addresses/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Orders ----------

func (cu *Customer) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := cu.c.do(ctx, http.MethodGet, "/customers/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cu *Customer) Order(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := cu.c.do(ctx, http.MethodGet, "/customers/orders/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
