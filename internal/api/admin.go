package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mokolo/internal/domain"
	"mokolo/internal/permissions"
)

// Admin is the platform back-office adapter.
type Admin struct{ c *Client }

func NewAdmin(c *Client) *Admin { return &Admin{c: c} }

// WithToken binds a bearer token for a single request chain.
func (a *Admin) WithToken(token string) *Admin { return &Admin{c: a.c.WithToken(token)} }

// ---------- Auth ----------

type AdminAuth struct {
	Token string       `json:"token"`
	Admin domain.Admin `json:"admin"`
}

func (a *Admin) Login(ctx context.Context, email, password string) (*AdminAuth, error) {
	var out AdminAuth
	err := a.c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) Me(ctx context.Context) (*domain.Admin, error) {
	var out domain.Admin
	if err := a.c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return a.c.do(ctx, http.MethodPut, "/auth/password", body, nil)
}

// ---------- Products ----------

type ProductQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

func (q ProductQuery) encode() string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
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

type ProductInput struct {
	Name           string                 `json:"name"`
	Price          float64                `json:"price"`
	ComparePrice   *float64               `json:"comparePrice,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Stock          int                    `json:"stock"`
	Images         []string               `json:"images,omitempty"`
	Specifications []domain.Specification `json:"specifications,omitempty"`
	DeliveryZones  []string               `json:"deliveryZones,omitempty"`
	CategoryIDs    []string               `json:"categoryIds,omitempty"`
	IsPreorder     bool                   `json:"isPreorder"`
	PreorderNote   string                 `json:"preorderNote,omitempty"`
	Featured       bool                   `json:"featured"`
	Active         bool                   `json:"active"`
}

func (a *Admin) Products(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.c.do(ctx, http.MethodGet, "/admin/products"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) Product(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := a.c.do(ctx, http.MethodGet, "/admin/products/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := a.c.do(ctx, http.MethodPost, "/admin/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := a.c.do(ctx, http.MethodPut, "/admin/products/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) DeleteProduct(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/admin/products/"+id, nil, nil)
}

// Stock operations accepted by the backend.
const (
	StockSet       = "set"
	StockIncrement = "increment"
	StockDecrement = "decrement"
)

// UpdateStock adjusts stock by op and returns the product with its new stock.
// The backend appends the matching InventoryLog entry.
func (a *Admin) UpdateStock(ctx context.Context, id string, quantity int, op string) (*domain.Product, error) {
	body := map[string]any{"quantity": quantity, "operation": op}
	var out domain.Product
	if err := a.c.do(ctx, http.MethodPatch, "/admin/products/"+id+"/stock", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) InventoryLogs(ctx context.Context, productID string) ([]domain.InventoryLog, error) {
	var out []domain.InventoryLog
	if err := a.c.do(ctx, http.MethodGet, "/admin/products/"+productID+"/inventory-logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Categories ----------

type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

func (a *Admin) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := a.c.do(ctx, http.MethodGet, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := a.c.do(ctx, http.MethodPost, "/admin/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	var out domain.Category
	if err := a.c.do(ctx, http.MethodPut, "/admin/categories/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) DeleteCategory(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/admin/categories/"+id, nil, nil)
}

func (a *Admin) UploadCategoryImage(ctx context.Context, id, fileName string, file io.Reader) (*domain.Category, error) {
	var out domain.Category
	if err := a.c.upload(ctx, http.MethodPost, "/admin/categories/"+id+"/image", nil, "image", fileName, file, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Orders ----------

type OrderQuery struct {
	Status        string
	PaymentStatus string
	Page          int
	Limit         int
}

func (q OrderQuery) encode() string {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.PaymentStatus != "" {
		v.Set("paymentStatus", q.PaymentStatus)
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

func (a *Admin) Orders(ctx context.Context, q OrderQuery) ([]domain.Order, error) {
	var out []domain.Order
	if err := a.c.do(ctx, http.MethodGet, "/admin/orders"+q.encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) Order(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := a.c.do(ctx, http.MethodGet, "/admin/orders/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateDeliveryStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	var out domain.Order
	body := map[string]string{"deliveryStatus": status}
	if err := a.c.do(ctx, http.MethodPatch, "/admin/orders/"+id+"/delivery-status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdatePaymentStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	var out domain.Order
	body := map[string]string{"paymentStatus": status}
	if err := a.c.do(ctx, http.MethodPatch, "/admin/orders/"+id+"/payment-status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- Suppliers ----------

type SupplierPatch struct {
	Status         *string  `json:"status,omitempty"`
	CommissionRate *float64 `json:"commissionRate,omitempty"`
	MaxUsers       *int     `json:"maxUsers,omitempty"`
	MaxProducts    *int     `json:"maxProducts,omitempty"`
}

type SupplierUserInput struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Role        permissions.Role `json:"role"`
	Permissions *permissions.Set `json:"permissions"` // nil means role defaults
}

func (a *Admin) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	var out []domain.Supplier
	if err := a.c.do(ctx, http.MethodGet, "/admin/suppliers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) Supplier(ctx context.Context, id string) (*domain.Supplier, error) {
	var out domain.Supplier
	if err := a.c.do(ctx, http.MethodGet, "/admin/suppliers/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateSupplier(ctx context.Context, id string, patch SupplierPatch) (*domain.Supplier, error) {
	var out domain.Supplier
	if err := a.c.do(ctx, http.MethodPatch, "/admin/suppliers/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) SupplierUsers(ctx context.Context, supplierID string) ([]domain.SupplierAdmin, error) {
	var out []domain.SupplierAdmin
	if err := a.c.do(ctx, http.MethodGet, "/admin/suppliers/"+supplierID+"/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) CreateSupplierUser(ctx context.Context, supplierID string, in SupplierUserInput) (*domain.SupplierAdmin, error) {
	var out domain.SupplierAdmin
	if err := a.c.do(ctx, http.MethodPost, "/admin/suppliers/"+supplierID+"/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateSupplierUser(ctx context.Context, supplierID, userID string, in SupplierUserInput) (*domain.SupplierAdmin, error) {
	var out domain.SupplierAdmin
	if err := a.c.do(ctx, http.MethodPut, "/admin/suppliers/"+supplierID+"/users/"+userID, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) DeleteSupplierUser(ctx context.Context, supplierID, userID string) error {
	return a.c.do(ctx, http.MethodDelete, "/admin/suppliers/"+supplierID+"/users/"+userID, nil, nil)
}

func (a *Admin) SupplierProducts(ctx context.Context, supplierID string) ([]domain.Product, error) {
	var out []domain.Product
	if err := a.c.do(ctx, http.MethodGet, "/admin/suppliers/"+supplierID+"/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) SupplierOrders(ctx context.Context, supplierID string) ([]domain.Order, error) {
	var out []domain.Order
	if err := a.c.do(ctx, http.MethodGet, "/admin/suppliers/"+supplierID+"/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Reports ----------

type DashboardReport struct {
	TotalOrders    int     `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalProducts  int     `json:"totalProducts"`
	TotalCustomers int     `json:"totalCustomers"`
	PendingOrders  int     `json:"pendingOrders"`
	LowStock       int     `json:"lowStock"`
}

type ReportRow struct {
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

func (a *Admin) ReportDashboard(ctx context.Context) (*DashboardReport, error) {
	var out DashboardReport
	if err := a.c.do(ctx, http.MethodGet, "/admin/reports/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) ReportRows(ctx context.Context, kind string) ([]ReportRow, error) {
	var out []ReportRow
	if err := a.c.do(ctx, http.MethodGet, "/admin/reports/"+kind, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadReport fetches a rendered report (PDF or CSV) from the backend.
func (a *Admin) DownloadReport(ctx context.Context, kind, format string) ([]byte, string, error) {
	v := url.Values{"type": {kind}, "format": {format}}
	return a.c.raw(ctx, "/admin/reports/download?"+v.Encode())
}

// ---------- Specification templates ----------

type SpecTemplateInput struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	Type  string `json:"type"`
}

// DeriveSpecKey builds the storage key from a display label: lowercase with
// spaces collapsed to underscores.
func DeriveSpecKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}

func (a *Admin) SpecTemplates(ctx context.Context) ([]domain.SpecTemplate, error) {
	var out []domain.SpecTemplate
	if err := a.c.do(ctx, http.MethodGet, "/admin/specifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Admin) CreateSpecTemplate(ctx context.Context, in SpecTemplateInput) (*domain.SpecTemplate, error) {
	if in.Key == "" {
		in.Key = DeriveSpecKey(in.Label)
	}
	var out domain.SpecTemplate
	if err := a.c.do(ctx, http.MethodPost, "/admin/specifications", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) UpdateSpecTemplate(ctx context.Context, id string, in SpecTemplateInput) (*domain.SpecTemplate, error) {
	if in.Key == "" {
		in.Key = DeriveSpecKey(in.Label)
	}
	var out domain.SpecTemplate
	if err := a.c.do(ctx, http.MethodPut, "/admin/specifications/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Admin) DeleteSpecTemplate(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/admin/specifications/"+id, nil, nil)
}
