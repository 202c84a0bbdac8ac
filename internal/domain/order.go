package domain

// Payment statuses reported by the backend.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	DeliveryFee     float64     `json:"deliveryFee"`
	Discount        float64     `json:"discount"`
	Total           float64     `json:"total"`
	PaymentStatus   string      `json:"paymentStatus"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	DeliveryStatus  string      `json:"deliveryStatus"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	ShippingAddress Address     `json:"shippingAddress"`
	CreatedAt       string      `json:"createdAt"`
}

// OrderItem carries a per-line fulfillment status so each supplier in a
// multi-vendor order tracks only their own items.
type OrderItem struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"productId"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Quantity          int     `json:"quantity"`
	Image             string  `json:"image,omitempty"`
	SupplierID        string  `json:"supplierId,omitempty"`
	FulfillmentStatus string  `json:"fulfillmentStatus,omitempty"`
}

type Cart struct {
	ID    string     `json:"id"`
	Items []CartItem `json:"items"`
}

// CartItem snapshots the product at add time; Stock rides along so quantity
// controls can be bounded without refetching the product.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
	Stock     int     `json:"stock"`
}
