package domain

import "mokolo/internal/permissions"

// Supplier status lifecycle. Login is refused while not ACTIVE.
const (
	SupplierPending   = "PENDING"
	SupplierActive    = "ACTIVE"
	SupplierSuspended = "SUSPENDED"
	SupplierInactive  = "INACTIVE"
)

type Supplier struct {
	ID             string          `json:"id"`
	BusinessName   string          `json:"businessName"`
	Status         string          `json:"status"`
	CommissionRate float64         `json:"commissionRate"` // percent retained by the platform
	MaxUsers       int             `json:"maxUsers"`
	MaxProducts    int             `json:"maxProducts"`
	Admins         []SupplierAdmin `json:"admins,omitempty"`
}

// SupplierAdmin is a back-office user of one supplier. Permissions is nil when
// the role defaults apply; a non-nil value replaces them wholesale.
type SupplierAdmin struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Role        permissions.Role `json:"role"`
	Permissions *permissions.Set `json:"permissions,omitempty"`
	SupplierID  string           `json:"supplierId,omitempty"`
}

// Capabilities resolves the effective capability set for this user.
func (a *SupplierAdmin) Capabilities() permissions.Set {
	return permissions.Effective(a.Role, a.Permissions)
}

type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Payout is the commission bookkeeping row suppliers see on their dashboard.
type Payout struct {
	ID            string  `json:"id"`
	Period        string  `json:"period"`
	GrossSales    float64 `json:"grossSales"`
	Commission    float64 `json:"commission"`
	NetPayable    float64 `json:"netPayable"`
	Status        string  `json:"status"` // pending | paid
	PaidAt        string  `json:"paidAt,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}
