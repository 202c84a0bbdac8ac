package domain

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description,omitempty"`
	Price          float64         `json:"price"` // XAF or GHS depending on storefront
	ComparePrice   *float64        `json:"comparePrice,omitempty"`
	Stock          int             `json:"stock"`
	Images         []string        `json:"images"`
	Specifications []Specification `json:"specifications,omitempty"`
	DeliveryZones  []DeliveryZone  `json:"deliveryZones,omitempty"`
	Categories     []Category      `json:"categories,omitempty"`
	SupplierID     string          `json:"supplierId,omitempty"`
	IsPreorder     bool            `json:"isPreorder"`
	PreorderNote   string          `json:"preorderNote,omitempty"`
	Featured       bool            `json:"featured"`
	Active         bool            `json:"active"`
}

type Specification struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Group string `json:"group,omitempty"`
}

type DeliveryZone struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Fee  float64 `json:"fee"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// SpecTemplate is an admin-defined reusable product attribute. Its key is
// derived from the label server-side (lowercase, spaces to underscores).
type SpecTemplate struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	Type  string `json:"type"` // text | number | select
}

// InventoryLog is an append-only audit record written server-side whenever
// stock changes.
type InventoryLog struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId"`
	PreviousStock int    `json:"previousStock"`
	NewStock      int    `json:"newStock"`
	Change        int    `json:"change"`
	Reason        string `json:"reason,omitempty"`
	ReferenceID   string `json:"referenceId,omitempty"`
	ReferenceType string `json:"referenceType,omitempty"`
	CreatedAt     string `json:"createdAt"`
}
