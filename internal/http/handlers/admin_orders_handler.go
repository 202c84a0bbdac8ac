package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/orders"
	"mokolo/internal/permissions"
	"mokolo/internal/validate"
)

// ---------- Orders ----------

func (h *AdminHandler) Orders(c *fiber.Ctx) error {
	q := api.OrderQuery{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Page:          c.QueryInt("page"),
		Limit:         c.QueryInt("limit"),
	}
	list, err := h.client(c).Orders(c.Context(), q)
	if err != nil {
		return h.fail(c, "admin.orders.list.fail", err)
	}
	return c.JSON(list)
}

func (h *AdminHandler) Order(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	order, err := h.client(c).Order(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found", "backTo": "/admin/orders"})
		}
		return h.fail(c, "admin.orders.get.fail", err)
	}
	return c.JSON(fiber.Map{
		"order":    order,
		"progress": orders.ProgressIndex(order.DeliveryStatus),
		"terminal": orders.IsTerminal(order.DeliveryStatus),
	})
}

// UpdateDeliveryStatus requests a transition. Beyond refusing to touch a
// terminal order, legality is the backend's call: a rejection is surfaced
// as-is and local state is never reverted optimistically.
func (h *AdminHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	status := c.FormValue("status")
	if status == "" {
		var body struct {
			Status string `json:"deliveryStatus"`
		}
		if c.BodyParser(&body) == nil {
			status = body.Status
		}
	}
	if !ok || !orders.IsValid(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id or status"})
	}

	current, err := h.client(c).Order(c.Context(), id)
	if err == nil && orders.IsTerminal(current.DeliveryStatus) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "order is in a terminal state"})
	}

	order, err := h.client(c).UpdateDeliveryStatus(c.Context(), id, status)
	if err != nil {
		return h.fail(c, "admin.orders.status.fail", err)
	}
	applog.Audit(c, "admin.orders.status", map[string]any{"order": id, "status": status})
	return c.JSON(order)
}

func (h *AdminHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	var body struct {
		Status string `json:"paymentStatus"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	switch body.Status {
	case "pending", "paid", "failed", "refunded":
	default:
		ok = false
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id or payment status"})
	}
	order, err := h.client(c).UpdatePaymentStatus(c.Context(), id, body.Status)
	if err != nil {
		return h.fail(c, "admin.orders.payment.fail", err)
	}
	applog.Audit(c, "admin.orders.payment", map[string]any{"order": id, "status": body.Status})
	return c.JSON(order)
}

// ---------- Suppliers ----------

func (h *AdminHandler) Suppliers(c *fiber.Ctx) error {
	list, err := h.client(c).Suppliers(c.Context())
	if err != nil {
		return h.fail(c, "admin.suppliers.list.fail", err)
	}
	return c.JSON(list)
}

func (h *AdminHandler) Supplier(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier id"})
	}
	supplier, err := h.client(c).Supplier(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "supplier not found", "backTo": "/admin/suppliers"})
		}
		return h.fail(c, "admin.suppliers.get.fail", err)
	}
	return c.JSON(supplier)
}

func (h *AdminHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier id"})
	}
	var patch api.SupplierPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	supplier, err := h.client(c).UpdateSupplier(c.Context(), id, patch)
	if err != nil {
		return h.fail(c, "admin.suppliers.update.fail", err)
	}
	applog.Audit(c, "admin.suppliers.update", map[string]any{"supplier": id})
	return c.JSON(supplier)
}

func (h *AdminHandler) SupplierUsers(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier id"})
	}
	users, err := h.client(c).SupplierUsers(c.Context(), id)
	if err != nil {
		return h.fail(c, "admin.suppliers.users.fail", err)
	}
	return c.JSON(users)
}

// supplierUserInput validates the role/permission payload shared by the
// create and update endpoints. Permissions identical to the role defaults
// are persisted as null so future default changes are not masked.
func supplierUserInput(c *fiber.Ctx) (api.SupplierUserInput, bool) {
	var body struct {
		Name        string           `json:"name"`
		Email       string           `json:"email"`
		Role        string           `json:"role"`
		Permissions *permissions.Set `json:"permissions"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.SupplierUserInput{}, false
	}
	role, okRole := validate.Role(body.Role)
	_, okEmail := validate.Email(body.Email)
	if !okRole || !okEmail {
		return api.SupplierUserInput{}, false
	}
	in := api.SupplierUserInput{Name: body.Name, Email: body.Email, Role: permissions.Role(role)}
	if body.Permissions != nil {
		in.Permissions = permissions.Normalize(in.Role, *body.Permissions)
	}
	return in, true
}

func (h *AdminHandler) CreateSupplierUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	in, okIn := supplierUserInput(c)
	if !ok || !okIn {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier user payload"})
	}
	user, err := h.client(c).CreateSupplierUser(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "admin.suppliers.users.create.fail", err)
	}
	applog.Audit(c, "admin.suppliers.users.create", map[string]any{"supplier": id, "user": user.ID})
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *AdminHandler) UpdateSupplierUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	userID, okUser := validate.ID(c.Params("userId"))
	in, okIn := supplierUserInput(c)
	if !ok || !okUser || !okIn {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier user payload"})
	}
	user, err := h.client(c).UpdateSupplierUser(c.Context(), id, userID, in)
	if err != nil {
		return h.fail(c, "admin.suppliers.users.update.fail", err)
	}
	applog.Audit(c, "admin.suppliers.users.update", map[string]any{"supplier": id, "user": userID})
	return c.JSON(user)
}

func (h *AdminHandler) DeleteSupplierUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	userID, okUser := validate.ID(c.Params("userId"))
	if !ok || !okUser {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier user id"})
	}
	if err := h.client(c).DeleteSupplierUser(c.Context(), id, userID); err != nil {
		return h.fail(c, "admin.suppliers.users.delete.fail", err)
	}
	applog.Audit(c, "admin.suppliers.users.delete", map[string]any{"supplier": id, "user": userID})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AdminHandler) SupplierProducts(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier id"})
	}
	products, err := h.client(c).SupplierProducts(c.Context(), id)
	if err != nil {
		return h.fail(c, "admin.suppliers.products.fail", err)
	}
	return c.JSON(products)
}

func (h *AdminHandler) SupplierOrders(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid supplier id"})
	}
	list, err := h.client(c).SupplierOrders(c.Context(), id)
	if err != nil {
		return h.fail(c, "admin.suppliers.orders.fail", err)
	}
	return c.JSON(list)
}
