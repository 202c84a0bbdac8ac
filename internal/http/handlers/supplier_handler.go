package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/permissions"
	"mokolo/internal/session"
	"mokolo/internal/validate"
)

// SupplierHandler serves the vendor dashboard. Identity comes from
// RequireSupplier, capability gates from RequireCap; handlers only assume
// an authenticated supplier user.
type SupplierHandler struct {
	Suppliers *session.Suppliers
	API       *api.Supplier
}

func (h *SupplierHandler) client(c *fiber.Ctx) *api.Supplier {
	tok, _ := c.Locals("token").(string)
	return h.API.WithToken(tok)
}

func (h *SupplierHandler) fail(c *fiber.Ctx, action string, err error) error {
	e := expired{
		tokenCookie: cookieSupplierToken,
		loginPath:   supplierLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = h.Suppliers.Logout(c.Context(), sid) },
	}
	if handled, herr := e.handle(c, err); handled {
		return herr
	}
	applog.Error(c, action, err, nil)
	if ae, ok := err.(*api.Error); ok {
		return c.Status(ae.Status).JSON(fiber.Map{"error": ae.Message, "errors": ae.Errors})
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream request failed"})
}

// ---------- Auth ----------

func (h *SupplierHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "supplier_login", fiber.Map{"Err": ""})
}

func (h *SupplierHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	password := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || password == "" {
		applog.Security(c, "supplier.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("supplier_login", fiber.Map{"Err": "Invalid email or password"})
	}

	id, token, err := h.Suppliers.Login(c.Context(), sid, email, password)
	if err != nil {
		if errors.Is(err, session.ErrSupplierInactive) {
			applog.Security(c, "supplier.login.fail", map[string]any{"email": email, "reason": "not_active"})
			return c.Status(fiber.StatusForbidden).Render("supplier_login", fiber.Map{
				"Err": "This supplier account is not active. Contact support.",
			})
		}
		applog.Security(c, "supplier.login.fail", map[string]any{"email": email})
		msg := "Invalid email or password"
		if ae, ok := err.(*api.Error); ok && ae.Status != fiber.StatusUnauthorized {
			msg = ae.Message
		}
		return c.Status(fiber.StatusUnauthorized).Render("supplier_login", fiber.Map{"Err": msg})
	}

	setTokenCookie(c, cookieSupplierToken, token)
	applog.Audit(c, "supplier.login.success", map[string]any{"user": id.User.ID, "supplier": id.Supplier.ID})
	return c.Redirect("/supplier")
}

func (h *SupplierHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Suppliers.Logout(c.Context(), sid)
	clearCookie(c, cookieSupplierToken)
	applog.Audit(c, "supplier.logout", nil)
	return c.Redirect(supplierLoginPath)
}

// Me answers the identity the dashboard shell boots from, including the
// effective capability set so the UI can hide what the user cannot do.
func (h *SupplierHandler) Me(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, _, ok := h.Suppliers.Current(c.Context(), sid)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated", "redirect": supplierLoginPath})
	}
	return c.JSON(fiber.Map{
		"user":         id.User,
		"supplier":     id.Supplier,
		"capabilities": id.Capabilities(),
	})
}

func (h *SupplierHandler) ChangePassword(c *fiber.Ctx) error {
	current := c.FormValue("current_password")
	next := c.FormValue("new_password")
	if !validate.Password(next) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "password does not meet requirements"})
	}
	if err := h.client(c).ChangePassword(c.Context(), current, next); err != nil {
		return h.fail(c, "supplier.password.fail", err)
	}
	applog.Audit(c, "supplier.password.change", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// ---------- Products ----------

func (h *SupplierHandler) Products(c *fiber.Ctx) error {
	q := api.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page"),
		Limit:    c.QueryInt("limit"),
	}
	products, err := h.client(c).Products(c.Context(), q)
	if err != nil {
		return h.fail(c, "supplier.products.list.fail", err)
	}
	return c.JSON(products)
}

func (h *SupplierHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	product, err := h.client(c).Product(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found", "backTo": "/supplier/products"})
		}
		return h.fail(c, "supplier.products.get.fail", err)
	}
	return c.JSON(product)
}

func (h *SupplierHandler) CreateProduct(c *fiber.Ctx) error {
	var in api.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if !validate.Money(in.Price) || (in.ComparePrice != nil && !validate.Money(*in.ComparePrice)) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "price must be a non-negative amount"})
	}
	product, err := h.client(c).CreateProduct(c.Context(), in)
	if err != nil {
		return h.fail(c, "supplier.products.create.fail", err)
	}
	applog.Audit(c, "supplier.products.create", map[string]any{"product": product.ID})
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *SupplierHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var in api.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if !validate.Money(in.Price) || (in.ComparePrice != nil && !validate.Money(*in.ComparePrice)) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "price must be a non-negative amount"})
	}
	product, err := h.client(c).UpdateProduct(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "supplier.products.update.fail", err)
	}
	applog.Audit(c, "supplier.products.update", map[string]any{"product": id})
	return c.JSON(product)
}

func (h *SupplierHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.client(c).DeleteProduct(c.Context(), id); err != nil {
		return h.fail(c, "supplier.products.delete.fail", err)
	}
	applog.Audit(c, "supplier.products.delete", map[string]any{"product": id})
	return c.JSON(fiber.Map{"ok": true})
}

func (h *SupplierHandler) UpdateStock(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	var body struct {
		Quantity  int    `json:"quantity"`
		Operation string `json:"operation"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	op, okOp := validate.StockOp(body.Operation)
	if !okID || !okOp || body.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid stock adjustment"})
	}
	product, err := h.client(c).UpdateStock(c.Context(), id, body.Quantity, op)
	if err != nil {
		return h.fail(c, "supplier.stock.fail", err)
	}
	applog.Audit(c, "supplier.stock.update", map[string]any{
		"product": id, "op": op, "qty": body.Quantity, "stock": product.Stock,
	})
	return c.JSON(product)
}

// ---------- Orders ----------

func (h *SupplierHandler) Orders(c *fiber.Ctx) error {
	q := api.OrderQuery{
		Status: c.Query("status"),
		Page:   c.QueryInt("page"),
		Limit:  c.QueryInt("limit"),
	}
	list, err := h.client(c).Orders(c.Context(), q)
	if err != nil {
		return h.fail(c, "supplier.orders.list.fail", err)
	}
	return c.JSON(list)
}

func (h *SupplierHandler) Order(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	order, err := h.client(c).Order(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found", "backTo": "/supplier/orders"})
		}
		return h.fail(c, "supplier.orders.get.fail", err)
	}
	return c.JSON(order)
}

// UpdateFulfillment patches a single line item. The backend owns which
// transitions are legal per line; we only screen obvious garbage.
func (h *SupplierHandler) UpdateFulfillment(c *fiber.Ctx) error {
	orderID, okOrder := validate.ID(c.Params("id"))
	itemID, okItem := validate.ID(c.Params("itemId"))
	var body struct {
		Status string `json:"fulfillmentStatus"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	switch body.Status {
	case "pending", "processing", "shipped", "delivered", "cancelled":
	default:
		okItem = false
	}
	if !okOrder || !okItem {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid fulfillment update"})
	}
	order, err := h.client(c).UpdateFulfillment(c.Context(), orderID, itemID, body.Status)
	if err != nil {
		return h.fail(c, "supplier.fulfillment.fail", err)
	}
	applog.Audit(c, "supplier.fulfillment.update", map[string]any{
		"order": orderID, "item": itemID, "status": body.Status,
	})
	return c.JSON(order)
}

// ---------- Staff ----------

func (h *SupplierHandler) Staff(c *fiber.Ctx) error {
	staff, err := h.client(c).Staff(c.Context())
	if err != nil {
		return h.fail(c, "supplier.staff.list.fail", err)
	}
	return c.JSON(staff)
}

func (h *SupplierHandler) CreateStaff(c *fiber.Ctx) error {
	in, ok := supplierUserInput(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid staff payload"})
	}
	user, err := h.client(c).CreateStaff(c.Context(), in)
	if err != nil {
		return h.fail(c, "supplier.staff.create.fail", err)
	}
	applog.Audit(c, "supplier.staff.create", map[string]any{"user": user.ID, "role": string(user.Role)})
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *SupplierHandler) UpdateStaff(c *fiber.Ctx) error {
	userID, okUser := validate.ID(c.Params("userId"))
	in, okIn := supplierUserInput(c)
	if !okUser || !okIn {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid staff payload"})
	}
	user, err := h.client(c).UpdateStaff(c.Context(), userID, in)
	if err != nil {
		return h.fail(c, "supplier.staff.update.fail", err)
	}
	applog.Audit(c, "supplier.staff.update", map[string]any{"user": userID, "role": string(in.Role)})
	return c.JSON(user)
}

func (h *SupplierHandler) DeleteStaff(c *fiber.Ctx) error {
	userID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid staff id"})
	}
	sid := ensureSID(c)
	if id, _, okCur := h.Suppliers.Current(c.Context(), sid); okCur && id.User.ID == userID {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cannot remove your own account"})
	}
	if err := h.client(c).DeleteStaff(c.Context(), userID); err != nil {
		return h.fail(c, "supplier.staff.delete.fail", err)
	}
	applog.Audit(c, "supplier.staff.delete", map[string]any{"user": userID})
	return c.JSON(fiber.Map{"ok": true})
}

// ---------- Payouts ----------

func (h *SupplierHandler) Payouts(c *fiber.Ctx) error {
	payouts, err := h.client(c).Payouts(c.Context())
	if err != nil {
		return h.fail(c, "supplier.payouts.fail", err)
	}
	return c.JSON(payouts)
}

// capability shorthands used when wiring routes.

func CanManageProducts(s permissions.Set) bool { return s.CanCreateProducts || s.CanEditProducts }
func CanViewOrders(s permissions.Set) bool     { return s.CanViewOrders }
func CanManageStaff(s permissions.Set) bool    { return s.CanManageStaff }
