package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	"mokolo/internal/cart"
	applog "mokolo/internal/log"
	"mokolo/internal/session"
	"mokolo/internal/validate"
)

// AccountHandler covers customer auth and self-service: registration,
// login (email and Google), profile, addresses, password, order history.
type AccountHandler struct {
	Customers *session.Customers
	Customer  *api.Customer
	Carts     *cart.Store
}

func (h *AccountHandler) client(c *fiber.Ctx) *api.Customer {
	tok, _ := c.Locals("token").(string)
	return h.Customer.WithToken(tok)
}

func (h *AccountHandler) fail(c *fiber.Ctx, action string, err error) error {
	e := expired{
		tokenCookie: cookieCustomerToken,
		loginPath:   customerLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = h.Customers.Logout(c.Context(), sid) },
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

func (h *AccountHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Next": c.Query("next")})
}

func (h *AccountHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AccountHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email, okEmail := validate.Email(c.FormValue("email"))
	name, okName := validate.Name(c.FormValue("name"))
	phone, okPhone := validate.Phone(c.FormValue("phone"))
	password := c.FormValue("password")
	if !okEmail || !okName || !okPhone || !validate.Password(password) {
		return c.Status(fiber.StatusUnprocessableEntity).Render("register", fiber.Map{
			"Err": "Check your name, email, phone and password and try again",
		})
	}

	customer, token, err := h.Customers.Register(c.Context(), sid, api.RegisterInput{
		Name: name, Email: email, Phone: phone, Password: password,
	})
	if err != nil {
		msg := "Could not create your account"
		if ae, ok := err.(*api.Error); ok && ae.Message != "" {
			msg = ae.Message
		}
		return c.Status(fiber.StatusUnprocessableEntity).Render("register", fiber.Map{"Err": msg})
	}

	setTokenCookie(c, cookieCustomerToken, token)
	applog.Audit(c, "customer.register", map[string]any{"customer": customer.ID})
	return c.Redirect("/account")
}

// Login forwards the guest cart id so the backend can merge an anonymous
// cart into the customer's cart on sign-in.
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cartID := ensureCartID(c)
	email := c.FormValue("email")
	password := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || password == "" {
		applog.Security(c, "customer.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password"})
	}

	customer, token, err := h.Customers.Login(c.Context(), sid, email, password, cartID)
	if err != nil {
		applog.Security(c, "customer.login.fail", map[string]any{"email": email})
		msg := "Invalid email or password"
		if ae, ok := err.(*api.Error); ok && ae.Status != fiber.StatusUnauthorized {
			msg = ae.Message
		}
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": msg})
	}

	// The backend merged the guest cart into the customer's cart; drop the
	// pre-merge snapshot so the next read refetches.
	h.Carts.Forget(cartID)

	setTokenCookie(c, cookieCustomerToken, token)
	applog.Audit(c, "customer.login.success", map[string]any{"customer": customer.ID})
	if next := c.FormValue("next"); next != "" && next[0] == '/' {
		return c.Redirect(next)
	}
	return c.Redirect("/account")
}

func (h *AccountHandler) GoogleAuth(c *fiber.Ctx) error {
	sid := ensureSID(c)
	cartID := ensureCartID(c)
	var body struct {
		IDToken string `json:"idToken"`
	}
	if err := c.BodyParser(&body); err != nil || body.IDToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing id token"})
	}

	customer, token, err := h.Customers.GoogleAuth(c.Context(), sid, body.IDToken, cartID)
	if err != nil {
		applog.Security(c, "customer.google.fail", nil)
		return h.fail(c, "customer.google.fail", err)
	}

	h.Carts.Forget(cartID)

	setTokenCookie(c, cookieCustomerToken, token)
	applog.Audit(c, "customer.google.success", map[string]any{"customer": customer.ID})
	// Google accounts arrive without a usable phone number; the account
	// page forces completion before checkout-sensitive actions.
	return c.JSON(fiber.Map{
		"customer":         customer,
		"needsPhoneUpdate": customer.NeedsPhoneUpdate(),
	})
}

func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Customers.Logout(c.Context(), sid)
	clearCookie(c, cookieCustomerToken)
	applog.Audit(c, "customer.logout", nil)
	return c.Redirect("/")
}

// ---------- Profile ----------

func (h *AccountHandler) Account(c *fiber.Ctx) error {
	sid := ensureSID(c)
	customer, _, ok := h.Customers.Current(c.Context(), sid)
	if !ok {
		return c.Redirect(customerLoginPath)
	}
	return render(c, "account", fiber.Map{
		"Customer":         customer,
		"NeedsPhoneUpdate": customer.NeedsPhoneUpdate(),
		"DefaultAddress":   customer.DefaultAddress(),
	})
}

func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var in api.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if in.Phone != "" {
		phone, ok := validate.Phone(in.Phone)
		if !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid phone number"})
		}
		in.Phone = phone
	}
	if in.Name != "" {
		name, ok := validate.Name(in.Name)
		if !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid name"})
		}
		in.Name = name
	}

	customer, err := h.Customers.UpdateProfile(c.Context(), sid, in)
	if err != nil {
		return h.fail(c, "customer.profile.fail", err)
	}
	applog.Audit(c, "customer.profile.update", nil)
	return c.JSON(fiber.Map{
		"customer":         customer,
		"needsPhoneUpdate": customer.NeedsPhoneUpdate(),
	})
}

func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	current := c.FormValue("current_password")
	next := c.FormValue("new_password")
	if !validate.Password(next) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "password does not meet requirements"})
	}
	if err := h.client(c).ChangePassword(c.Context(), current, next); err != nil {
		return h.fail(c, "customer.password.fail", err)
	}
	applog.Audit(c, "customer.password.change", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// ---------- Addresses ----------

func addressInput(c *fiber.Ctx) (api.AddressInput, bool) {
	var in api.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return in, false
	}
	phone, okPhone := validate.Phone(in.Phone)
	name, okName := validate.Name(in.Name)
	if !okPhone || !okName || in.Address == "" || in.City == "" {
		return in, false
	}
	in.Phone = phone
	in.Name = name
	return in, true
}

func (h *AccountHandler) CreateAddress(c *fiber.Ctx) error {
	sid := ensureSID(c)
	in, ok := addressInput(c)
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid address"})
	}
	customer, err := h.Customers.SaveAddress(c.Context(), sid, "", in)
	if err != nil {
		return h.fail(c, "customer.address.create.fail", err)
	}
	applog.Audit(c, "customer.address.create", nil)
	return c.Status(fiber.StatusCreated).JSON(customer.Addresses)
}

func (h *AccountHandler) UpdateAddress(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, okID := validate.ID(c.Params("id"))
	in, okIn := addressInput(c)
	if !okID || !okIn {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "invalid address"})
	}
	customer, err := h.Customers.SaveAddress(c.Context(), sid, id, in)
	if err != nil {
		return h.fail(c, "customer.address.update.fail", err)
	}
	applog.Audit(c, "customer.address.update", map[string]any{"address": id})
	return c.JSON(customer.Addresses)
}

func (h *AccountHandler) DeleteAddress(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid address id"})
	}
	customer, err := h.Customers.DeleteAddress(c.Context(), sid, id)
	if err != nil {
		return h.fail(c, "customer.address.delete.fail", err)
	}
	applog.Audit(c, "customer.address.delete", map[string]any{"address": id})
	return c.JSON(customer.Addresses)
}

// ---------- Orders ----------

func (h *AccountHandler) Orders(c *fiber.Ctx) error {
	list, err := h.client(c).Orders(c.Context())
	if err != nil {
		return h.fail(c, "customer.orders.list.fail", err)
	}
	return c.JSON(list)
}

func (h *AccountHandler) Order(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	order, err := h.client(c).Order(c.Context(), id)
	if err != nil {
		if api.IsNotFound(err) {
			return notFound(c, "We could not find that order.", "/account/orders")
		}
		return h.fail(c, "customer.orders.get.fail", err)
	}
	return render(c, "order", fiber.Map{"Order": order})
}
