package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/permissions"
	"mokolo/internal/session"
)

// Cookie names. No two stores write the same cookie.
const (
	cookieSID           = "sid"
	cookieAdminToken    = "admin_token"
	cookieCustomerToken = "customer_token"
	cookieSupplierToken = "supplier_token"
	cookieCartID        = "cart_id"
)

// Login routes per actor, used by the global 401 handler.
const (
	adminLoginPath    = "/admin/login"
	supplierLoginPath = "/supplier/login"
	customerLoginPath = "/login"
)

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(cookieSID)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     cookieSID,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}

// ensureCartID returns the guest cart id cookie, minting one when absent.
func ensureCartID(c *fiber.Ctx) string {
	id := c.Cookies(cookieCartID)
	if id == "" {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     cookieCartID,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(7 * 24 * time.Hour),
		})
	}
	return id
}

// setTokenCookie persists a bearer token with the 7-day expiry the backend
// issues tokens for.
func setTokenCookie(c *fiber.Ctx, name, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// expired is the session-expiry handler shared by every adapter call site:
// on a 401 the session store is cleared before redirecting so no stale
// "authenticated" state flashes, and login pages themselves never redirect
// (no loop).
type expired struct {
	tokenCookie string
	loginPath   string
	clear       func(c *fiber.Ctx, sid string)
}

func (e expired) handle(c *fiber.Ctx, err error) (bool, error) {
	if !api.IsUnauthorized(err) {
		return false, nil
	}
	sid := c.Cookies(cookieSID)
	if sid != "" {
		e.clear(c, sid)
	}
	clearCookie(c, e.tokenCookie)
	applog.Security(c, "session.expired", map[string]any{"login": e.loginPath})
	if c.Path() == e.loginPath {
		return true, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session expired"})
	}
	return true, c.Redirect(e.loginPath)
}

// RequireAdmin hydrates the admin session (cookie reconciliation included)
// and stashes it in Locals, or bounces to the admin login page.
func RequireAdmin(admins *session.Admins) fiber.Handler {
	e := expired{
		tokenCookie: cookieAdminToken,
		loginPath:   adminLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = admins.Logout(c.Context(), sid) },
	}
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		admin, err := admins.LoadAuth(c.Context(), sid, c.Cookies(cookieAdminToken))
		if err != nil {
			if handled, herr := e.handle(c, err); handled {
				return herr
			}
			clearCookie(c, cookieAdminToken)
			return c.Redirect(adminLoginPath)
		}
		_, token, _ := admins.Current(c.Context(), sid)
		c.Locals("admin", admin)
		c.Locals("token", token)
		c.Locals("actor", "admin:"+admin.ID)
		return c.Next()
	}
}

// RequireSupplier hydrates the supplier session. Capability gating is done
// per-route with RequireCap; this only establishes identity.
func RequireSupplier(suppliers *session.Suppliers) fiber.Handler {
	e := expired{
		tokenCookie: cookieSupplierToken,
		loginPath:   supplierLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = suppliers.Logout(c.Context(), sid) },
	}
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		id, err := suppliers.LoadAuth(c.Context(), sid, c.Cookies(cookieSupplierToken))
		if err != nil {
			if handled, herr := e.handle(c, err); handled {
				return herr
			}
			clearCookie(c, cookieSupplierToken)
			return c.Redirect(supplierLoginPath)
		}
		_, token, _ := suppliers.Current(c.Context(), sid)
		c.Locals("supplier", id)
		c.Locals("token", token)
		c.Locals("actor", "supplier:"+id.User.ID)
		return c.Next()
	}
}

// RequireCap gates a supplier route on one capability. The check is a UX
// hint only — the backend re-verifies every request.
func RequireCap(check func(caps permissions.Set) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := c.Locals("supplier").(*session.SupplierIdentity)
		if !ok {
			return c.Redirect(supplierLoginPath)
		}
		if !check(id.Capabilities()) {
			applog.Security(c, "access.denied.capability", map[string]any{"user": id.User.ID})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
		}
		return c.Next()
	}
}

// RequireCustomer hydrates the customer session for account pages.
func RequireCustomer(customers *session.Customers) fiber.Handler {
	e := expired{
		tokenCookie: cookieCustomerToken,
		loginPath:   customerLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = customers.Logout(c.Context(), sid) },
	}
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c)
		customer, err := customers.LoadAuth(c.Context(), sid, c.Cookies(cookieCustomerToken))
		if err != nil {
			if handled, herr := e.handle(c, err); handled {
				return herr
			}
			clearCookie(c, cookieCustomerToken)
			return c.Redirect(customerLoginPath)
		}
		_, token, _ := customers.Current(c.Context(), sid)
		c.Locals("customer", customer)
		c.Locals("token", token)
		c.Locals("actor", "customer:"+customer.ID)
		return c.Next()
	}
}
