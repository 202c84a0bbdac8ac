package handlers

import (
	"github.com/gofiber/fiber/v2"

	"mokolo/internal/api"
	applog "mokolo/internal/log"
	"mokolo/internal/reports"
	"mokolo/internal/session"
	"mokolo/internal/validate"
)

// AdminHandler drives the platform back-office. Pages are a thin SPA shell;
// these endpoints answer JSON.
type AdminHandler struct {
	Admins *session.Admins
	API    *api.Admin
}

// client returns the adapter bound to this request's bearer token.
func (h *AdminHandler) client(c *fiber.Ctx) *api.Admin {
	tok, _ := c.Locals("token").(string)
	return h.API.WithToken(tok)
}

// fail maps adapter errors onto responses: 401 clears the session and
// redirects to the admin login, 404 stays a not-found payload, validation
// errors carry their field messages through.
func (h *AdminHandler) fail(c *fiber.Ctx, action string, err error) error {
	e := expired{
		tokenCookie: cookieAdminToken,
		loginPath:   adminLoginPath,
		clear:       func(c *fiber.Ctx, sid string) { _ = h.Admins.Logout(c.Context(), sid) },
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

func (h *AdminHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "admin_login", fiber.Map{"Err": ""})
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	password := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || password == "" {
		applog.Security(c, "admin.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("admin_login", fiber.Map{"Err": "Invalid email or password"})
	}

	admin, token, err := h.Admins.Login(c.Context(), sid, email, password)
	if err != nil {
		applog.Security(c, "admin.login.fail", map[string]any{"email": email})
		msg := "Invalid email or password"
		if ae, ok := err.(*api.Error); ok && ae.Status != fiber.StatusUnauthorized {
			msg = ae.Message
		}
		return c.Status(fiber.StatusUnauthorized).Render("admin_login", fiber.Map{"Err": msg})
	}

	setTokenCookie(c, cookieAdminToken, token)
	applog.Audit(c, "admin.login.success", map[string]any{"admin": admin.ID})
	return c.Redirect("/admin")
}

func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Admins.Logout(c.Context(), sid)
	clearCookie(c, cookieAdminToken)
	applog.Audit(c, "admin.logout", nil)
	return c.Redirect(adminLoginPath)
}

func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	current := c.FormValue("current_password")
	next := c.FormValue("new_password")
	if !validate.Password(next) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "password does not meet requirements"})
	}
	if err := h.client(c).ChangePassword(c.Context(), current, next); err != nil {
		return h.fail(c, "admin.password.fail", err)
	}
	applog.Audit(c, "admin.password.change", nil)
	return c.JSON(fiber.Map{"ok": true})
}

// ---------- Dashboard & reports ----------

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	report, err := h.client(c).ReportDashboard(c.Context())
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}
	return c.JSON(report)
}

func (h *AdminHandler) Report(c *fiber.Ctx) error {
	kind := c.Params("kind")
	switch kind {
	case "sales", "inventory", "orders", "summary":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown report type"})
	}
	rows, err := h.client(c).ReportRows(c.Context(), kind)
	if err != nil {
		return h.fail(c, "admin.report.fail", err)
	}
	return c.JSON(rows)
}

// DownloadReport streams the rendered report; when the backend cannot
// produce the file the rows are formatted as CSV locally instead.
func (h *AdminHandler) DownloadReport(c *fiber.Ctx) error {
	kind := c.Params("kind")
	switch kind {
	case "sales", "inventory", "orders", "summary":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown report type"})
	}
	client := h.client(c)
	primary := &reports.Remote{Admin: client, Format: c.Query("format", "pdf")}
	fallback := &reports.CSV{Admin: client}

	out, err := reports.Download(c.Context(), primary, fallback, kind)
	if err != nil {
		return h.fail(c, "admin.report.download.fail", err)
	}
	if out.ContentType == "text/csv" {
		applog.Info(c, "admin.report.download.fallback", map[string]any{"kind": kind})
	}
	c.Set("Content-Type", out.ContentType)
	c.Set("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	return c.Send(out.Data)
}
