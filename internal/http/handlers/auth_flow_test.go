package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"mokolo/internal/config"
	"mokolo/internal/http/handlers"
	"mokolo/internal/session"
)

func newApp(t *testing.T, backendURL string) (*fiber.App, *handlers.Deps) {
	t.Helper()
	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	deps := handlers.NewDeps(config.Config{APIURL: backendURL}, session.NewMemory())
	return app, deps
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func formReq(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestAdminLoginSetsTokenCookie(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"token":"admin-tok","admin":{"id":"a1","email":"ops@mokolo.cm","name":"Ops"}}`))
	}))
	defer backend.Close()

	app, deps := newApp(t, backend.URL)
	app.Post("/admin/login", deps.AdminHandler.Login)

	resp, err := app.Test(formReq("/admin/login", url.Values{
		"email":    {"ops@mokolo.cm"},
		"password": {"Passw0rd1"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("want redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("want /admin, got %q", loc)
	}
	if tok := cookieValue(resp, "admin_token"); tok != "admin-tok" {
		t.Fatalf("admin_token cookie missing, got %q", tok)
	}
	if cookieValue(resp, "sid") == "" {
		t.Fatal("sid cookie not minted")
	}
}

func TestAdminLoginBadCredentialsStaysOnForm(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer backend.Close()

	app, deps := newApp(t, backend.URL)
	app.Post("/admin/login", deps.AdminHandler.Login)

	resp, err := app.Test(formReq("/admin/login", url.Values{
		"email":    {"ops@mokolo.cm"},
		"password": {"wrong"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
	if cookieValue(resp, "admin_token") != "" {
		t.Fatal("token cookie set on failed login")
	}
}

// A stale token on a protected page must clear the cookie and redirect to
// the login page exactly once; the login page itself never redirects again.
func TestExpiredSessionRedirectsWithoutLoop(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer backend.Close()

	app, deps := newApp(t, backend.URL)
	app.Get("/admin/login", deps.AdminHandler.LoginForm)
	admin := app.Group("/admin", handlers.RequireAdmin(deps.Admins))
	admin.Get("/", deps.AdminHandler.Dashboard)

	req := httptest.NewRequest("GET", "/admin/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-stale"})
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: "stale-opaque-token"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("want redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin/login" {
		t.Fatalf("want /admin/login, got %q", loc)
	}
	// Cookie cleared so the next request carries no stale token.
	for _, c := range resp.Cookies() {
		if c.Name == "admin_token" && c.Value != "" {
			t.Fatalf("stale token not cleared: %q", c.Value)
		}
	}

	// Following the redirect lands on the form with a 200, not a loop.
	resp2, err := app.Test(httptest.NewRequest("GET", "/admin/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp2.StatusCode != fiber.StatusOK {
		t.Fatalf("login form should answer 200, got %d", resp2.StatusCode)
	}
}

func TestProtectedRouteWithoutAnySessionRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected without a token")
	}))
	defer backend.Close()

	app, deps := newApp(t, backend.URL)
	account := app.Group("/account", handlers.RequireCustomer(deps.Customers))
	account.Get("/", deps.AccountHandler.Account)

	resp, err := app.Test(httptest.NewRequest("GET", "/account/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("want redirect to /login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}
