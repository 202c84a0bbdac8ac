package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"mokolo/internal/http/handlers"
)

func orderBackend(t *testing.T, deliveryStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login":
			w.Write([]byte(`{"token":"admin-tok","admin":{"id":"a1","email":"ops@mokolo.cm","name":"Ops"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/admin/orders/o1":
			w.Write([]byte(`{"id":"o1","orderNumber":"MK-1","deliveryStatus":"` + deliveryStatus + `","paymentStatus":"paid","total":1000}`))
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/delivery-status"):
			w.Write([]byte(`{"id":"o1","orderNumber":"MK-1","deliveryStatus":"shipped","paymentStatus":"paid","total":1000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func orderApp(t *testing.T, backendURL string) (*fiber.App, string, string) {
	t.Helper()
	app, deps := newApp(t, backendURL)
	app.Post("/admin/login", deps.AdminHandler.Login)
	admin := app.Group("/admin", handlers.RequireAdmin(deps.Admins))
	admin.Patch("/api/orders/:id/delivery-status", deps.AdminHandler.UpdateDeliveryStatus)

	resp, err := app.Test(formReq("/admin/login", map[string][]string{
		"email": {"ops@mokolo.cm"}, "password": {"Passw0rd1"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	return app, cookieValue(resp, "sid"), cookieValue(resp, "admin_token")
}

func patchStatus(app *fiber.App, sid, tok, status string) (*http.Response, error) {
	req := httptest.NewRequest("PATCH", "/admin/api/orders/o1/delivery-status",
		strings.NewReader(`{"deliveryStatus":"`+status+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	req.AddCookie(&http.Cookie{Name: "admin_token", Value: tok})
	return app.Test(req)
}

func TestDeliveryStatusUpdateOnLiveOrder(t *testing.T) {
	backend := orderBackend(t, "processing")
	defer backend.Close()
	app, sid, tok := orderApp(t, backend.URL)

	resp, err := patchStatus(app, sid, tok, "shipped")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

// Delivered and cancelled orders are terminal: the control refuses further
// transitions before any mutation reaches the backend.
func TestDeliveryStatusBlockedOnTerminalOrder(t *testing.T) {
	for _, terminal := range []string{"delivered", "cancelled"} {
		backend := orderBackend(t, terminal)
		app, sid, tok := orderApp(t, backend.URL)

		resp, err := patchStatus(app, sid, tok, "processing")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusConflict {
			t.Fatalf("%s: want 409, got %d", terminal, resp.StatusCode)
		}
		backend.Close()
	}
}

func TestDeliveryStatusRejectsUnknownStatus(t *testing.T) {
	backend := orderBackend(t, "processing")
	defer backend.Close()
	app, sid, tok := orderApp(t, backend.URL)

	resp, err := patchStatus(app, sid, tok, "teleported")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}
