package session_test

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mokolo/internal/api"
	"mokolo/internal/session"
)

func TestMemoryStorageExpiresRecords(t *testing.T) {
	m := session.NewMemory()
	ctx := context.Background()

	rec := &session.Record{Token: "t1", Identity: []byte(`{"id":"a1"}`)}
	if err := m.Put(ctx, "admin:s1", rec); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, "admin:s1")
	if err != nil || got.Token != "t1" {
		t.Fatalf("round trip failed: %v %+v", err, got)
	}

	// stale record reads as absent
	old := &session.Record{Token: "t2", SavedAt: time.Now().Add(-session.TTL - time.Hour)}
	m.Put(ctx, "admin:s2", old)
	if _, err := m.Get(ctx, "admin:s2"); err != session.ErrNoSession {
		t.Fatalf("want ErrNoSession past TTL, got %v", err)
	}

	m.Delete(ctx, "admin:s1")
	if _, err := m.Get(ctx, "admin:s1"); err != session.ErrNoSession {
		t.Fatalf("want ErrNoSession after delete, got %v", err)
	}
}

func TestBoxSealRoundTrip(t *testing.T) {
	key := hex.EncodeToString(make([]byte, 32))
	box, err := session.NewBox(key)
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := box.Seal("bearer-token")
	if err != nil {
		t.Fatal(err)
	}
	if sealed == "bearer-token" {
		t.Fatal("token stored in the clear")
	}
	plain, err := box.Open(sealed)
	if err != nil || plain != "bearer-token" {
		t.Fatalf("unseal failed: %v %q", err, plain)
	}

	if _, err := box.Open("not-a-sealed-token"); err == nil {
		t.Fatal("garbage should not unseal")
	}

	// nil Box passes through
	var nb *session.Box
	s, _ := nb.Seal("x")
	if s != "x" {
		t.Fatal("nil box should pass through")
	}
}

func TestNewBoxRejectsBadKeys(t *testing.T) {
	if _, err := session.NewBox("zz"); err == nil {
		t.Fatal("non-hex key accepted")
	}
	if _, err := session.NewBox("abcd"); err == nil {
		t.Fatal("short key accepted")
	}
}

func TestAdminLoginPersistsAndLoadAuthAnswersFromCache(t *testing.T) {
	var meCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"tok-1","admin":{"id":"a1","email":"ops@mokolo.cm","name":"Ops"}}`))
		case "/auth/me":
			atomic.AddInt32(&meCalls, 1)
			w.Write([]byte(`{"id":"a1","email":"ops@mokolo.cm","name":"Ops"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	admins := session.NewAdmins(api.NewAdmin(api.New(srv.URL)), session.NewMemory())
	ctx := context.Background()

	admin, token, err := admins.Login(ctx, "sid-1", "ops@mokolo.cm", "Passw0rd1")
	if err != nil {
		t.Fatal(err)
	}
	if admin.ID != "a1" || token != "tok-1" {
		t.Fatalf("unexpected login result: %+v %q", admin, token)
	}

	// Reload with a populated store: no upstream verification call.
	if _, err := admins.LoadAuth(ctx, "sid-1", "tok-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := admins.LoadAuth(ctx, "sid-1", "tok-1"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&meCalls); n != 0 {
		t.Fatalf("cached LoadAuth hit upstream %d times", n)
	}

	// Fresh sid with only the cookie: exactly one verification call.
	if _, err := admins.LoadAuth(ctx, "sid-2", "tok-1"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&meCalls); n != 1 {
		t.Fatalf("want one /auth/me call, got %d", n)
	}

	if err := admins.Logout(ctx, "sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := admins.Current(ctx, "sid-1"); ok {
		t.Fatal("identity survived logout")
	}
}

func TestLoadAuthRejectsExpiredJWTLocally(t *testing.T) {
	var upstream int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstream, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatal(err)
	}

	admins := session.NewAdmins(api.NewAdmin(api.New(srv.URL)), session.NewMemory())
	if _, err := admins.LoadAuth(context.Background(), "sid-x", expired); err != session.ErrTokenExpired {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
	if atomic.LoadInt32(&upstream) != 0 {
		t.Fatal("expired token should be rejected without a network call")
	}
}

func TestLoadAuthClearsStateOnUpstreamRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token revoked"}`))
	}))
	defer srv.Close()

	store := session.NewMemory()
	admins := session.NewAdmins(api.NewAdmin(api.New(srv.URL)), store)
	ctx := context.Background()

	// Opaque token, locally unverifiable, upstream says no.
	_, err := admins.LoadAuth(ctx, "sid-r", "opaque-token")
	if !api.IsUnauthorized(err) {
		t.Fatalf("want 401 error surfaced, got %v", err)
	}
	if _, _, ok := admins.Current(ctx, "sid-r"); ok {
		t.Fatal("rejected session left behind")
	}
}

func TestCustomerSaveAddressKeepsSingleDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/customers/login":
			w.Write([]byte(`{"token":"ct-1","customer":{"id":"c1","name":"Ama","email":"ama@x.gh","phone":"0240000000",
				"addresses":[{"id":"ad1","name":"Ama","phone":"0240000000","address":"12 Ring Rd","city":"Accra","isDefault":true}]}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/customers/addresses/ad2":
			// Backend echoes the full list; it may lag on unsetting the old default.
			w.Write([]byte(`[
				{"id":"ad1","name":"Ama","phone":"0240000000","address":"12 Ring Rd","city":"Accra","isDefault":true},
				{"id":"ad2","name":"Ama","phone":"0240000000","address":"5 Oxford St","city":"Accra","isDefault":true}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	customers := session.NewCustomers(api.NewCustomer(api.New(srv.URL)), session.NewMemory())
	ctx := context.Background()

	if _, _, err := customers.Login(ctx, "sid-c", "ama@x.gh", "pw", ""); err != nil {
		t.Fatal(err)
	}

	cust, err := customers.SaveAddress(ctx, "sid-c", "ad2", api.AddressInput{
		Name: "Ama", Phone: "0240000000", Address: "5 Oxford St", City: "Accra", IsDefault: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	defaults := 0
	for _, a := range cust.Addresses {
		if a.IsDefault {
			defaults++
			if a.ID != "ad2" {
				t.Fatalf("wrong default: %s", a.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("want exactly one default, got %d", defaults)
	}
}

func TestGoogleCustomerNeedsPhoneUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Cart-Id") != "guest-7" {
			t.Errorf("guest cart id not forwarded: %q", r.Header.Get("X-Cart-Id"))
		}
		w.Write([]byte(`{"token":"ct-2","customer":{"id":"c2","name":"Kwame","email":"kwame@x.gh","phone":"google_118427"}}`))
	}))
	defer srv.Close()

	customers := session.NewCustomers(api.NewCustomer(api.New(srv.URL)), session.NewMemory())
	cust, _, err := customers.GoogleAuth(context.Background(), "sid-g", "google-id-token", "guest-7")
	if err != nil {
		t.Fatal(err)
	}
	if !cust.NeedsPhoneUpdate() {
		t.Fatal("google placeholder phone should require an update")
	}
}
