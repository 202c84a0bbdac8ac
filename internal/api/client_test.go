package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mokolo/internal/api"
)

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"a1","email":"ops@mokolo.cm","name":"Ops"}`))
	}))
	defer srv.Close()

	admin := api.NewAdmin(api.New(srv.URL))
	if _, err := admin.WithToken("tok-123").Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("want bearer header, got %q", gotAuth)
	}
}

// WithToken must not leak the token into the base client other requests use.
func TestWithTokenDoesNotMutateBase(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	base := api.New(srv.URL)
	admin := api.NewAdmin(base)
	admin.WithToken("secret").Me(context.Background())
	admin.Me(context.Background())

	if len(auths) != 2 {
		t.Fatalf("want 2 requests, got %d", len(auths))
	}
	if auths[1] != "" {
		t.Fatalf("token leaked into base client: %q", auths[1])
	}
}

func TestValidationErrorCarriesFieldMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"message": "validation failed",
			"errors": []map[string]string{
				{"field": "phone", "message": "invalid phone number"},
			},
		})
	}))
	defer srv.Close()

	admin := api.NewAdmin(api.New(srv.URL))
	_, err := admin.Login(context.Background(), "x@y.cm", "pw")
	ae, ok := err.(*api.Error)
	if !ok {
		t.Fatalf("want *api.Error, got %T", err)
	}
	if ae.Status != 422 || ae.Message != "validation failed" {
		t.Fatalf("unexpected error: %+v", ae)
	}
	if len(ae.Errors) != 1 || ae.Errors[0].Field != "phone" {
		t.Fatalf("field errors lost: %+v", ae.Errors)
	}
}

func TestUnauthorizedAndNotFoundPredicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	admin := api.NewAdmin(api.New(srv.URL))
	_, err := admin.Me(context.Background())
	if !api.IsUnauthorized(err) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if api.IsNotFound(err) {
		t.Fatal("401 must not read as not-found")
	}

	_, err = admin.Product(context.Background(), "missing")
	if !api.IsNotFound(err) {
		t.Fatalf("want not-found, got %v", err)
	}
}

// Proxies sometimes answer with HTML; the error must still be typed with a
// sane message.
func TestNonJSONErrorBodyStillTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream down</html>"))
	}))
	defer srv.Close()

	admin := api.NewAdmin(api.New(srv.URL))
	_, err := admin.Me(context.Background())
	ae, ok := err.(*api.Error)
	if !ok {
		t.Fatalf("want *api.Error, got %T", err)
	}
	if ae.Status != 502 || ae.Message != http.StatusText(502) {
		t.Fatalf("unexpected error: %+v", ae)
	}
}

func TestUploadSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			f.Close()
			if hdr.Filename != "banner.png" {
				t.Errorf("filename lost: %q", hdr.Filename)
			}
		}
		w.Write([]byte(`{"id":"cat1","name":"Phones","slug":"phones"}`))
	}))
	defer srv.Close()

	admin := api.NewAdmin(api.New(srv.URL))
	_, err := admin.UploadCategoryImage(context.Background(), "cat1", "banner.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatal(err)
	}
}

func TestGuestCartHeaderForwardedOnLogin(t *testing.T) {
	var gotCart string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCart = r.Header.Get("X-Cart-Id")
		w.Write([]byte(`{"token":"t","customer":{"id":"c1","name":"Ama","email":"ama@x.gh","phone":"0240000000"}}`))
	}))
	defer srv.Close()

	cust := api.NewCustomer(api.New(srv.URL))
	if _, err := cust.Login(context.Background(), "ama@x.gh", "pw", "guest-cart-9"); err != nil {
		t.Fatal(err)
	}
	if gotCart != "guest-cart-9" {
		t.Fatalf("guest cart id not forwarded: %q", gotCart)
	}
}
