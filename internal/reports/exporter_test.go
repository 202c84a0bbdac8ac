package reports_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mokolo/internal/api"
	"mokolo/internal/reports"
)

func reportBackend(pdfWorks bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/admin/reports/download"):
			if !pdfWorks {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"message":"renderer offline"}`))
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4 fake"))
		case strings.HasPrefix(r.URL.Path, "/admin/reports/"):
			w.Write([]byte(`[
				{"label":"Douala","count":12,"amount":250000},
				{"label":"Accra","count":4,"amount":80000}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestRemoteExportPreferred(t *testing.T) {
	srv := httptest.NewServer(reportBackend(true))
	defer srv.Close()
	admin := api.NewAdmin(api.New(srv.URL))

	out, err := reports.Download(context.Background(), &reports.Remote{Admin: admin}, &reports.CSV{Admin: admin}, "sales")
	if err != nil {
		t.Fatal(err)
	}
	if out.ContentType != "application/pdf" || out.Filename != "sales.pdf" {
		t.Fatalf("unexpected export: %q %q", out.ContentType, out.Filename)
	}
}

func TestCSVFallbackWhenRendererDown(t *testing.T) {
	srv := httptest.NewServer(reportBackend(false))
	defer srv.Close()
	admin := api.NewAdmin(api.New(srv.URL))

	out, err := reports.Download(context.Background(), &reports.Remote{Admin: admin}, &reports.CSV{Admin: admin}, "sales")
	if err != nil {
		t.Fatal(err)
	}
	if out.ContentType != "text/csv" || out.Filename != "sales.csv" {
		t.Fatalf("fallback not used: %q %q", out.ContentType, out.Filename)
	}
	body := string(out.Data)
	if !strings.HasPrefix(body, "label,count,amount\n") {
		t.Fatalf("missing csv header: %q", body)
	}
	if !strings.Contains(body, "Douala,12,250000.00") {
		t.Fatalf("row missing: %q", body)
	}
}

func TestBothExportersFailingWrapsBothErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	admin := api.NewAdmin(api.New(srv.URL))

	_, err := reports.Download(context.Background(), &reports.Remote{Admin: admin}, &reports.CSV{Admin: admin}, "sales")
	if err == nil {
		t.Fatal("want error when both exporters fail")
	}
	if !strings.Contains(err.Error(), "fallback") {
		t.Fatalf("fallback failure hidden: %v", err)
	}
}

func TestDownloadWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(reportBackend(false))
	defer srv.Close()
	admin := api.NewAdmin(api.New(srv.URL))

	_, err := reports.Download(context.Background(), &reports.Remote{Admin: admin}, nil, "sales")
	ae, ok := err.(*api.Error)
	if !ok || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("want the primary's 503 surfaced, got %v", err)
	}
}
