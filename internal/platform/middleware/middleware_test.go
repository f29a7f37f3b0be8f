package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDReusesValidHeader(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = chimiddleware.GetReqID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" {
		t.Fatalf("expected context id abc-123, got %q", seen)
	}
	if got := rec.Header().Get(chimiddleware.RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed header, got %q", got)
	}
}

func TestRequestIDReplacesInvalidHeader(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"newline", "abc\ninjected"},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
		{"non ascii", "idé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(chimiddleware.RequestIDHeader, tt.id)
			rec := httptest.NewRecorder()
			RequestID()(okHandler).ServeHTTP(rec, req)

			got := rec.Header().Get(chimiddleware.RequestIDHeader)
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected generated uuid, got %q", got)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Security("/api-docs")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	for header, want := range map[string]string{
		"Cache-Control":          "no-store",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s: got %q, want %q", header, got, want)
		}
	}

	rec = httptest.NewRecorder()
	Security("/api-docs")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
	if rec.Header().Get("Cache-Control") != "" {
		t.Fatal("docs path should skip security headers")
	}
}

func TestVaryAddsAccept(t *testing.T) {
	rec := httptest.NewRecorder()
	Vary()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Values("Vary"); len(got) != 1 || got[0] != "Accept" {
		t.Fatalf("unexpected Vary %v", got)
	}
}

func TestCORSRestrictsConfiguredOrigins(t *testing.T) {
	h := CORS("https://app.example.com")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for foreign origin, got %q", got)
	}
}

func TestCORSDefaultsToAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	CORS()(okHandler).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard, got %q", got)
	}
}
