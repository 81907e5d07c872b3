package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// Metrics Auth Middleware Tests
// =============================================================================

func scrapeMetrics(mw *MetricsAuthMiddleware, configure func(*http.Request)) *httptest.ResponseRecorder {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("metrics data"))
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()

	mw.Handler(handler).ServeHTTP(rec, req)
	return rec
}

func TestMetricsAuthMiddleware_AllowsValidCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("admin", "secret123")

	rec := scrapeMetrics(mw, func(r *http.Request) {
		r.SetBasicAuth("admin", "secret123")
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "metrics data" {
		t.Errorf("expected metrics body, got %q", rec.Body.String())
	}
}

func TestMetricsAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("admin", "secret123")

	tests := []struct {
		name      string
		configure func(*http.Request)
	}{
		{"no credentials", nil},
		{"wrong username", func(r *http.Request) { r.SetBasicAuth("wronguser", "secret123") }},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("admin", "wrongpassword") }},
		{"empty credentials", func(r *http.Request) { r.SetBasicAuth("", "") }},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Basic notvalidbase64!!!") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := scrapeMetrics(mw, tt.configure)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != `Basic realm="metrics"` {
				t.Errorf("unexpected WWW-Authenticate header: %q", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestMetricsAuthMiddleware_DisabledWhenNoCredentials(t *testing.T) {
	// Both credentials empty means the gate is off
	mw := NewMetricsAuthMiddleware("", "")

	rec := scrapeMetrics(mw, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 without auth, got %d", rec.Code)
	}
}

func TestMetricsAuthMiddleware_PartialConfigStillRequiresAuth(t *testing.T) {
	// A username without a password still arms the gate
	mw := NewMetricsAuthMiddleware("admin", "")

	rec := scrapeMetrics(mw, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}
