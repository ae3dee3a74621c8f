package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/skillquest/internal/api/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func doFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_Burst(t *testing.T) {
	h := middleware.RateLimit(2)(okHandler)

	for i := range 2 {
		if rec := doFrom(h, "10.0.0.1:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := doFrom(h, "10.0.0.1:5678")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	h := middleware.RateLimit(1)(okHandler)

	doFrom(h, "10.0.0.1:1")
	if rec := doFrom(h, "10.0.0.1:2"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("client 1 status = %d, want 429", rec.Code)
	}
	if rec := doFrom(h, "10.0.0.2:1"); rec.Code != http.StatusOK {
		t.Errorf("client 2 status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_ForwardedFor(t *testing.T) {
	h := middleware.RateLimit(1)(okHandler)

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "127.0.0.1:9000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", code)
	}
	if code := send("203.0.113.8"); code != http.StatusOK {
		t.Errorf("other forwarded client status = %d, want 200", code)
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("repeat forwarded client status = %d, want 429", code)
	}
}

func TestRateLimit_ForwardedForUsesLastHop(t *testing.T) {
	h := middleware.RateLimit(1)(okHandler)

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "127.0.0.1:9000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("198.51.100.1, 203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", code)
	}
	// A client rotating the leading entries is still the same last hop.
	if code := send("198.51.100.2, 203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("rotated leading hop status = %d, want 429", code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := middleware.RateLimit(0)(okHandler)
	for range 20 {
		if rec := doFrom(h, "10.0.0.1:1"); rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 with limiter disabled", rec.Code)
		}
	}
}
