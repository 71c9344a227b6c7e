package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	t.Cleanup(rl.Stop)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := request(); code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d, want 204", i+1, code)
		}
	}
	if code := request(); code != http.StatusTooManyRequests {
		t.Fatalf("over-budget request: status = %d, want 429", code)
	}
}

func TestRateLimiterKeysByClientIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	t.Cleanup(rl.Stop)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request("10.0.0.1:1234"); code != http.StatusNoContent {
		t.Fatalf("first client: status = %d, want 204", code)
	}
	// A different client has its own bucket.
	if code := request("10.0.0.2:1234"); code != http.StatusNoContent {
		t.Fatalf("second client: status = %d, want 204", code)
	}
	if code := request("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("exhausted client: status = %d, want 429", code)
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(60, 10)
	rl.Stop()
	rl.Stop()
}
