package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *clock) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestLimiter_Allow(t *testing.T) {
	rl, c := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.1.1.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.1.1.1") {
		t.Fatal("fourth request in the window should be refused")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("other clients have their own window")
	}

	// Requests inside the window do not extend it.
	c.t = c.t.Add(59 * time.Second)
	if rl.Allow("1.1.1.1") {
		t.Error("still inside the first window")
	}

	c.t = c.t.Add(2 * time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("a new window should allow requests again")
	}

	if rl.Rejected() != 2 {
		t.Errorf("Rejected() = %d, want 2", rl.Rejected())
	}
}

func TestLimiter_DefaultsAndCleanup(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()
	if rl.requestsPerMinute != 60 || rl.cleanupInterval != 5*time.Minute {
		t.Errorf("defaults not applied: %d %v", rl.requestsPerMinute, rl.cleanupInterval)
	}

	c := &clock{t: time.Now()}
	rl.now = c.now
	rl.Allow("1.1.1.1")
	if rl.ActiveClients() != 1 {
		t.Fatalf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}

	c.t = c.t.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if rl.ActiveClients() != 0 {
		t.Errorf("stale client should be removed, have %d", rl.ActiveClients())
	}

	// Stop is idempotent.
	rl.Stop()
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	extract := func(*http.Request) string { return "9.9.9.9" }

	t.Run("default refusal", func(t *testing.T) {
		h := rl.Middleware(extract, nil)(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bills", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("first request status = %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bills", nil))
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second request status = %d, want 429", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "60" {
			t.Error("missing Retry-After header")
		}
	})

	t.Run("custom refusal", func(t *testing.T) {
		called := false
		h := rl.Middleware(extract, func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusTooManyRequests)
		})(next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/bills", nil))
		if !called || rec.Code != http.StatusTooManyRequests {
			t.Errorf("onLimit not used: called=%v status=%d", called, rec.Code)
		}
	})
}
