package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"billtracker/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") || len(a) != len("req_")+16 {
		t.Errorf("unexpected request id format: %q", a)
	}
	if a == b {
		t.Error("request ids should be unique")
	}
}

func TestGetRequestID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
	ctx := context.WithValue(context.Background(), RequestIDKey, "req_1")
	if got := GetRequestID(ctx); got != "req_1" {
		t.Errorf("GetRequestID() = %q, want req_1", got)
	}
}

func TestMiddleware(t *testing.T) {
	var (
		gotRoute  string
		gotCode   int
		ctxID     string
		ctxLogger *log.Logger
	)
	observe := func(route, method string, code int, _ time.Duration) {
		gotRoute, gotCode = route, code
	}
	m := NewMiddleware(log.Discard(), func(*http.Request) string { return "10.0.0.1" }, observe)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bills/{id}", func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
		ctxLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	t.Run("generates id and observes the pattern", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bills/3", nil))

		header := rec.Header().Get(RequestIDHeader)
		if header == "" || header != ctxID {
			t.Errorf("response id %q does not match context id %q", header, ctxID)
		}
		if ctxLogger == nil || ctxLogger.Component() == "unknown" {
			t.Error("expected a request-scoped logger in the context")
		}
		if gotRoute != "GET /api/bills/{id}" {
			t.Errorf("observed route = %q", gotRoute)
		}
		if gotCode != http.StatusNotFound {
			t.Errorf("observed code = %d, want 404", gotCode)
		}
	})

	t.Run("keeps a well-formed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bills/3", nil)
		req.Header.Set(RequestIDHeader, "upstream-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if ctxID != "upstream-42" {
			t.Errorf("request id = %q, want upstream-42", ctxID)
		}
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bills/3", nil)
		req.Header.Set(RequestIDHeader, "bad id\nwith newline")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if !strings.HasPrefix(ctxID, "req_") {
			t.Errorf("request id = %q, want generated id", ctxID)
		}
	})

	t.Run("unmatched route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		if gotRoute != "" {
			t.Errorf("observed route = %q, want empty", gotRoute)
		}
		if gotCode != http.StatusNotFound {
			t.Errorf("observed code = %d, want 404", gotCode)
		}
	})
}
