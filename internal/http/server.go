package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"billtracker/internal/log"
	"billtracker/internal/metrics"
	"billtracker/internal/middleware/ratelimit"
	"billtracker/internal/middleware/security"
	"billtracker/internal/middleware/trace"
	"billtracker/internal/ports"
	"billtracker/internal/services"
)

// Sessions is the admin session guard plus the cookie operations behind
// the auth endpoints.
type Sessions interface {
	ports.SessionGuard
	Login(w http.ResponseWriter, password string) error
	Logout(w http.ResponseWriter)
}

// Options wires the server's collaborators.
type Options struct {
	Addr     string
	Bills    *services.BillService
	Imports  *services.ImportService
	Sessions Sessions
	Metrics  *metrics.Metrics
	Logger   *log.Logger

	RateLimitPerMinute int
	ImportMaxBytes     int64
}

type Server struct {
	http.Server
	bills    *services.BillService
	imports  *services.ImportService
	sessions Sessions
	metrics  *metrics.Metrics
	logger   *log.Logger

	limiter        *ratelimit.Limiter
	detector       *security.Detector
	importMaxBytes int64
	started        time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	maxBytes := opts.ImportMaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}

	s := &Server{
		bills:          opts.Bills,
		imports:        opts.Imports,
		sessions:       opts.Sessions,
		metrics:        opts.Metrics,
		logger:         logger,
		limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:       security.NewDetector(),
		importMaxBytes: maxBytes,
		started:        time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(logger.WithComponent(log.ComponentHTTP), s.detector.ExtractClientIP, s.metrics.ObserveHTTP).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("GET /api/bills/{id}", s.handleGetBill)
	mux.Handle("POST /api/bills", s.admin(s.handleCreateBill))
	mux.Handle("PUT /api/bills", s.admin(s.handleUpsertBill))
	mux.Handle("PUT /api/bills/{id}", s.admin(s.handleUpdateBill))
	mux.Handle("DELETE /api/bills/{id}", s.admin(s.handleDeleteBill))
	mux.Handle("POST /api/bills/import", s.admin(s.handleImportBills))
	mux.Handle("POST /api/bills/generate-urls", s.admin(s.handleGenerateURLs))

	mux.Handle("POST /api/auth/login", s.limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/check", s.handleAuthCheck)
}

// admin rate-limits h and rejects requests without a valid session before
// h runs.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return s.limited(s.requireAdmin(h))
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions == nil || !s.sessions.IsAuthenticated(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).WarnContext(r.Context(), "Rejected unauthenticated admin request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldErrorType, log.ErrorTypeAuth)
			UnauthorizedError().Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) limited(next http.Handler) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(next)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
