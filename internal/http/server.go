// Package http exposes the session as a JSON API. Handlers validate
// input at the boundary and translate domain sentinel errors into
// status codes; all math stays in the calculator package.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"tripsplit/internal/middleware/ratelimit"
	"tripsplit/internal/middleware/security"
	"tripsplit/internal/middleware/trace"
	"tripsplit/internal/session"
)

// Options configures the API server.
type Options struct {
	ExportDir         string
	CurrencySymbol    string
	RequestsPerMinute int
	AllowedOrigins    []string
}

type Server struct {
	http.Server
	manager *session.Manager
	opts    Options

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, manager *session.Manager, opts Options) *Server {
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "$"
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}

	detector := security.NewDetector()
	s := &Server{
		manager:  manager,
		opts:     opts,
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	api.Use(s.tracer.Middleware)
	api.Use(s.suspicionLogging)
	api.Use(s.limitWrites)

	api.HandleFunc("/groups", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/active", s.handleSwitchGroup).Methods(http.MethodPut)
	api.HandleFunc("/groups/active", s.handleDeleteActiveGroup).Methods(http.MethodDelete)

	api.HandleFunc("/people", s.handleListPeople).Methods(http.MethodGet)
	api.HandleFunc("/people", s.handleAddPerson).Methods(http.MethodPost)
	api.HandleFunc("/people/{name}", s.handleRemovePerson).Methods(http.MethodDelete)

	api.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)

	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleAddExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses", s.handleClearExpenses).Methods(http.MethodDelete)
	api.HandleFunc("/expenses/{index:[0-9]+}", s.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{index:[0-9]+}", s.handleRemoveExpense).Methods(http.MethodDelete)

	api.HandleFunc("/balances", s.handleBalances).Methods(http.MethodGet)
	api.HandleFunc("/settlements", s.handleSettlements).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/report", s.handleReport).Methods(http.MethodGet)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// limitWrites applies the rate limiter to mutating methods only; reads
// are cheap recomputations and stay unthrottled.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (s *Server) suspicionLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"component", "security")
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics exposes request counters for the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
