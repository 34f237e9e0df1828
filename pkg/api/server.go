package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/perfectstack/taskhub/pkg/auth"
	"github.com/perfectstack/taskhub/pkg/httputil"
	"github.com/perfectstack/taskhub/pkg/middleware"
	"github.com/perfectstack/taskhub/pkg/observability"
)

// Version reported by the info and health endpoints.
const Version = "0.1.0"

// Server represents our API server
type Server struct {
	store   Store
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenIssuer
	router  *mux.Router
	logger  *observability.Logger
	metrics *observability.Metrics

	authHandlers *AuthHandlers
	taskHandlers *TaskHandlers
}

// NewServer creates a new API server
func NewServer(store Store, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		store:   store,
		hasher:  hasher,
		tokens:  tokens,
		router:  mux.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}

	s.authHandlers = NewAuthHandlers(store, hasher, tokens, logger, metrics)
	s.taskHandlers = NewTaskHandlers(store, logger, metrics)

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes. Public routes are registered
// before the authenticated subrouter so they match first.
func (s *Server) setupRoutes() {
	// Public routes
	s.router.HandleFunc("/", s.root).Methods("GET")
	s.router.HandleFunc("/api", s.apiRoot).Methods("GET")
	s.router.HandleFunc("/api/health", s.health).Methods("GET")
	s.router.HandleFunc("/api/auth/register", s.authHandlers.register).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.authHandlers.login).Methods("POST")

	// Authenticated routes
	gate := middleware.NewAuthMiddleware(s.tokens, s.store, s.logger, s.metrics)
	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(gate.Handler)

	protected.HandleFunc("/auth/me", s.authHandlers.me).Methods("GET")
	s.taskHandlers.RegisterRoutes(protected)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so the entrypoint can wrap it in
// generic middleware.
func (s *Server) Router() *mux.Router {
	return s.router
}

// root handles GET /
func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"message": "API is running. Visit /api for details.",
	})
}

// apiRoot handles GET /api
func (s *Server) apiRoot(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"message": "Welcome to TaskHub API",
		"version": Version,
	})
}

// health handles GET /api/health: liveness plus a storage ping.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		observability.FromContext(r.Context(), s.logger).WithError(err).Error("storage health check failed")
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"version": Version,
		})
		return
	}

	httputil.WriteSuccess(w, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}
