package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/leakguard-io/leakguard/internal/lifecycle"
)

// maxBodyBytes bounds every request body read by the API.
const maxBodyBytes = 256 * 1024

// Server exposes the finding lifecycle over HTTP. Routing, auth, and
// validation live here; all state transitions happen in the lifecycle service.
type Server struct {
	service    *lifecycle.Service
	logger     hclog.Logger
	adminToken string
	httpServer *http.Server
}

// New builds the API server. adminToken guards project creation; an empty
// admin token disables that endpoint entirely.
func New(service *lifecycle.Service, logger hclog.Logger, addr, adminToken string) *Server {
	s := &Server{
		service:    service,
		logger:     logger,
		adminToken: adminToken,
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Get("/v1/auth/verify", s.handleAuthVerify)
	router.Post("/v1/projects", s.handleProjectCreate)
	router.Get("/v1/projects", s.handleProjectList)
	router.Post("/v1/findings", s.handleIngest)
	router.Get("/v1/projects/{id}/findings", s.handleFindingsList)
	router.Post("/v1/findings/{id}/status", s.handleStatusChange)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("ingestion server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// requestLogger logs method, path, and duration. The authorization header is
// never logged.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// bearerToken extracts the credential from an Authorization header. The
// scheme comparison is case-insensitive.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
