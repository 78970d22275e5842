package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inkstone-site/inkstone/internal/obs"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	logger *logrus.Logger
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TrustProxy   bool
}

// Handlers bundles the route-owning handlers for server assembly.
type Handlers struct {
	Comments   *CommentHandler
	Contact    *ContactHandler
	Auth       *AuthHandler
	Moderation *ModerationHandler
	Content    *ContentHandler
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, handlers Handlers, verifier TokenVerifier, logger *logrus.Logger) *Server {
	router := mux.NewRouter()

	// Register routes
	handlers.Comments.RegisterRoutes(router)
	handlers.Contact.RegisterRoutes(router)
	handlers.Auth.RegisterRoutes(router)
	handlers.Moderation.RegisterRoutes(router)
	handlers.Content.RegisterRoutes(router)

	// Add middleware
	router.Use(correlationIDMiddleware)
	router.Use(loggingMiddleware(logger))
	router.Use(recoveryMiddleware(logger))
	router.Use(realIPMiddleware(config.TrustProxy))
	router.Use(sessionMiddleware(verifier))

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Prometheus scrape endpoint
	router.Handle("/metrics", obs.Handler()).Methods("GET")

	return &Server{
		addr:   ":" + config.Port,
		logger: logger,
		server: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.addr).Info("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
