// Package server provides the HTTP and WebSocket API for faqnav.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/hyperjump/faqnav/internal/config"
	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the HTTP server for the faqnav API.
type Server struct {
	store      *faq.Store
	transcript storage.Transcript
	config     *config.ServerConfig
	logger     *zap.Logger
	router     chi.Router
	upgrader   websocket.Upgrader
	server     *http.Server

	// ctx is cancelled by Stop so open sessions close their connections.
	ctx    context.Context
	cancel context.CancelFunc
	active atomic.Int64
}

// NewServer creates a server with the given dependencies. transcript may be nil.
func NewServer(
	store *faq.Store,
	transcript storage.Transcript,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		store:      store,
		transcript: transcript,
		config:     cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(cfg.AllowedOrigins, r.Header.Get("Origin"))
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// The WebSocket route stays outside Timeout and Compress, which cannot
	// wrap a hijacked connection.
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(middleware.Compress(5))
		r.Get("/api/v1/status", s.handleStatus)
		r.Get("/api/v1/sessions", s.handleSessions)
		r.Get("/api/v1/sessions/{id}/events", s.handleSessionEvents)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop closes open sessions and gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ActiveSessions returns the number of open sessions.
func (s *Server) ActiveSessions() int64 {
	return s.active.Load()
}

// ReloadFAQ loads path into the store. Open sessions keep their snapshot; on
// failure the current snapshot stays in place.
func (s *Server) ReloadFAQ(path string) error {
	prev := s.store.Current()
	doc, err := s.store.Reload(path)
	if err != nil {
		documentReloads.WithLabelValues("error").Inc()
		s.logger.Warn("faq reload failed, keeping current document",
			zap.String("path", path),
			zap.String("revision", prev.Revision),
			zap.Error(err))
		return err
	}
	documentReloads.WithLabelValues("success").Inc()
	s.logger.Info("faq reloaded",
		zap.String("path", path),
		zap.String("previous_revision", prev.Revision),
		zap.String("revision", doc.Revision),
		zap.Int64("active_sessions", s.ActiveSessions()))
	return nil
}

func originAllowed(allowed []string, origin string) bool {
	// Non-browser clients send no Origin header.
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// requestLogger logs each request once it completes.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}
