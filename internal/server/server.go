package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
}

type Config struct {
	Addr  string // e.g. ":8000"
	Build BuildInfo
	Auth  AuthConfig

	// MaxUploadBytes caps POST /upload bodies. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimitPerMinute enables the per-IP limiter when positive.
	RateLimitPerMinute int
	CORSOrigins        []string

	Store  *DirStorage
	Logger *Logger
}

type Server struct {
	auth    AuthConfig
	build   BuildInfo
	store   *DirStorage
	log     *Logger
	metrics *Metrics
	limiter *rateLimiter
	guard   sizeGuard
	started time.Time

	handler    http.Handler
	httpServer *http.Server
}

// New wires the routes and middleware. cfg.Store must be set.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(nil, LogLevelInfo, false)
	}
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		auth:    cfg.Auth,
		build:   cfg.Build,
		store:   cfg.Store,
		log:     logger,
		metrics: NewMetrics(),
		started: time.Now(),
	}
	s.guard = sizeGuard{maxBytes: maxBytes, metrics: s.metrics}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware)
	if cfg.RateLimitPerMinute > 0 {
		s.limiter = newRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		r.Use(s.limiter.middleware)
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", APIKeyHeader, "X-Request-Id"},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HandleHealth)
	r.Get("/health/live", s.HandleLive)
	r.Get("/metrics", s.prometheusHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.With(s.guard.middleware).Post("/upload", s.uploadHandler)
		r.With(middleware.Compress(5, "application/json")).Get("/files", s.listFilesHandler)
		r.Get("/files/*", s.downloadHandler)
	})

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	return s.httpServer.Shutdown(ctx)
}
