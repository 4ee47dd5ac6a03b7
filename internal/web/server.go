// Package web serves the server-rendered question browser.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/auth"
	"github.com/sloppy/pastyears/internal/db"
)

// List layout.
const (
	questionsPerPage = 10
	pagerWindowSize  = 5
)

// Backend is the questions API as used by the frontend.
type Backend interface {
	auth.Client
	ListQuestions(ctx context.Context, query string) ([]api.Question, error)
	RandomQuestions(ctx context.Context, query string) ([]api.Question, error)
	Question(ctx context.Context, id string) (api.Question, error)
	Metadata(ctx context.Context) (api.Metadata, error)
	IncorrectQuestionURL(ctx context.Context, id string) (string, error)
	ReportIncorrectQuestion(ctx context.Context, id, comments string) (string, error)
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Logger         *zap.Logger
	Registry       *prometheus.Registry
	SessionTTL     time.Duration
	SecureCookie   bool
	PostsPerMinute int
}

// Server wires the web handlers and dependencies.
type Server struct {
	API      Backend
	DB       *db.DB
	Router   chi.Router
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *httpMetrics
	sessions *sessionRegistry
	facets   *facetCache
	limiter  *postLimiter
}

// NewServer constructs the router and registers routes.
func NewServer(backend Backend, database *db.DB, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * 24 * time.Hour
	}
	if opts.PostsPerMinute <= 0 {
		opts.PostsPerMinute = 20
	}

	server := &Server{
		API:      backend,
		DB:       database,
		logger:   opts.Logger,
		registry: opts.Registry,
		metrics:  newHTTPMetrics(opts.Registry),
		sessions: newSessionRegistry(backend, database, opts.Logger, opts.SessionTTL, opts.SecureCookie),
		facets:   &facetCache{},
		limiter:  newPostLimiter(opts.PostsPerMinute),
	}

	r := chi.NewRouter()
	r.Use(server.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(originGuard)
	r.Use(server.sessions.middleware)

	r.Get("/", server.handleHome)
	r.Get("/healthz", server.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Get("/questions", server.handleQuestions)
	r.Get("/questions/random", server.handleRandomQuestions)
	r.Get("/questions/{pageNum}", server.handleQuestions)
	r.Get("/question/{id}", server.handleQuestion)
	r.Get("/question/{id}/report", server.handleReportForm)
	r.Post("/question/{id}/report", server.handleReportSubmit)

	r.Get("/login", server.handleLoginForm)
	r.Post("/login", server.handleLoginSubmit)
	r.Get("/signup", server.handleSignUpForm)
	r.Post("/signup", server.handleSignUpSubmit)
	r.Post("/logout", server.handleLogout)

	server.Router = r
	return server
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.Router
}

// PurgeIdleSessions drops sessions idle for longer than the session TTL. It
// also forgets per-client post limiters that have fully refilled.
func (s *Server) PurgeIdleSessions(ctx context.Context) (int, error) {
	if n := s.limiter.sweep(); n > 0 {
		s.logger.Debug("swept post limiters", zap.Int("count", n))
	}
	return s.sessions.purge(ctx)
}
