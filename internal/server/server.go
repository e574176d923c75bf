package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/config"
	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/digidex"
	"github.com/digiguide/digiguide/internal/evolution"
	"github.com/digiguide/digiguide/internal/guide"
	"github.com/digiguide/digiguide/internal/httpx"
	"github.com/digiguide/digiguide/internal/i18n"
	"github.com/digiguide/digiguide/internal/imageproxy"
	"github.com/digiguide/digiguide/internal/live"
	"github.com/digiguide/digiguide/internal/logging"
	"github.com/digiguide/digiguide/internal/metrics"
	"github.com/digiguide/digiguide/internal/query"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/tables"
	"github.com/digiguide/digiguide/internal/team"
	"github.com/digiguide/digiguide/internal/vectordb"
)

// Deps are the feature components the server mounts. Only Source is
// required; routes of nil components are not registered.
type Deps struct {
	Source  *data.Source
	Search  *search.Holder
	Related *vectordb.Index
	Graphs  *evolution.Cache
	Teams   *team.Store
	Images  *imageproxy.Proxy
	Guides  *guide.Library
	Hub     *live.Hub
}

// Server is the HTTP front of the guide.
type Server struct {
	cfg        *config.Config
	deps       Deps
	log        *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all routes mounted.
func New(cfg *config.Config, deps Deps, log *zap.Logger) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  log,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type"},
		ExposedHeaders:   []string{"Content-Language", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.Server.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))
	r.Use(metrics.Instrument)
	r.Use(i18n.NewResolver(s.cfg.Locale.Default, s.cfg.Locale.Supported).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	// Websockets outlive the request timeout.
	if s.deps.Hub != nil {
		r.Handle("/api/live", s.deps.Hub)
	}

	r.Group(func(r chi.Router) {
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
		}
		s.mountFeatures(r)
	})

	return r
}

func (s *Server) mountFeatures(r chi.Router) {
	d := s.deps
	lim := query.Limits{PerPage: s.cfg.Pagination.PerPage, MaxPerPage: s.cfg.Pagination.MaxPerPage}
	digidex.RegisterRoutes(r, d.Source, lim, s.log)
	tables.RegisterRoutes(r, d.Source, lim, s.log)

	graphs := d.Graphs
	if graphs == nil {
		graphs = &evolution.Cache{}
	}
	evolution.RegisterRoutes(r, d.Source, graphs, s.log)

	if d.Search != nil {
		search.RegisterRoutes(r, d.Search, s.log)
	}
	if d.Related != nil {
		vectordb.RegisterRoutes(r, d.Source, d.Related, s.log)
	}
	if d.Teams != nil {
		team.RegisterRoutes(r, d.Source, d.Teams, s.cfg.Team, s.log)
	}
	if d.Images != nil {
		imageproxy.RegisterRoutes(r, d.Images, s.log)
	}
	if d.Guides != nil {
		guide.RegisterRoutes(r, d.Guides, s.log)
	}
}

type health struct {
	Status  string       `json:"status"`
	Catalog *data.Counts `json:"catalog,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Source.Catalog(r.Context())
	if err != nil {
		s.log.Warn("health check: catalog unavailable", zap.Error(err))
		httpx.WriteJSON(w, http.StatusServiceUnavailable, health{Status: "degraded"})
		return
	}
	n := c.Counts()
	httpx.WriteJSON(w, http.StatusOK, health{Status: "ok", Catalog: &n})
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info("digiguide server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
