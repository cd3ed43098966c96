package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dgallion1/chatexport/internal/classify"
	"github.com/dgallion1/chatexport/internal/config"
	"github.com/dgallion1/chatexport/internal/export"
	"github.com/dgallion1/chatexport/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Server is the HTTP API server for chatexport.
type Server struct {
	router    chi.Router
	assembler *export.Assembler
	store     store.Store
	stats     *export.Stats
	cache     *lru.Cache[string, *result]
	classify  classify.Options
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. st may be nil, in which
// case exports are returned without being persisted.
func NewServer(asm *export.Assembler, st store.Store, stats *export.Stats, log *slog.Logger, cfg config.Config) (*Server, error) {
	cache, err := lru.New[string, *result](max(cfg.CacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("create export cache: %w", err)
	}
	opts := classify.DefaultOptions()
	if len(cfg.ReasoningKeywords) > 0 {
		opts.ReasoningKeywords = cfg.ReasoningKeywords
	}
	s := &Server{
		assembler: asm,
		store:     st,
		stats:     stats,
		cache:     cache,
		classify:  opts,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/export", s.handleExport)
		r.Get("/api/stats/export", s.handleExportStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
