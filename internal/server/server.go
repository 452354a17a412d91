package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/zerolog"

	"github.com/c3r4h/dptkp/internal/api"
	"github.com/c3r4h/dptkp/internal/api/viewer"
	"github.com/c3r4h/dptkp/internal/db"
	"github.com/c3r4h/dptkp/internal/feed"
	"github.com/c3r4h/dptkp/internal/humastar"
	"github.com/c3r4h/dptkp/internal/service"
	"github.com/c3r4h/dptkp/internal/templates"
)

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	WebDir  string // Path to web/ directory for static files and templates
	DataDir string // DuckDB file location, empty for in-memory

	CategoriesFeed string
	LocationsFeed  string
	FeedTimeout    time.Duration

	CenterLat float64
	CenterLng float64
	Zoom      int
	TileURL   string

	DuckDB      bool
	SessionIdle time.Duration

	Logger zerolog.Logger
}

// Server is the dptkp HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	store    *db.Store
	catalog  *service.CatalogService
	sessions *service.SessionStore
	renderer *templates.Renderer
	page     *template.Template
	links    *humastar.Links
	log      zerolog.Logger
}

// New creates a new server. Feeds are not loaded until Start.
func New(cfg Config) *Server {
	log := cfg.Logger.With().Str("component", "server").Logger()
	mux := http.NewServeMux()

	links := humastar.NewLinks()

	humaConfig := huma.DefaultConfig("dptkp API", api.Version)
	humaConfig.Info.Description = "Coffee shop map: catalog, filtered listings, exports and the viewer's Datastar endpoints."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	bus := service.NewEventBus()
	catalog := service.NewCatalogService(bus, cfg.Logger)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		catalog:  catalog,
		sessions: service.NewSessionStore(catalog),
		links:    links,
		log:      log,
	}

	if cfg.DuckDB {
		store, err := db.Open(db.Config{DataDir: cfg.DataDir, DBName: "dptkp"})
		if err != nil {
			log.Warn().Err(err).Msg("DuckDB unavailable, query endpoints disabled")
		} else {
			s.store = store
			catalog.SetMirror(store)
		}
	}

	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if r, err := templates.New(fragmentsDir); err == nil {
			s.renderer = r
			log.Info().Str("dir", fragmentsDir).Msg("Loaded fragment templates")
		} else {
			log.Warn().Err(err).Str("dir", fragmentsDir).Msg("No fragment templates, viewer disabled")
		}

		pagePath := filepath.Join(cfg.WebDir, "templates", "index.html")
		if p, err := template.ParseFiles(pagePath); err == nil {
			s.page = p
		} else {
			log.Warn().Err(err).Str("path", pagePath).Msg("No page template")
		}
	}

	s.routes()
	links.Build(humaAPI, "/health", "viewer")
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI document.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Catalog returns the shared catalog.
func (s *Server) Catalog() *service.CatalogService {
	return s.catalog
}

// Sessions returns the viewer session store.
func (s *Server) Sessions() *service.SessionStore {
	return s.sessions
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Start loads the feeds in the background and prunes idle sessions until
// ctx is done. Feed failures are logged by the catalog and never stop the
// server; pages opened meanwhile fill in through the events stream.
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.LoadFeeds(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Feeds loaded with errors")
		}
	}()
	go s.pruneSessions(ctx)
}

// LoadFeeds opens both feed sources and loads them concurrently.
func (s *Server) LoadFeeds(ctx context.Context) error {
	opts := feed.Options{Timeout: s.config.FeedTimeout}

	cats, err := feed.Open(s.config.CategoriesFeed, opts)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load categories")
	}
	locs, err := feed.Open(s.config.LocationsFeed, opts)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load markers")
	}

	switch {
	case cats != nil && locs != nil:
		return s.catalog.Load(ctx, cats, locs)
	case locs != nil:
		return s.catalog.LoadLocations(ctx, locs)
	case cats != nil:
		return s.catalog.LoadCategories(ctx, cats)
	}
	return fmt.Errorf("no usable feed")
}

func (s *Server) pruneSessions(ctx context.Context) {
	idle := s.config.SessionIdle
	if idle <= 0 {
		idle = time.Hour
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(idle); n > 0 {
				s.log.Debug().Int("pruned", n).Int("live", s.sessions.Len()).Msg("Pruned idle sessions")
			}
		}
	}
}

func (s *Server) routes() {
	// Register Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, &api.Services{Catalog: s.catalog})
	api.NewInfoHandler(s.config.CategoriesFeed, s.config.LocationsFeed, s.store != nil).RegisterRoutes(s.humaAPI)

	dbHandler := api.NewDBHandler(nil)
	if s.store != nil {
		dbHandler = api.NewDBHandler(s.store.DB())
	}
	dbHandler.RegisterRoutes(s.humaAPI)

	// Register viewer SSE routes using Huma + Datastar SDK
	if s.renderer != nil {
		viewer.New(s.sessions, s.catalog.Bus(), s.renderer, s.config.Logger).RegisterRoutes(s.humaAPI)
	}

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

// PageData is what index.html renders from.
type PageData struct {
	Signals   string
	CenterLat float64
	CenterLng float64
	Zoom      int
	TileURL   string
	Routes    viewer.Routes
}

// initialSignals are the Datastar signals a fresh page starts with.
func initialSignals() map[string]any {
	return map[string]any{
		"search":      "",
		"category":    "",
		"tubruk":      false,
		"ac":          false,
		"smokingac":   false,
		"carfriendly": false,
		"sortnearest": false,
		"sidebaropen": false,
		"modalopen":   false,
		"userlat":     0,
		"userlng":     0,
		"error":       "",
	}
}

// handleRoot serves the map page with a new viewer session, or a status
// document when the page is unavailable.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.page == nil || s.renderer == nil {
		for _, link := range s.links.For("/health") {
			w.Header().Add("Link", link)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"service": "dptkp",
			"status":  "running",
		})
		return
	}

	id, _ := s.sessions.New()
	signals, _ := json.Marshal(initialSignals())
	data := PageData{
		Signals:   string(signals),
		CenterLat: s.config.CenterLat,
		CenterLng: s.config.CenterLng,
		Zoom:      s.config.Zoom,
		TileURL:   s.config.TileURL,
		Routes:    viewer.RoutesFor(id),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("Failed to render page")
	}
}
