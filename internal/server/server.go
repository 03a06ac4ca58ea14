// Package server serves generated admin apps: the root project's static
// admin app, any number of registered projects under /<project>, and the
// registry API that manages them.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/untillpro/goutils/logger"

	"github.com/matthewbaird/admingen/internal/project"
	"github.com/matthewbaird/admingen/internal/registry"
)

// Config holds server configuration.
type Config struct {
	Interface string // listen address, empty for all interfaces
	Port      int
	Hostname  string // host written into project api_root values
	PortExt   string // port written into project api_root values
	UIDir     string // project whose ui/ holds the shared admin app
	Store     *registry.Store
	Hub       *Hub // optional
}

// Server routes requests for one Config.
type Server struct {
	cfg    Config
	layout project.Layout
	router chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Hub == nil {
		cfg.Hub = NewHub()
	}
	if cfg.PortExt == "" && cfg.Port != 0 {
		cfg.PortExt = strconv.Itoa(cfg.Port)
	}
	s := &Server{cfg: cfg, layout: project.Layout{Dir: cfg.UIDir}}

	r := chi.NewRouter()
	r.Use(recovery, logging)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin-app/index.html", http.StatusFound)
	})
	r.Get("/ui/admin/admin.yaml", func(w http.ResponseWriter, r *http.Request) {
		serveFile(w, r, s.layout.AdminYAML(), "text/yaml")
	})
	r.Get("/admin-app/*", s.spa)
	r.Get("/ws/reload", cfg.Hub.ServeHTTP)

	r.Route("/admin/api/apis", func(r chi.Router) {
		r.Get("/", s.listApis)
		r.Post("/", s.addApi)
		r.Get("/{id}", s.getApi)
		r.Delete("/{id}", s.deleteApi)
	})

	r.Route("/{project}", func(r chi.Router) {
		r.Use(cors)
		r.Get("/", s.projectAdminYAML)
		r.Handle("/api", http.HandlerFunc(s.proxy))
		r.Handle("/api/*", http.HandlerFunc(s.proxy))
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the reload hub so it can be subscribed to an event bus.
func (s *Server) Hub() *Hub {
	return s.cfg.Hub
}

// spa serves home.js from ui/admin and everything else from the SPA build.
func (s *Server) spa(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + chi.URLParam(r, "*"))
	if name == "/home.js" {
		serveFile(w, r, s.layout.HomeJS(), "")
		return
	}
	if name == "/" {
		name = "/index.html"
	}
	serveFile(w, r, filepath.Join(s.layout.SPADir(), filepath.FromSlash(name)), "")
}

// Run starts the HTTP server and shuts it down when ctx is done.
func Run(ctx context.Context, cfg Config) error {
	s := New(cfg)
	addr := net.JoinHostPort(cfg.Interface, strconv.Itoa(cfg.Port))
	logger.Info("starting server on", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
