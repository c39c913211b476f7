// Package server exposes a Controller over HTTP so an external program can
// draw the treemap and feed navigation back into it.
package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/metrics"
)

// Server is the HTTP API over one controller
type Server struct {
	router     chi.Router
	controller *core.Controller
	log        *log.Logger
}

// New creates and configures the HTTP server. Controller events are
// recorded as metrics from then on.
func New(c *core.Controller, logger *log.Logger) *Server {
	s := &Server{
		controller: c,
		log:        logger,
	}
	c.Subscribe(metrics.Observe)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/treemap", s.handleTreemap)
		r.Get("/treemap.png", s.handlePNG)
		r.Get("/treemap.svg", s.handleSVG)

		r.Post("/resize", s.handleResize)
		r.Post("/select", s.handleSelect)
		r.Post("/select-parent", s.navigate((*core.View).SelectParent))
		r.Post("/zoom-in", s.navigate((*core.View).ZoomIn))
		r.Post("/zoom-out", s.navigate((*core.View).ZoomOut))
		r.Post("/remove", s.handleRemove)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
