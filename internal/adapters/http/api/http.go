// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	UsuariosDependencies
	Pinger
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	usuariosHandler *UsuariosHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger logger.Logger
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}

	return &Server{
		healthHandler:   NewHealthHandler(deps, o.logger),
		statsHandler:    NewStatsHandler(statsProvider),
		usuariosHandler: NewUsuariosHandler(deps, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", MetricsMiddleware(HandleRoot, "root"))
	mux.HandleFunc("GET /salud", MetricsMiddleware(s.healthHandler.HandleSalud, "salud"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	u := s.usuariosHandler
	mux.HandleFunc("GET /api/usuarios", MetricsMiddleware(u.HandleList, "usuarios_listar"))
	mux.HandleFunc("POST /api/usuarios", MetricsMiddleware(u.HandleCreate, "usuarios_crear"))
	mux.HandleFunc("GET /api/usuarios/{id}", MetricsMiddleware(u.HandleGet, "usuarios_obtener"))
	mux.HandleFunc("PUT /api/usuarios/{id}", MetricsMiddleware(u.HandleUpdate, "usuarios_actualizar"))
	mux.HandleFunc("DELETE /api/usuarios/{id}", MetricsMiddleware(u.HandleDelete, "usuarios_eliminar"))
}
