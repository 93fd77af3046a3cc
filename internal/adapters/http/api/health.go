package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/middleware"
	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/respond"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// saludResponse mirrors the Salud schema.
type saludResponse struct {
	OK      bool   `json:"ok"`
	Mensaje string `json:"mensaje"`
}

// HealthHandler handles health check and metrics requests.
type HealthHandler struct {
	pinger  Pinger
	logger  logger.Logger
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pinger Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		pinger: pinger,
		logger: log,
		// Use our custom metrics registry to serve metrics
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleSalud handles GET /salud requests.
func (h *HealthHandler) HandleSalud(w http.ResponseWriter, r *http.Request) {
	const op = "api.salud"

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.logger.Warn(r.Context(), "store ping failed",
			logger.String("request_id", middleware.GetRequestID(r.Context())),
			logger.Error(WrapKind(op, ErrUnavailable, err)),
		)
		respond.WriteJSON(w, http.StatusServiceUnavailable, saludResponse{OK: false, Mensaje: "almacenamiento no disponible"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, saludResponse{OK: true, Mensaje: "servicio operativo"})
}

// HandleMetrics handles GET /metrics requests.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
