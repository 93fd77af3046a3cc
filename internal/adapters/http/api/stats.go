package api

import (
	"net/http"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/respond"
)

// StatsProvider exposes a snapshot of service state.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler returns a StatsHandler reading from provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats writes the current snapshot as JSON.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.provider.GetStats())
}
