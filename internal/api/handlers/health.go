package handlers

import (
	"net/http"

	"github.com/wonny/finbot/internal/scheduler"
)

// JobStatsProvider exposes scheduler statistics
type JobStatsProvider interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SymbolCounter reports the size of the loaded symbol table
type SymbolCounter func() int

// HealthHandler reports service status
type HealthHandler struct {
	jobs    JobStatsProvider
	symbols SymbolCounter
}

// NewHealthHandler creates a new health handler. Both arguments may be nil.
func NewHealthHandler(jobs JobStatsProvider, symbols SymbolCounter) *HealthHandler {
	return &HealthHandler{jobs: jobs, symbols: symbols}
}

// HealthResponse is the /health body
type HealthResponse struct {
	Status  string                        `json:"status"`
	Service string                        `json:"service"`
	Symbols int                           `json:"symbols"`
	Jobs    map[string]scheduler.JobStats `json:"jobs,omitempty"`
}

// Get returns service health
// GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Service: "finbot",
	}
	if h.symbols != nil {
		resp.Symbols = h.symbols()
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.GetJobStats()
	}

	respondJSON(w, http.StatusOK, resp)
}
