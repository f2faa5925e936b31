package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal/storage"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// HealthCheck probes one dependency. A failing non-critical check degrades
// the response without turning it into a 503.
type HealthCheck struct {
	Name     string
	Critical bool
	Probe    func(ctx context.Context) error
}

// DatabaseCheck pings the shared connection pool.
func DatabaseCheck(db *sql.DB) HealthCheck {
	return HealthCheck{
		Name:     "database",
		Critical: true,
		Probe:    db.PingContext,
	}
}

// ReportStorageCheck lists the archive prefix. Schedules still close when
// the archive is down, so the check is not critical.
func ReportStorageCheck(store storage.Provider, prefix string) HealthCheck {
	return HealthCheck{
		Name: "report_storage",
		Probe: func(ctx context.Context) error {
			done := make(chan error, 1)
			go func() {
				_, err := store.List(prefix + "/")
				done <- err
			}()
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Mount registers /health and /ping on r.
func (h *HealthHandler) Mount(r chi.Router) {
	r.Get("/health", h.healthCheckHandler)
	r.Get("/ping", h.pingHandler)
}

// pingHandler reports that the process is up.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "OK"}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// healthCheckHandler runs every registered check.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := h.Check(r.Context())

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) Check(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: make(map[string]CheckEntry, len(h.checks)),
	}

	for _, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
		start := time.Now()
		err := check.Probe(checkCtx)
		cancel()

		entry := CheckEntry{Status: HealthHealthy, DurationMs: time.Since(start).Milliseconds()}
		if err != nil {
			entry.Message = err.Error()
			entry.Status = HealthDegraded
			if check.Critical {
				entry.Status = HealthUnhealthy
			}
		}
		resp.Components[check.Name] = entry

		switch {
		case entry.Status == HealthUnhealthy:
			resp.Status = HealthUnhealthy
		case entry.Status == HealthDegraded && resp.Status == HealthHealthy:
			resp.Status = HealthDegraded
		}
	}
	return resp
}
