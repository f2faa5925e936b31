// Package dashboard serves the manager landing page.
package dashboard

import (
	"context"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal/transport"
)

type RequestCounter interface {
	CountNew(ctx context.Context) (int64, error)
}

type EmployeeCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

type Summary struct {
	NewRequests     int64 `json:"new_requests"`
	ActiveEmployees int64 `json:"active_employees"`
}

type Handler struct {
	*transport.BaseHandler
	requests  RequestCounter
	employees EmployeeCounter
}

func NewHandler(baseHandler *transport.BaseHandler, requests RequestCounter, employees EmployeeCounter) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		requests:    requests,
		employees:   employees,
	}
}

// Home handles GET /manager
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	var s Summary
	var err error

	if s.NewRequests, err = h.requests.CountNew(r.Context()); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if s.ActiveEmployees, err = h.employees.CountActive(r.Context()); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, s)
		return
	}
	h.Render(w, r, http.StatusOK, "manager_dashboard.html", map[string]any{
		"Title":           "Manager",
		"NewRequests":     s.NewRequests,
		"ActiveEmployees": s.ActiveEmployees,
	})
}
