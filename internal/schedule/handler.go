package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/transport"
)

type ServiceAPI interface {
	CurrentPeriod() (int, int)
	View(ctx context.Context, month, year int) (*View, error)
	Get(ctx context.Context, id int64) (*Schedule, error)
	SaveHours(ctx context.Context, scheduleID int64, entries []Entry) (*Schedule, error)
	Close(ctx context.Context, scheduleID int64, closedBy int64) (*Schedule, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// ViewPath is the schedule page for a period.
func ViewPath(month, year int) string {
	return fmt.Sprintf("/manager/schedule?month=%d&year=%d", month, year)
}

// GetSchedule handles GET /manager/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	defMonth, defYear := h.Service.CurrentPeriod()
	month, year, err := ParsePeriod(r.URL.Query(), defMonth, defYear)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.RenderForm(w, r, "schedule.html", pageData(defMonth, defYear, nil), err)
		return
	}

	h.renderView(w, r, month, year, nil)
}

// SaveHours handles POST /manager/schedule
func (h *Handler) SaveHours(w http.ResponseWriter, r *http.Request) {
	var dto SaveHoursDTO
	if transport.WantsJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.RenderError(w, r, http.StatusBadRequest, "invalid form")
			return
		}
		entries, hoursErr := ParseHours(r.PostForm)
		id, err := ParseScheduleID(r.PostForm)
		if err != nil {
			// an empty submission is reported as such even without an id
			if hoursErr == nil && len(entries) == 0 {
				err = internal.ErrNoHoursSubmitted
			}
			h.HandleServiceError(w, r, err)
			return
		}
		if hoursErr != nil {
			h.renderFailure(w, r, id, hoursErr)
			return
		}
		dto.ScheduleID = id
		dto.Entries = entries
	}

	sched, err := h.Service.SaveHours(r.Context(), dto.ScheduleID, dto.Entries)
	if err != nil {
		h.renderFailure(w, r, dto.ScheduleID, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, sched)
		return
	}
	h.Redirect(w, r, ViewPath(sched.Month, sched.Year))
}

// CloseSchedule handles POST /manager/schedule/close
func (h *Handler) CloseSchedule(w http.ResponseWriter, r *http.Request) {
	var dto CloseDTO
	if transport.WantsJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.RenderError(w, r, http.StatusBadRequest, "invalid form")
			return
		}
		id, err := ParseScheduleID(r.PostForm)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		dto.ScheduleID = id
	}

	id, _ := internal.IdentityFromContext(r.Context())
	var closedBy int64
	if id != nil {
		closedBy = id.UserID
	}

	sched, err := h.Service.Close(r.Context(), dto.ScheduleID, closedBy)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, sched)
		return
	}
	h.Redirect(w, r, ViewPath(sched.Month, sched.Year))
}

// renderFailure shows the grid of the schedule that was being edited with
// the error inline. Unknown schedules fall back to the error page.
func (h *Handler) renderFailure(w http.ResponseWriter, r *http.Request, scheduleID int64, cause error) {
	if transport.WantsJSON(r) {
		h.HandleServiceError(w, r, cause)
		return
	}
	sched, err := h.Service.Get(r.Context(), scheduleID)
	if err != nil {
		h.HandleServiceError(w, r, cause)
		return
	}
	h.renderView(w, r, sched.Month, sched.Year, cause)
}

func (h *Handler) renderView(w http.ResponseWriter, r *http.Request, month, year int, formErr error) {
	view, err := h.Service.View(r.Context(), month, year)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.RenderForm(w, r, "schedule.html", pageData(month, year, nil), err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, view)
		return
	}
	if formErr != nil {
		h.RenderForm(w, r, "schedule.html", pageData(month, year, view), formErr)
		return
	}
	h.Render(w, r, http.StatusOK, "schedule.html", pageData(month, year, view))
}

func pageData(month, year int, view *View) map[string]any {
	data := map[string]any{
		"Title": "Work schedule",
		"Month": month,
		"Year":  year,
	}
	if view != nil {
		data["View"] = view
	}
	return data
}
