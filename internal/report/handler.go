package report

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
	"github.com/nkaumov/kurs-zakat/internal/transport"
)

type ServiceAPI interface {
	HoursReport(ctx context.Context, month, year int) (*Report, error)
	RequestsReport(ctx context.Context, month, year int) (*Report, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	archive *Archive
	now     func() time.Time
}

// NewHandler builds the report handler. archive may be nil when storage is
// not configured.
func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, archive *Archive) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		archive:     archive,
		now:         time.Now,
	}
}

type reportPage struct {
	kind    string
	heading string
	action  string
	build   func(ctx context.Context, month, year int) (*Report, error)
}

func (h *Handler) hoursPage() reportPage {
	return reportPage{kind: KindHours, heading: "Hours report", action: "/manager/report/hours", build: h.Service.HoursReport}
}

func (h *Handler) requestsPage() reportPage {
	return reportPage{kind: KindRequests, heading: "Completed requests report", action: "/manager/report/requests", build: h.Service.RequestsReport}
}

// HoursForm handles GET /manager/report/hours
func (h *Handler) HoursForm(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, h.hoursPage())
}

// HoursReport handles POST /manager/report/hours
func (h *Handler) HoursReport(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.hoursPage())
}

// RequestsForm handles GET /manager/report/requests
func (h *Handler) RequestsForm(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, h.requestsPage())
}

// RequestsReport handles POST /manager/report/requests
func (h *Handler) RequestsReport(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.requestsPage())
}

// ArchivedReport handles GET /manager/report/archive/{name}
func (h *Handler) ArchivedReport(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.RenderError(w, r, http.StatusNotFound, "Report archive is not configured")
		return
	}

	name := chi.URLParam(r, "name")
	obj, err := h.archive.Open(name)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.Logger.Error("failed to stream archived report", "name", name, "error", err)
	}
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request, page reportPage) {
	now := h.now()
	h.Render(w, r, http.StatusOK, "report_form.html", h.formData(page, int(now.Month()), now.Year()))
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, page reportPage) {
	now := h.now()
	if err := r.ParseForm(); err != nil {
		h.RenderError(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	month, year, err := schedule.ParsePeriod(r.PostForm, int(now.Month()), now.Year())
	if err != nil {
		h.RenderForm(w, r, "report_form.html", h.formData(page, int(now.Month()), now.Year()), err)
		return
	}

	rep, err := page.build(r.Context(), month, year)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.RenderForm(w, r, "report_form.html", h.formData(page, month, year), err)
		return
	}

	writeCSV(w, rep)
}

func (h *Handler) formData(page reportPage, month, year int) map[string]any {
	data := map[string]any{
		"Title":   page.heading,
		"Heading": page.heading,
		"Action":  page.action,
		"Month":   month,
		"Year":    year,
	}
	if h.archive != nil && page.kind == KindHours {
		names, err := h.archive.List()
		if err != nil {
			h.Logger.Warn("failed to list archived reports", "error", err)
		} else {
			data["Archived"] = names
		}
	}
	return data
}

func writeCSV(w http.ResponseWriter, rep *Report) {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Content)
}
