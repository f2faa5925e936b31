package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
)

const genericFailure = "Something went wrong, please try again later"

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	Views  *Renderer
}

// NewBaseHandler creates a base handler with logger and page renderer
func NewBaseHandler(lg *slog.Logger, views *Renderer) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg, Views: views}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"code":    status,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// ResolveError maps err to the status code and message shown to the user.
// Anything that is not an AppError is logged and replaced with a generic
// message.
func (h *BaseHandler) ResolveError(r *http.Request, err error) (int, string) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
		return appErr.StatusCode, appErr.GetDetailedMessage()
	}
	logger.From(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	return http.StatusInternalServerError, genericFailure
}

// HandleServiceError renders err as a JSON error or as the error page,
// depending on what the client asked for.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := h.ResolveError(r, err)
	if WantsJSON(r) {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type != internal.ErrorTypeInternal {
			code, body := appErr.ToHTTPResponse()
			h.WriteJSON(w, code, body)
			return
		}
		h.WriteError(w, status, message)
		return
	}
	h.RenderError(w, r, status, message)
}

// RenderError shows the standalone error page.
func (h *BaseHandler) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.Render(w, r, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// RenderForm re-renders a form page with the error message inline.
func (h *BaseHandler) RenderForm(w http.ResponseWriter, r *http.Request, view string, data map[string]any, err error) {
	status, message := h.ResolveError(r, err)
	if data == nil {
		data = map[string]any{}
	}
	data["Error"] = message
	h.Render(w, r, status, view, data)
}

// Render executes a page template inside the layout.
func (h *BaseHandler) Render(w http.ResponseWriter, r *http.Request, status int, view string, data map[string]any) {
	if h.Views == nil {
		h.WriteError(w, http.StatusInternalServerError, "views are not configured")
		return
	}
	if err := h.Views.Render(w, r, status, view, data); err != nil {
		h.Logger.Error("failed to render view", "view", view, "error", err)
		http.Error(w, genericFailure, http.StatusInternalServerError)
	}
}

// Redirect issues a 303 so the browser follows up with GET.
func (h *BaseHandler) Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ParseIDParam reads a positive integer URL parameter.
func (h *BaseHandler) ParseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationError("invalid "+name, internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// WantsJSON reports whether the client sent or expects JSON.
func WantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
