package request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/transport"
)

// blankRows is how many empty position rows the create form offers.
const blankRows = 5

type ServiceAPI interface {
	Create(ctx context.Context, creatorID int64, positions []PositionDTO) (*Request, error)
	List(ctx context.Context) ([]*Request, error)
	Get(ctx context.Context, id int64) (*Request, error)
	UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO, changedBy int64) (*Request, error)
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

// ListRequests handles GET /requests and GET /manager/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, RequestsResponse{Requests: requests})
		return
	}

	id, _ := internal.IdentityFromContext(r.Context())
	detailBase := "/requests"
	if id.IsManager() {
		detailBase = "/manager/requests"
	}
	h.Render(w, r, http.StatusOK, "requests_list.html", map[string]any{
		"Title":      "Requests",
		"Requests":   requests,
		"Manager":    id.IsManager(),
		"DetailBase": detailBase,
		"Statuses":   Statuses,
	})
}

// CreateRequestPage handles GET /requests/create
func (h *Handler) CreateRequestPage(w http.ResponseWriter, r *http.Request) {
	h.renderCreateForm(w, r, http.StatusOK, nil, nil)
}

// CreateRequest handles POST /requests/create
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrInvalidToken)
		return
	}

	var positions []PositionDTO
	if transport.WantsJSON(r) {
		var dto CreateRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		positions = dto.Positions
	} else {
		if err := r.ParseForm(); err != nil {
			h.RenderError(w, r, http.StatusBadRequest, "invalid form")
			return
		}
		positions = PositionsFromForm(r.PostForm)
	}

	created, err := h.Service.Create(r.Context(), id.UserID, positions)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.renderCreateForm(w, r, 0, positions, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusCreated, created)
		return
	}
	h.Redirect(w, r, "/requests")
}

// GetRequest handles GET /requests/{id} and GET /manager/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	req, err := h.Service.Get(r.Context(), requestID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, req)
		return
	}

	id, _ := internal.IdentityFromContext(r.Context())
	h.Render(w, r, http.StatusOK, "request_detail.html", map[string]any{
		"Title":    "Request " + req.RequestNumber,
		"Request":  req,
		"Manager":  id.IsManager(),
		"Statuses": Statuses,
	})
}

// UpdateStatus handles POST /manager/requests/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrInvalidToken)
		return
	}

	requestID, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateStatusDTO
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
		dto.Status = r.PostForm.Get("status")
	}

	updated, err := h.Service.UpdateStatus(r.Context(), requestID, dto, id.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, updated)
		return
	}
	h.Redirect(w, r, fmt.Sprintf("/manager/requests/%d", updated.ID))
}

func (h *Handler) renderCreateForm(w http.ResponseWriter, r *http.Request, status int, positions []PositionDTO, formErr error) {
	rows := append([]PositionDTO(nil), positions...)
	for len(rows) < blankRows {
		rows = append(rows, PositionDTO{})
	}

	data := map[string]any{
		"Title":     "New request",
		"Positions": rows,
	}
	if formErr != nil {
		h.RenderForm(w, r, "request_create.html", data, formErr)
		return
	}
	h.Render(w, r, status, "request_create.html", data)
}
