package employee

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal/transport"
)

type ServiceAPI interface {
	ListActive(ctx context.Context) ([]*Employee, error)
	Add(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	SoftDelete(ctx context.Context, id int64) error
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

// ListEmployees handles GET /manager/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, CreateEmployeeDTO{}, nil)
}

// CreateEmployee handles POST /manager/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
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
		dto = CreateEmployeeDTO{
			FullName:     r.PostForm.Get("full_name"),
			Position:     r.PostForm.Get("position"),
			PassportData: r.PostForm.Get("passport_data"),
			PhoneNumber:  r.PostForm.Get("phone_number"),
		}
	}

	created, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.renderList(w, r, 0, dto, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusCreated, created.ToResponse())
		return
	}
	h.Redirect(w, r, "/manager/employees")
}

// DeleteEmployee handles POST /manager/employees/{id}/delete
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.SoftDelete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.Redirect(w, r, "/manager/employees")
}

// renderList shows the roster and the add form. A non-nil formErr is shown
// inline and decides the status code.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, form CreateEmployeeDTO, formErr error) {
	employees, err := h.Service.ListActive(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		resp := EmployeesResponse{Employees: make([]EmployeeResponse, 0, len(employees))}
		for _, e := range employees {
			resp.Employees = append(resp.Employees, e.ToResponse())
		}
		h.WriteJSON(w, http.StatusOK, resp)
		return
	}

	data := map[string]any{
		"Title":     "Employees",
		"Employees": employees,
		"Form":      form,
	}
	if formErr != nil {
		h.RenderForm(w, r, "employees.html", data, formErr)
		return
	}
	h.Render(w, r, status, "employees.html", data)
}
