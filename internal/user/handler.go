package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// CreateUserPage handles GET /manager/create-user
func (h *Handler) CreateUserPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, toUsersResponse(users))
		return
	}

	h.Render(w, r, http.StatusOK, "create_user.html", map[string]any{
		"Title": "Create user",
		"Users": users,
		"Form":  CreateUserDTO{Role: string(internal.RoleChef)},
		"Roles": Roles,
	})
}

// CreateUser handles POST /manager/create-user
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
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
		dto = CreateUserDTO{
			Username: r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
			Role:     r.PostForm.Get("role"),
		}
	}

	created, err := h.Service.Create(r.Context(), dto)
	if transport.WantsJSON(r) {
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusCreated, created.ToResponse())
		return
	}

	users, listErr := h.Service.List(r.Context())
	if listErr != nil {
		h.HandleServiceError(w, r, listErr)
		return
	}

	data := map[string]any{
		"Title": "Create user",
		"Users": users,
		"Roles": Roles,
	}
	if err != nil {
		dto.Password = ""
		data["Form"] = dto
		h.RenderForm(w, r, "create_user.html", data, err)
		return
	}

	data["Created"] = created
	data["Form"] = CreateUserDTO{Role: string(internal.RoleChef)}
	h.Render(w, r, http.StatusCreated, "create_user.html", data)
}

func toUsersResponse(users []*User) UsersResponse {
	resp := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.ToResponse())
	}
	return resp
}
