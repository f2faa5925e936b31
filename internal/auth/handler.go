package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/metrics"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/internal/user"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*user.User, error)
	StartSession(ctx context.Context, u *user.User) (string, time.Time, error)
	EndSession(ctx context.Context, token string) error
	Register(ctx context.Context, dto RegisterDTO) (*user.User, error)
}

type HandlerConfig struct {
	CookieName        string
	SecureCookies     bool
	AllowRegistration bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	cfg     HandlerConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cfg HandlerConfig) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = internal.DefaultSessionCookie
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		cfg:         cfg,
	}
}

// Root handles GET / by sending the caller to their landing page.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if id, ok := internal.IdentityFromContext(r.Context()); ok {
		h.Redirect(w, r, LandingPath(id.Role))
		return
	}
	h.Redirect(w, r, LoginPath)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if id, ok := internal.IdentityFromContext(r.Context()); ok {
		h.Redirect(w, r, LandingPath(id.Role))
		return
	}
	h.Render(w, r, http.StatusOK, "login.html", h.loginData(""))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
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
		dto = LoginDTO{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}
	}

	u, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.RenderForm(w, r, "login.html", h.loginData(dto.Username), err)
		return
	}

	token, expiresAt, err := h.Service.StartSession(r.Context(), u)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		h.HandleServiceError(w, r, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	landing := LandingPath(u.Role)
	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, LoginResponse{Username: u.Username, Role: string(u.Role), Redirect: landing})
		return
	}
	h.Redirect(w, r, landing)
}

// Logout handles GET /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cfg.CookieName); err == nil && cookie.Value != "" {
		if err := h.Service.EndSession(r.Context(), cookie.Value); err != nil {
			h.Logger.Error("failed to end session", "error", err)
		}
	}
	clearSessionCookie(w, h.cfg.CookieName)
	h.Redirect(w, r, LoginPath)
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AllowRegistration {
		h.HandleServiceError(w, r, internal.ErrRegistrationClosed)
		return
	}
	h.Render(w, r, http.StatusOK, "register.html", registerData(RegisterDTO{Role: string(internal.RoleChef)}))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.AllowRegistration {
		h.HandleServiceError(w, r, internal.ErrRegistrationClosed)
		return
	}

	var dto RegisterDTO
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
		dto = RegisterDTO{
			Username: r.PostForm.Get("username"),
			Password: r.PostForm.Get("password"),
			Role:     r.PostForm.Get("role"),
		}
	}

	created, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		if transport.WantsJSON(r) {
			h.HandleServiceError(w, r, err)
			return
		}
		h.RenderForm(w, r, "register.html", registerData(dto), err)
		return
	}

	if transport.WantsJSON(r) {
		h.WriteJSON(w, http.StatusCreated, created.ToResponse())
		return
	}
	h.Redirect(w, r, LoginPath)
}

func (h *Handler) loginData(username string) map[string]any {
	return map[string]any{
		"Title":             "Log in",
		"Username":          username,
		"AllowRegistration": h.cfg.AllowRegistration,
	}
}

func registerData(dto RegisterDTO) map[string]any {
	return map[string]any{
		"Title":    "Register",
		"Username": dto.Username,
		"Role":     dto.Role,
		"Roles":    user.Roles,
	}
}
