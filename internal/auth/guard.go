package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
)

type Decision int

const (
	DecisionProceed Decision = iota
	DecisionRedirectLogin
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionProceed:
		return "proceed"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decide is the access rule for every protected route. RoleAny admits any
// signed-in user.
func Decide(id *internal.Identity, required internal.Role) Decision {
	if id == nil {
		return DecisionRedirectLogin
	}
	if required != internal.RoleAny && id.Role != required {
		return DecisionForbidden
	}
	return DecisionProceed
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*internal.Identity, error)
}

const LoginPath = "/auth/login"

// Guard resolves the session cookie once per request and enforces roles on
// the routes that need them.
type Guard struct {
	*transport.BaseHandler
	resolver   SessionResolver
	cookieName string
}

func NewGuard(baseHandler *transport.BaseHandler, resolver SessionResolver, cookieName string) *Guard {
	if cookieName == "" {
		cookieName = internal.DefaultSessionCookie
	}
	return &Guard{
		BaseHandler: baseHandler,
		resolver:    resolver,
		cookieName:  cookieName,
	}
}

// Identify attaches the identity behind the session cookie, if any. Stale
// cookies are cleared and the request continues anonymously.
func (g *Guard) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(g.cookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := g.resolver.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			var appErr *internal.AppError
			if errors.As(err, &appErr) && appErr.Type == internal.ErrorTypeUnauthorized {
				clearSessionCookie(w, g.cookieName)
				next.ServeHTTP(w, r)
				return
			}
			g.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithIdentity(r.Context(), id)
		ctx = logger.With(ctx, "user_id", id.UserID, "role", string(id.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require applies Decide with the given role to every request.
func (g *Guard) Require(role internal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := internal.IdentityFromContext(r.Context())

			switch Decide(id, role) {
			case DecisionRedirectLogin:
				if transport.WantsJSON(r) {
					g.WriteError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				g.Redirect(w, r, LoginPath)
			case DecisionForbidden:
				logger.From(r.Context()).Warn("access denied", "path", r.URL.Path, "required_role", string(role))
				if transport.WantsJSON(r) {
					g.WriteError(w, http.StatusForbidden, internal.ErrForbidden.Message)
					return
				}
				g.RenderError(w, r, http.StatusForbidden, internal.ErrForbidden.Message)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
