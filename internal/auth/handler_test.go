package auth_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/auth"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Auth Handler", func() {
	var (
		fx      *authFixture
		handler *auth.Handler
		base    *transport.BaseHandler
	)

	BeforeEach(func() {
		fx = newAuthFixture()
		base = transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer())
		handler = auth.NewHandler(base, fx.service, auth.HandlerConfig{AllowRegistration: true})
	})

	postForm := func(h http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	sessionCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == internal.DefaultSessionCookie {
				return c
			}
		}
		return nil
	}

	Describe("Login", func() {
		It("should set an http-only session cookie and land the manager on the dashboard", func() {
			w := postForm(handler.Login, "/auth/login", url.Values{"username": {"manager"}, "password": {"manager"}})

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/manager"))
			cookie := sessionCookie(w)
			Expect(cookie).NotTo(BeNil())
			Expect(cookie.HttpOnly).To(BeTrue())
		})

		It("should land the chef on the request ledger", func() {
			w := postForm(handler.Login, "/auth/login", url.Values{"username": {"chef"}, "password": {"chef"}})

			Expect(w.Header().Get("Location")).To(Equal("/requests"))
		})

		It("should re-render the form with a generic message on failure", func() {
			w := postForm(handler.Login, "/auth/login", url.Values{"username": {"chef"}, "password": {"wrong"}})

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("Invalid username or password"))
			Expect(sessionCookie(w)).To(BeNil())
		})

		It("should produce a cookie the guard accepts", func() {
			w := postForm(handler.Login, "/auth/login", url.Values{"username": {"chef"}, "password": {"chef"}})
			cookie := sessionCookie(w)

			guard := auth.NewGuard(base, fx.service, "")
			var seen *internal.Identity
			protected := guard.Identify(guard.Require(internal.RoleAny)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = internal.IdentityFromContext(r.Context())
			})))

			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			req.AddCookie(cookie)
			protected.ServeHTTP(httptest.NewRecorder(), req)

			Expect(seen).NotTo(BeNil())
			Expect(seen.Username).To(Equal("chef"))
		})
	})

	Describe("Logout", func() {
		It("should clear the cookie and redirect to login", func() {
			login := postForm(handler.Login, "/auth/login", url.Values{"username": {"chef"}, "password": {"chef"}})

			req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
			req.AddCookie(sessionCookie(login))
			w := httptest.NewRecorder()
			handler.Logout(w, req)

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/auth/login"))
			Expect(sessionCookie(w).MaxAge).To(BeNumerically("<", 0))
		})
	})

	Describe("Register", func() {
		It("should create the account and send the user to login", func() {
			w := postForm(handler.Register, "/auth/register", url.Values{"username": {"pastry"}, "password": {"secret"}, "role": {"chef"}})

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/auth/login"))
		})

		It("should report a duplicate username", func() {
			w := postForm(handler.Register, "/auth/register", url.Values{"username": {"chef"}, "password": {"secret"}, "role": {"chef"}})

			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(w.Body.String()).To(ContainSubstring("Registration failed"))
		})

		It("should be hidden when registration is disabled", func() {
			closed := auth.NewHandler(base, fx.service, auth.HandlerConfig{})
			w := postForm(closed.Register, "/auth/register", url.Values{"username": {"x"}})

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Root", func() {
		It("should send anonymous users to login", func() {
			w := httptest.NewRecorder()
			handler.Root(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(w.Header().Get("Location")).To(Equal("/auth/login"))
		})

		It("should send signed-in managers to the dashboard", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(internal.ContextWithIdentity(req.Context(), &internal.Identity{UserID: 2, Role: internal.RoleManager}))
			w := httptest.NewRecorder()
			handler.Root(w, req)

			Expect(w.Header().Get("Location")).To(Equal("/manager"))
		})
	})
})
