package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/auth"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubResolver struct {
	identity *internal.Identity
	err      error
}

func (s stubResolver) ResolveSession(context.Context, string) (*internal.Identity, error) {
	return s.identity, s.err
}

var _ = Describe("Access Guard", func() {
	chef := &internal.Identity{UserID: 1, Username: "chef", Role: internal.RoleChef}
	manager := &internal.Identity{UserID: 2, Username: "manager", Role: internal.RoleManager}

	DescribeTable("Decide",
		func(id *internal.Identity, required internal.Role, expected auth.Decision) {
			Expect(auth.Decide(id, required)).To(Equal(expected))
		},
		Entry("anonymous on any route", nil, internal.RoleAny, auth.DecisionRedirectLogin),
		Entry("anonymous on a manager route", nil, internal.RoleManager, auth.DecisionRedirectLogin),
		Entry("chef on any route", chef, internal.RoleAny, auth.DecisionProceed),
		Entry("chef on a manager route", chef, internal.RoleManager, auth.DecisionForbidden),
		Entry("manager on a manager route", manager, internal.RoleManager, auth.DecisionProceed),
		Entry("manager on a chef route", manager, internal.RoleChef, auth.DecisionForbidden),
	)

	Describe("middleware", func() {
		var (
			seen    *internal.Identity
			reached bool
			next    http.Handler
		)

		BeforeEach(func() {
			seen, reached = nil, false
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				seen, _ = internal.IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})
		})

		serve := func(resolver auth.SessionResolver, role internal.Role, withCookie bool) *httptest.ResponseRecorder {
			guard := auth.NewGuard(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), resolver, "")
			req := httptest.NewRequest(http.MethodGet, "/manager", nil)
			if withCookie {
				req.AddCookie(&http.Cookie{Name: internal.DefaultSessionCookie, Value: "token"})
			}
			w := httptest.NewRecorder()
			guard.Identify(guard.Require(role)(next)).ServeHTTP(w, req)
			return w
		}

		It("should redirect anonymous users to the login page", func() {
			w := serve(stubResolver{}, internal.RoleAny, false)

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/auth/login"))
			Expect(reached).To(BeFalse())
		})

		It("should forbid the wrong role", func() {
			w := serve(stubResolver{identity: chef}, internal.RoleManager, true)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring("Access denied"))
			Expect(reached).To(BeFalse())
		})

		It("should attach the identity and proceed", func() {
			w := serve(stubResolver{identity: manager}, internal.RoleManager, true)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(reached).To(BeTrue())
			Expect(seen).To(Equal(manager))
		})

		It("should clear a stale cookie and treat the caller as anonymous", func() {
			w := serve(stubResolver{err: internal.ErrSessionExpired}, internal.RoleAny, true)

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Set-Cookie")).To(ContainSubstring("Max-Age=0"))
		})

		It("should fail the request when the session store is down", func() {
			w := serve(stubResolver{err: internal.NewInternalError("failed to load session", context.DeadlineExceeded)}, internal.RoleAny, true)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(reached).To(BeFalse())
		})
	})
})
