package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nkaumov/kurs-zakat/internal/dashboard"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

type counter struct {
	n   int64
	err error
}

func (c counter) CountNew(context.Context) (int64, error)    { return c.n, c.err }
func (c counter) CountActive(context.Context) (int64, error) { return c.n, c.err }

var _ = Describe("Dashboard Handler", func() {
	base := func() *transport.BaseHandler {
		return transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer())
	}

	It("should show the counters", func() {
		h := dashboard.NewHandler(base(), counter{n: 3}, counter{n: 12})
		w := httptest.NewRecorder()

		h.Home(w, httptest.NewRequest(http.MethodGet, "/manager", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("(3 new)"))
		Expect(w.Body.String()).To(ContainSubstring("(12 active)"))
	})

	It("should answer JSON clients", func() {
		h := dashboard.NewHandler(base(), counter{n: 1}, counter{n: 2})
		req := httptest.NewRequest(http.MethodGet, "/manager", nil)
		req.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()

		h.Home(w, req)

		Expect(w.Body.String()).To(MatchJSON(`{"new_requests":1,"active_employees":2}`))
	})

	It("should hide store failures behind a generic error", func() {
		h := dashboard.NewHandler(base(), counter{err: errors.New("connection refused")}, counter{})
		w := httptest.NewRecorder()

		h.Home(w, httptest.NewRequest(http.MethodGet, "/manager", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("connection refused"))
	})
})
