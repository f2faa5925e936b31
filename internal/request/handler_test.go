package request_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/request"
	requestPostgres "github.com/nkaumov/kurs-zakat/internal/request/postgres"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Request Handler", func() {
	var (
		service *request.Service
		handler *request.Handler
		chef    *internal.Identity
		manager *internal.Identity
	)

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		service = request.NewService(requestPostgres.NewRequestRepository(db), nil, logger.Discard())
		handler = request.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), service)
		chef = &internal.Identity{UserID: seedUser(db, "chef", "chef"), Username: "chef", Role: internal.RoleChef}
		manager = &internal.Identity{UserID: seedUser(db, "manager", "manager"), Username: "manager", Role: internal.RoleManager}
	})

	as := func(id *internal.Identity, r *http.Request) *http.Request {
		return r.WithContext(internal.ContextWithIdentity(r.Context(), id))
	}

	withID := func(r *http.Request, id string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	It("should create a request from bracketed form fields", func() {
		form := url.Values{
			"positions[0][product_name]": {"  "},
			"positions[0][quantity]":     {"5"},
			"positions[1][product_name]": {"Flour"},
			"positions[1][quantity]":     {"0"},
			"positions[2][product_name]": {"Sugar"},
			"positions[2][quantity]":     {"3"},
		}
		req := as(chef, httptest.NewRequest(http.MethodPost, "/requests/create", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateRequest(w, req)

		Expect(w.Code).To(Equal(http.StatusSeeOther))
		Expect(w.Header().Get("Location")).To(Equal("/requests"))

		list, err := service.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(1))
		stored, err := service.Get(context.Background(), list[0].ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Items).To(ConsistOf(HaveField("ProductName", "Sugar")))
	})

	It("should accept a JSON body", func() {
		body := `{"positions":[{"product_name":"Milk","quantity":2}]}`
		req := as(chef, httptest.NewRequest(http.MethodPost, "/requests/create", strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.CreateRequest(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).To(ContainSubstring(`"product_name":"Milk"`))
	})

	It("should re-render the form when every position is invalid", func() {
		form := url.Values{"positions[0][product_name]": {""}, "positions[0][quantity]": {"1"}}
		req := as(chef, httptest.NewRequest(http.MethodPost, "/requests/create", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateRequest(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("Add at least one position"))
	})

	It("should show a request with its items", func() {
		created, err := service.Create(context.Background(), chef.UserID, []request.PositionDTO{{ProductName: "Cream", Quantity: 2}})
		Expect(err).NotTo(HaveOccurred())

		w := httptest.NewRecorder()
		handler.GetRequest(w, withID(as(chef, httptest.NewRequest(http.MethodGet, "/requests/1", nil)), "1"))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(created.RequestNumber))
		Expect(w.Body.String()).To(ContainSubstring("Cream"))
	})

	It("should render not found for an unknown request", func() {
		w := httptest.NewRecorder()
		handler.GetRequest(w, withID(as(chef, httptest.NewRequest(http.MethodGet, "/requests/9", nil)), "9"))

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("Request not found"))
	})

	It("should let a manager change the status", func() {
		created, err := service.Create(context.Background(), chef.UserID, []request.PositionDTO{{ProductName: "Cream", Quantity: 2}})
		Expect(err).NotTo(HaveOccurred())

		form := url.Values{"status": {request.StatusCompleted}}
		req := as(manager, httptest.NewRequest(http.MethodPost, "/manager/requests/1/status", strings.NewReader(form.Encode())))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, withID(req, "1"))

		Expect(w.Code).To(Equal(http.StatusSeeOther))
		stored, err := service.Get(context.Background(), created.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(request.StatusCompleted))
	})

	Describe("ListRequests", func() {
		var created *request.Request

		BeforeEach(func() {
			var err error
			created, err = service.Create(context.Background(), chef.UserID, []request.PositionDTO{{ProductName: "Butter", Quantity: 1}})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should link a chef to the shared detail page", func() {
			w := httptest.NewRecorder()
			handler.ListRequests(w, as(chef, httptest.NewRequest(http.MethodGet, "/requests", nil)))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`href="/requests/` + strconv.FormatInt(created.ID, 10) + `"`))
			Expect(w.Body.String()).To(ContainSubstring(created.RequestNumber))
			Expect(w.Body.String()).To(ContainSubstring("New request"))
			Expect(w.Body.String()).NotTo(ContainSubstring("/manager/requests/"))
		})

		It("should link a manager to the manager detail page with a status form", func() {
			w := httptest.NewRecorder()
			handler.ListRequests(w, as(manager, httptest.NewRequest(http.MethodGet, "/manager/requests", nil)))

			id := strconv.FormatInt(created.ID, 10)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`href="/manager/requests/` + id + `"`))
			Expect(w.Body.String()).To(ContainSubstring(`action="/manager/requests/` + id + `/status"`))
		})
	})

	It("should render an empty list", func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		empty := request.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()),
			request.NewService(requestPostgres.NewRequestRepository(db), nil, logger.Discard()))

		w := httptest.NewRecorder()
		empty.ListRequests(w, as(chef, httptest.NewRequest(http.MethodGet, "/requests", nil)))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("No requests yet."))
	})
})
