package employee_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/go-chi/chi"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/employee"
	employeePostgres "github.com/nkaumov/kurs-zakat/internal/employee/postgres"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Employee Handler", func() {
	var (
		service *employee.Service
		handler *employee.Handler
	)

	BeforeEach(func() {
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		service = employee.NewService(employeePostgres.NewEmployeeRepository(db), logger.Discard())
		handler = employee.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), service)
	})

	It("should list active employees", func() {
		_, err := service.Add(context.Background(), employee.CreateEmployeeDTO{FullName: "Anna Smirnova", Position: "Baker"})
		Expect(err).NotTo(HaveOccurred())

		w := httptest.NewRecorder()
		handler.ListEmployees(w, httptest.NewRequest(http.MethodGet, "/manager/employees", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Anna Smirnova"))
	})

	It("should add an employee and redirect back", func() {
		form := url.Values{"full_name": {"Oleg"}, "position": {"Cook"}}
		req := httptest.NewRequest(http.MethodPost, "/manager/employees", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusSeeOther))
		list, _ := service.ListActive(context.Background())
		Expect(list).To(HaveLen(1))
	})

	It("should show validation errors inline without saving", func() {
		form := url.Values{"full_name": {""}, "position": {"Cook"}}
		req := httptest.NewRequest(http.MethodPost, "/manager/employees", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("full_name is required"))
		list, _ := service.ListActive(context.Background())
		Expect(list).To(BeEmpty())
	})

	It("should soft delete by id", func() {
		e, err := service.Add(context.Background(), employee.CreateEmployeeDTO{FullName: "Temp", Position: "Cook"})
		Expect(err).NotTo(HaveOccurred())

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/manager/employees/x/delete", nil), "id", "1")
		w := httptest.NewRecorder()
		handler.DeleteEmployee(w, req)

		Expect(e.ID).To(Equal(int64(1)))
		Expect(w.Code).To(Equal(http.StatusSeeOther))
		list, _ := service.ListActive(context.Background())
		Expect(list).To(BeEmpty())
	})

	It("should render not found for an unknown id", func() {
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/manager/employees/42/delete", nil), "id", "42")
		w := httptest.NewRecorder()
		handler.DeleteEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("Employee not found"))
	})
})
