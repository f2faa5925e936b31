package report_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/nkaumov/kurs-zakat/internal/report"
	"github.com/nkaumov/kurs-zakat/internal/storage"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func postPeriod(target string, month, year int) *http.Request {
	form := url.Values{"month": {fmt.Sprint(month)}, "year": {fmt.Sprint(year)}}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

var _ = Describe("Report Handler", func() {
	var (
		f       *fixture
		handler *report.Handler
		archive *report.Archive
	)

	BeforeEach(func() {
		f = newFixture()
		store, err := storage.NewLocalProvider(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		archive = report.NewArchive(store, f.service, "", logger.Discard())
		handler = report.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), f.service, archive)
	})

	It("should render the period form", func() {
		w := httptest.NewRecorder()
		handler.HoursForm(w, httptest.NewRequest(http.MethodGet, "/manager/report/hours", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`action="/manager/report/hours"`))
	})

	It("should download the hours report as an attachment", func() {
		anna := f.employee("Anna")
		march := f.schedule(3, 2024)
		f.hours(march, anna, 10, 8)

		w := httptest.NewRecorder()
		handler.HoursReport(w, postPeriod("/manager/report/hours", 3, 2024))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/csv; charset=utf-8"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="hours_3_2024.csv"`))
		Expect(w.Body.String()).To(Equal(fmt.Sprintf("employee_id;full_name;total_hours\n%d;Anna;8\n", anna)))
	})

	It("should show not found inline when the month has no schedule", func() {
		w := httptest.NewRecorder()
		handler.HoursReport(w, postPeriod("/manager/report/hours", 6, 2024))

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Header().Get("Content-Disposition")).To(BeEmpty())
		Expect(w.Body.String()).To(ContainSubstring("Schedule not found"))
	})

	It("should download the requests report", func() {
		w := httptest.NewRecorder()
		handler.RequestsReport(w, postPeriod("/manager/report/requests", 1, 2024))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="requests_1_2024.csv"`))
		Expect(w.Body.String()).To(Equal("request_id;request_number;created_at;items\n"))
	})

	It("should reject a malformed month", func() {
		req := httptest.NewRequest(http.MethodPost, "/manager/report/requests", strings.NewReader("month=abc&year=2024"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.RequestsReport(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report a missing archive entry", func() {
		w := httptest.NewRecorder()
		handler.ArchivedReport(w, httptest.NewRequest(http.MethodGet, "/manager/report/archive/missing.csv", nil))

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
