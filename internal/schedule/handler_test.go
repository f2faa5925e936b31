package schedule_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/nkaumov/kurs-zakat/internal"
	scheduleDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/schedule"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/schedule"
	schedulePostgres "github.com/nkaumov/kurs-zakat/internal/schedule/postgres"
	"github.com/nkaumov/kurs-zakat/internal/transport"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	manager := &internal.Identity{UserID: 1, Username: "manager", Role: internal.RoleManager}
	return req.WithContext(internal.ContextWithIdentity(req.Context(), manager))
}

var _ = Describe("Schedule Handler", func() {
	var (
		db      *gorm.DB
		service *schedule.Service
		handler *schedule.Handler
		empID   int64
		sched   *schedule.Schedule
	)

	BeforeEach(func() {
		var err error
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		service = schedule.NewService(schedulePostgres.NewScheduleRepository(db), nil, logger.Discard(),
			schedule.WithClock(func() time.Time { return time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC) }))
		handler = schedule.NewHandler(transport.NewBaseHandler(logger.Discard(), transport.MustNewRenderer()), service)

		empID = seedEmployee(db, "Anna Smirnova")
		sched, err = service.Open(context.Background(), 3, 2024)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("GetSchedule", func() {
		It("should default to the current month", func() {
			w := httptest.NewRecorder()
			handler.GetSchedule(w, httptest.NewRequest(http.MethodGet, "/manager/schedule", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			body := w.Body.String()
			Expect(body).To(ContainSubstring("March 2024"))
			Expect(body).To(ContainSubstring("Anna Smirnova"))
			Expect(body).To(ContainSubstring(fmt.Sprintf(`name="hours[%d][31]"`, empID)))
			Expect(body).NotTo(ContainSubstring(fmt.Sprintf(`name="hours[%d][32]"`, empID)))
		})

		It("should reject a month out of range", func() {
			w := httptest.NewRecorder()
			handler.GetSchedule(w, httptest.NewRequest(http.MethodGet, "/manager/schedule?month=13&year=2024", nil))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Month must be between 1 and 12"))
		})

		It("should return the grid as JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/manager/schedule?month=3&year=2024", nil)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()

			handler.GetSchedule(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"is_closed":false`))
		})
	})

	Describe("SaveHours", func() {
		It("should store the grid and redirect to the same period", func() {
			form := url.Values{
				"schedule_id": {fmt.Sprint(sched.ID)},
				fmt.Sprintf("hours[%d][10]", empID): {"8"},
				fmt.Sprintf("hours[%d][11]", empID): {""},
			}
			w := httptest.NewRecorder()

			handler.SaveHours(w, postForm("/manager/schedule", form))

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/manager/schedule?month=3&year=2024"))
			Expect(detailCount(db, sched.ID)).To(Equal(int64(1)))
		})

		It("should show an inline error when nothing is submitted", func() {
			blank := url.Values{"schedule_id": {fmt.Sprint(sched.ID)}}
			for day := 1; day <= 31; day++ {
				blank.Set(fmt.Sprintf("hours[%d][%d]", empID, day), "")
			}
			w := httptest.NewRecorder()

			handler.SaveHours(w, postForm("/manager/schedule", blank))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("No data submitted"))
			Expect(detailCount(db, sched.ID)).To(BeZero())
		})

		It("should report an empty submission before a missing schedule id", func() {
			w := httptest.NewRecorder()
			handler.SaveHours(w, postForm("/manager/schedule", url.Values{"hours[1][1]": {""}}))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("No data submitted"))
			Expect(w.Body.String()).NotTo(ContainSubstring("Invalid schedule id"))
		})

		It("should reject hours without a schedule id", func() {
			w := httptest.NewRecorder()
			handler.SaveHours(w, postForm("/manager/schedule", url.Values{"hours[1][1]": {"8"}}))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Invalid schedule id"))
		})

		It("should refuse to edit a closed schedule", func() {
			_, err := service.Close(context.Background(), sched.ID, 1)
			Expect(err).NotTo(HaveOccurred())

			form := url.Values{
				"schedule_id": {fmt.Sprint(sched.ID)},
				fmt.Sprintf("hours[%d][10]", empID): {"8"},
			}
			w := httptest.NewRecorder()

			handler.SaveHours(w, postForm("/manager/schedule", form))

			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(w.Body.String()).To(ContainSubstring("Schedule is locked"))
			Expect(detailCount(db, sched.ID)).To(BeZero())
		})

		It("should reject a malformed hours value", func() {
			form := url.Values{
				"schedule_id": {fmt.Sprint(sched.ID)},
				fmt.Sprintf("hours[%d][10]", empID): {"eight"},
			}
			w := httptest.NewRecorder()

			handler.SaveHours(w, postForm("/manager/schedule", form))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(detailCount(db, sched.ID)).To(BeZero())
		})

		It("should report an unknown schedule", func() {
			form := url.Values{"schedule_id": {"9999"}, fmt.Sprintf("hours[%d][10]", empID): {"8"}}
			w := httptest.NewRecorder()

			handler.SaveHours(w, postForm("/manager/schedule", form))

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("CloseSchedule", func() {
		It("should close and redirect to the read-only view", func() {
			w := httptest.NewRecorder()
			handler.CloseSchedule(w, postForm("/manager/schedule/close", url.Values{"schedule_id": {fmt.Sprint(sched.ID)}}))

			Expect(w.Code).To(Equal(http.StatusSeeOther))
			Expect(w.Header().Get("Location")).To(Equal("/manager/schedule?month=3&year=2024"))

			var row scheduleDatamodel.WorkSchedule
			Expect(db.First(&row, sched.ID).Error).To(Succeed())
			Expect(row.Status).To(Equal(schedule.StatusClosed))

			page := httptest.NewRecorder()
			handler.GetSchedule(page, httptest.NewRequest(http.MethodGet, "/manager/schedule?month=3&year=2024", nil))
			Expect(page.Body.String()).To(ContainSubstring("read only"))
		})

		It("should reject a missing schedule id", func() {
			w := httptest.NewRecorder()
			handler.CloseSchedule(w, postForm("/manager/schedule/close", url.Values{}))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
